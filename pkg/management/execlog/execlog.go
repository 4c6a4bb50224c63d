/*
Copyright The solrfab Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package execlog handles stdout and stderr pipes of started commands
// and logs them in JSON using the provided logger
package execlog

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/viable-hartman/solrfab/pkg/management/log"
)

const (
	// PipeKey is the key for the pipe the log refers to
	PipeKey = "pipe"
	// StdOut is the PipeKey value for stdout
	StdOut = "stdout"
	// StdErr is the PipeKey value for stderr
	StdErr = "stderr"
)

// RunStreaming executes the command redirecting its stdout and stderr to the logger,
// stderr lines being logged as warnings. This function waits for the command to
// terminate and reports non-zero exit codes.
func RunStreaming(cmd *exec.Cmd, logger log.Logger) error {
	stdoutWriter := &LogWriter{
		Logger: logger.WithValues(PipeKey, StdOut),
	}
	stderrWriter := &LogWriter{
		Logger: logger.WithValues(PipeKey, StdErr),
		Warn:   true,
	}

	err := RunStreamingWithWriter(cmd, logger, stdoutWriter, stderrWriter)
	logger.Debug("Command terminated",
		"stdoutLines", stdoutWriter.Lines(),
		"stderrLines", stderrWriter.Lines(),
		"success", err == nil)
	return err
}

// RunStreamingWithWriter executes the command redirecting its stdout and stderr
// to the corresponding writers, one line at a time. It returns once the command
// exited and both pipes have been drained.
func RunStreamingWithWriter(
	cmd *exec.Cmd,
	logger log.Logger,
	stdoutWriter io.Writer,
	stderrWriter io.Writer,
) error {
	stdoutPipeRead, stdoutPipeWrite, err := os.Pipe()
	if err != nil {
		return err
	}

	stderrPipeRead, stderrPipeWrite, err := os.Pipe()
	if err != nil {
		_ = stdoutPipeRead.Close()
		_ = stdoutPipeWrite.Close()
		return err
	}

	cmd.Stdout = stdoutPipeWrite
	cmd.Stderr = stderrPipeWrite
	startErr := cmd.Start()

	// the child owns the write ends now, or nobody does if the start failed
	_ = stdoutPipeWrite.Close()
	_ = stderrPipeWrite.Close()

	if startErr != nil {
		_ = stdoutPipeRead.Close()
		_ = stderrPipeRead.Close()
		return startErr
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		copyPipe(stdoutWriter, stdoutPipeRead, logger)
	}()
	go func() {
		defer wg.Done()
		copyPipe(stderrWriter, stderrPipeRead, logger)
	}()
	wg.Wait()

	return cmd.Wait()
}

// copyPipe is an internal function used to copy the content of a io.Reader
// into a io.Writer one line at a time.
func copyPipe(dst io.Writer, src io.ReadCloser, logger log.Logger) {
	defer func() {
		err := src.Close()
		if err != nil {
			logger.Error(err, "error closing src pipe")
		}
	}()

	scanner := bufio.NewScanner(src)

	for scanner.Scan() {
		line := scanner.Bytes()
		_, err := dst.Write(line)
		if err != nil {
			logger.Error(err, "can't write to dst writer", "line", string(line))
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Error(err, "can't scan from src pipe")
	}
}
