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

// Package remote runs commands on the Solr hosts
package remote

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/google/shlex"
	"github.com/kballard/go-shellquote"

	"github.com/viable-hartman/solrfab/pkg/management/execlog"
	"github.com/viable-hartman/solrfab/pkg/management/log"
)

// DefaultRestartCommand is the command restarting the Solr service
const DefaultRestartCommand = "/sbin/restart solr-undertow"

// ErrEmptyCommand is returned when a command line has no words
var ErrEmptyCommand = errors.New("empty command")

// Executor runs a command on a remote host
type Executor interface {
	Run(ctx context.Context, host string, command []string) error
}

// ParseCommand splits a command line into its words, following the
// shell quoting rules
func ParseCommand(commandLine string) ([]string, error) {
	words, err := shlex.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("while parsing command %q: %w", commandLine, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	return words, nil
}

// SSH is an Executor using the OpenSSH client. Authentication is
// delegated to the ssh configuration of the operator.
type SSH struct {
	// Binary is the ssh client to run, "ssh" when empty
	Binary string

	// User is the remote user, the ssh default when empty
	User string

	// Port is the remote port, the ssh default when zero
	Port int

	// IdentityFile is the private key to use, if any
	IdentityFile string

	// Options are passed to ssh as "-o" options
	Options []string

	// Sudo runs the command with elevated privileges, without prompting
	// for a password
	Sudo bool
}

// Args builds the ssh command line running the command on the host
func (s *SSH) Args(host string, command []string) []string {
	args := []string{"-o", "BatchMode=yes"}
	if s.Port != 0 {
		args = append(args, "-p", strconv.Itoa(s.Port))
	}
	if s.User != "" {
		args = append(args, "-l", s.User)
	}
	if s.IdentityFile != "" {
		args = append(args, "-i", s.IdentityFile)
	}
	for _, option := range s.Options {
		args = append(args, "-o", option)
	}

	remoteCommand := command
	if s.Sudo {
		remoteCommand = append([]string{"sudo", "-n"}, command...)
	}

	return append(args, "--", host, shellquote.Join(remoteCommand...))
}

// Run executes the command on the host, logging its output, and
// fails when the command exits with a non-zero status
func (s *SSH) Run(ctx context.Context, host string, command []string) error {
	if len(command) == 0 {
		return ErrEmptyCommand
	}

	binary := s.Binary
	if binary == "" {
		binary = "ssh"
	}

	contextLogger := log.FromContext(ctx).WithName("ssh").WithValues("host", host)
	args := s.Args(host, command)
	contextLogger.Debug("Running remote command", "binary", binary, "args", args)

	cmd := exec.CommandContext(ctx, binary, args...) // #nosec
	if err := execlog.RunStreaming(cmd, contextLogger); err != nil {
		return fmt.Errorf("while running %q on %s: %w", shellquote.Join(command...), host, err)
	}

	return nil
}
