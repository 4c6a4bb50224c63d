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

package execlog

import (
	"strings"

	"github.com/viable-hartman/solrfab/pkg/management/log"
)

// LogWriter logs every line written to it as one message. Carriage
// returns left by remote terminals are dropped and blank lines skipped.
type LogWriter struct {
	Logger log.Logger

	// Warn logs the lines as warnings, for the error stream of commands
	Warn bool

	lines int
}

// Write logs the given line using the provided Logger
func (w *LogWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\r\n")
	if strings.TrimSpace(line) == "" {
		return len(p), nil
	}

	w.lines++
	if w.Warn {
		w.Logger.Warning(line, "line", w.lines)
	} else {
		w.Logger.Info(line, "line", w.lines)
	}

	return len(p), nil
}

// Lines is the number of lines logged so far
func (w *LogWriter) Lines() int {
	return w.lines
}
