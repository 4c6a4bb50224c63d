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

package errors

import (
	"errors"
	"fmt"
)

// PluginError is a type that allows us to define a custom exit code for the error
type PluginError struct {
	Code  int
	error error

	// reported is set when the command already printed the outcome
	reported bool
}

func (e *PluginError) Error() string {
	return e.error.Error()
}

func (e *PluginError) Unwrap() error {
	return e.error
}

// NewExitError returns a new PluginError with the passed exit code
func NewExitError(code int, err error) *PluginError {
	return &PluginError{
		Code:  code,
		error: err,
	}
}

// NewResultError returns a new PluginError for an outcome the command
// already printed, so it must not be printed again
func NewResultError(code int, message string) *PluginError {
	return &PluginError{
		Code:     code,
		error:    errors.New(message),
		reported: true,
	}
}

// NewCoordinationError returns a new PluginError with an exit code of 1
func NewCoordinationError(err error) *PluginError {
	return &PluginError{
		Code:  1,
		error: fmt.Errorf("while interacting with ZooKeeper: %w", err),
	}
}

// ExitCode is the process exit code for the error: zero when there is
// no error, the PluginError code when there is one, 1 otherwise
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var pluginError *PluginError
	if errors.As(err, &pluginError) {
		return pluginError.Code
	}
	return 1
}

// IsReported tells whether the error was already shown to the user
func IsReported(err error) bool {
	var pluginError *PluginError
	return errors.As(err, &pluginError) && pluginError.reported
}
