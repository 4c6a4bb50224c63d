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

package plugin

import "fmt"

// OutputFormat represent the output format supported by this command
type OutputFormat string

const (
	// OutputFormatText means just use a human-readable output
	OutputFormatText = "text"

	// OutputFormatJSON means use machine-readable JSON output
	OutputFormatJSON = "json"

	// OutputFormatYAML means use machine-readable YAML output
	OutputFormatYAML = "yaml"
)

// ValidateOutputFormat checks the output format is supported
func ValidateOutputFormat(format OutputFormat) error {
	switch format {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q, expected one of text|json|yaml", format)
	}
}
