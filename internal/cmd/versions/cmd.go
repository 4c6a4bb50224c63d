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

// Package versions builds the version subcommand
package versions

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin"
	"github.com/viable-hartman/solrfab/pkg/versions"
)

// NewCmd is a cobra command printing build information
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Prints version, commit sha and date of the build",
		Args:    cobra.NoArgs,
		GroupID: plugin.GroupIDMiscellaneous,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			format := plugin.OutputFormat(output)
			if err := plugin.ValidateOutputFormat(format); err != nil {
				return err
			}

			if format == plugin.OutputFormatText {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Build: %+v\n", versions.Info)
				return err
			}
			return plugin.Print(versions.Info, format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("output", "o", plugin.OutputFormatText, "Output format. One of text|json|yaml")

	return cmd
}
