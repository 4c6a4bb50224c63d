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

/*
The solrfab command restarts the nodes of a SolrCloud cluster one at a
time, only when the cluster can afford it.
*/
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin"
	"github.com/viable-hartman/solrfab/internal/cmd/plugin/errors"
	"github.com/viable-hartman/solrfab/internal/cmd/plugin/restart"
	"github.com/viable-hartman/solrfab/internal/cmd/plugin/status"
	"github.com/viable-hartman/solrfab/internal/cmd/versions"
	"github.com/viable-hartman/solrfab/pkg/management/log"
)

func main() {
	os.Exit(execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	logFlags := &log.Flags{}

	rootCmd := &cobra.Command{
		Use:           "solrfab",
		Short:         "Safe rolling restarts of SolrCloud nodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logFlags.ConfigureLogging(); err != nil {
				return err
			}
			return plugin.ConfigureColor(cmd)
		},
	}

	logFlags.AddFlags(rootCmd.PersistentFlags())
	plugin.AddColorControlFlags(rootCmd)

	rootCmd.AddGroup(
		&cobra.Group{ID: plugin.GroupIDNode, Title: "Node commands:"},
		&cobra.Group{ID: plugin.GroupIDMiscellaneous, Title: "Miscellaneous:"},
	)

	rootCmd.AddCommand(restart.NewCmd())
	rootCmd.AddCommand(status.NewCmd())
	rootCmd.AddCommand(versions.NewCmd())

	return rootCmd
}

// execute runs the command and returns the process exit code. Outcomes
// the command already printed are not repeated on stderr.
func execute(rootCmd *cobra.Command) int {
	err := rootCmd.Execute()
	if err != nil && !errors.IsReported(err) {
		rootCmd.PrintErrln("Error:", err.Error())
	}
	return errors.ExitCode(err)
}
