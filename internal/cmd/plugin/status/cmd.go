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

package status

import (
	"github.com/spf13/cobra"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin"
	"github.com/viable-hartman/solrfab/internal/configuration"
)

// NewCmd create the new "status" subcommand
func NewCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status --host HOST",
		Short: "Get the status of a Solr node",
		Long: `Reports whether the node is live and whether every shard it hosts is healthy,
without changing anything. The exit code is 0 when the node could be restarted,
10 when it is not live and 20 when its replicas are not all active.`,
		Args:    cobra.NoArgs,
		GroupID: plugin.GroupIDNode,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := configuration.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if err := data.ValidateConnection(); err != nil {
				return err
			}

			return Status(cmd.Context(), data, cmd.OutOrStdout())
		},
	}

	configuration.AddConnectionFlags(statusCmd.Flags())

	return statusCmd
}
