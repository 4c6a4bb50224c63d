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

// Package restart implements the restart command, which restarts a Solr
// node once the cluster can afford losing it
package restart

import (
	"github.com/spf13/cobra"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin"
	"github.com/viable-hartman/solrfab/internal/configuration"
)

// NewCmd creates the new "restart" command
func NewCmd() *cobra.Command {
	restartCmd := &cobra.Command{
		Use:   "restart --host HOST",
		Short: "Safely restart a Solr node",
		Long: `The node is restarted only if it is live and every shard it hosts is healthy.
Its live node registration is removed, the Solr service is restarted and the
command waits for the node to register again and for its replicas to recover.

The exit code is the status of the restart: 0 on success, 1 on invalid input,
10 when the node is not live, 20 when its replicas are not all active,
30 when the live node cannot be removed, 40 when the restart command fails,
50 when the node does not register again in time and 60 when its replicas
do not recover in time.`,
		Args:    cobra.NoArgs,
		GroupID: plugin.GroupIDNode,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := configuration.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if err := data.Validate(); err != nil {
				return err
			}

			return Restart(cmd.Context(), data, cmd.OutOrStdout())
		},
	}

	configuration.AddRestartFlags(restartCmd.Flags())

	return restartCmd
}
