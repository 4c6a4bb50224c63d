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

// Package status implements the status command, which reports whether a
// Solr node can be safely restarted
package status

import (
	"context"
	"fmt"
	"io"

	"github.com/logrusorgru/aurora/v4"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin"
	pluginerrors "github.com/viable-hartman/solrfab/internal/cmd/plugin/errors"
	"github.com/viable-hartman/solrfab/internal/configuration"
	"github.com/viable-hartman/solrfab/pkg/restart"
	"github.com/viable-hartman/solrfab/pkg/solrcloud"
)

// NodeStatus contains the status of a Solr node
type NodeStatus struct {
	Node           string                    `json:"node"`
	Live           bool                      `json:"live"`
	ReplicasActive bool                      `json:"replicasActive"`
	Replicas       []solrcloud.ReplicaStatus `json:"replicas"`
}

// Status is the outcome the restart preconditions would have on the node
func (s *NodeStatus) Status() restart.Status {
	switch {
	case !s.Live:
		return restart.StatusNodeNotLive
	case !s.ReplicasActive:
		return restart.StatusReplicasNotActive
	default:
		return restart.StatusSuccess
	}
}

// Status prints the status of the node described by the configuration
func Status(ctx context.Context, data *configuration.Data, out io.Writer) error {
	request := data.Request()
	if err := request.Validate(); err != nil {
		return pluginerrors.NewExitError(int(restart.StatusInvalidInput), err)
	}

	client, err := plugin.ConnectCoordination(ctx, data.ZooKeeperHost, data.CoordinationOptions())
	if err != nil {
		return err
	}
	defer client.Close()

	reader := solrcloud.NewReader(client, solrcloud.WithCollectionState(data.CollectionState))
	status, err := ExtractNodeStatus(ctx, reader, request.NodeName())
	if err != nil {
		return pluginerrors.NewCoordinationError(err)
	}

	switch data.Output {
	case plugin.OutputFormatText:
		status.printText(out)
	default:
		if err := plugin.Print(status, data.Output, out); err != nil {
			return err
		}
	}

	if code := status.Status(); code != restart.StatusSuccess {
		return pluginerrors.NewResultError(int(code), code.Message())
	}
	return nil
}

// ExtractNodeStatus reads the status of a node from the cluster
func ExtractNodeStatus(ctx context.Context, reader *solrcloud.Reader, nodeName string) (*NodeStatus, error) {
	live, err := reader.IsNodeLive(ctx, nodeName)
	if err != nil {
		return nil, err
	}

	replicasActive, err := reader.ReplicasAreActive(ctx, nodeName)
	if err != nil {
		return nil, err
	}

	replicas, err := reader.NodeReplicas(ctx, nodeName)
	if err != nil {
		return nil, err
	}

	return &NodeStatus{
		Node:           nodeName,
		Live:           live,
		ReplicasActive: replicasActive,
		Replicas:       replicas,
	}, nil
}

func (s *NodeStatus) printText(out io.Writer) {
	summary := plugin.NewTable(out)
	_, _ = fmt.Fprintln(out, aurora.Green("Solr node"))
	summary.AddLine("Name:", s.Node)
	summary.AddLine("Live:", plugin.ColorizeBool(s.Live))
	summary.AddLine("Replicas active:", plugin.ColorizeBool(s.ReplicasActive))
	summary.Print()
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, aurora.Green("Replicas"))
	if len(s.Replicas) == 0 {
		_, _ = fmt.Fprintln(out, aurora.Yellow("No replica hosted on the node"))
		return
	}

	replicas := plugin.NewTable(out)
	replicas.AddHeader("Collection", "Shard", "Replica", "Core", "State", "Leader", "Shard healthy")
	for _, replica := range s.Replicas {
		replicas.AddLine(
			replica.Collection,
			replica.Shard,
			replica.Replica,
			replica.Core,
			plugin.ColorizeReplicaState(replica.State),
			replica.Leader,
			plugin.ColorizeBool(replica.ShardHealthy),
		)
	}
	replicas.Print()
}
