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

package solrcloud

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"

	"github.com/viable-hartman/solrfab/pkg/coordination"
	"github.com/viable-hartman/solrfab/pkg/management/log"
)

const (
	// ClusterStatePath is the well-known document holding the cluster topology
	ClusterStatePath = "clusterstate.json"

	// LiveNodesPath is the parent of the nodes registered as alive
	LiveNodesPath = "live_nodes"

	// CollectionsPath is the parent of the per-collection documents used
	// by collections with stateFormat=2
	CollectionsPath = "collections"

	collectionStateFile = "state.json"
)

// Reader interprets the cluster state stored in the coordination service.
// Nothing is cached: every call reads fresh data.
type Reader struct {
	client coordination.Client

	collectionState bool
}

// ReaderOption customizes a Reader
type ReaderOption func(*Reader)

// WithCollectionState enables or disables the reading of the
// per-collection state documents
func WithCollectionState(enabled bool) ReaderOption {
	return func(r *Reader) {
		r.collectionState = enabled
	}
}

// NewReader creates a Reader over the passed coordination client
func NewReader(client coordination.Client, opts ...ReaderOption) *Reader {
	reader := &Reader{
		client:          client,
		collectionState: true,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// LiveNodePath is the path of the live node registration of a Solr node
func LiveNodePath(nodeName string) string {
	return path.Join(LiveNodesPath, nodeName)
}

// FetchClusterState reads the cluster topology
func (r *Reader) FetchClusterState(ctx context.Context) (ClusterState, error) {
	data, err := r.client.Get(ctx, ClusterStatePath)
	if err != nil {
		return nil, err
	}

	state, err := ParseClusterState(data)
	if err != nil {
		return nil, fmt.Errorf("while parsing %s: %w", ClusterStatePath, err)
	}

	if !r.collectionState {
		return state, nil
	}

	collections, err := r.fetchCollectionStates(ctx)
	if err != nil {
		return nil, err
	}
	state.Merge(collections)

	return state, nil
}

// fetchCollectionStates reads the state.json of every collection
// that has one
func (r *Reader) fetchCollectionStates(ctx context.Context) (ClusterState, error) {
	contextLogger := log.FromContext(ctx)
	result := ClusterState{}

	names, err := r.client.Children(ctx, CollectionsPath)
	if errors.Is(err, coordination.ErrNoNode) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		documentPath := path.Join(CollectionsPath, name, collectionStateFile)
		data, err := r.client.Get(ctx, documentPath)
		if errors.Is(err, coordination.ErrNoNode) {
			contextLogger.Trace("Collection stored in the main cluster state", "collection", name)
			continue
		}
		if err != nil {
			return nil, err
		}

		state, err := ParseClusterState(data)
		if err != nil {
			return nil, fmt.Errorf("while parsing %s: %w", documentPath, err)
		}
		result.Merge(state)
	}

	return result, nil
}

// LiveNodes reads the set of nodes registered as alive
func (r *Reader) LiveNodes(ctx context.Context) (map[string]struct{}, error) {
	children, err := r.client.Children(ctx, LiveNodesPath)
	if err != nil {
		return nil, err
	}

	liveNodes := make(map[string]struct{}, len(children))
	for _, child := range children {
		liveNodes[child] = struct{}{}
	}
	return liveNodes, nil
}

// IsNodeLive tells whether the node is registered as alive. Only an
// exact match of the node name counts.
func (r *Reader) IsNodeLive(ctx context.Context, nodeName string) (bool, error) {
	liveNodes, err := r.LiveNodes(ctx)
	if err != nil {
		return false, err
	}

	_, ok := liveNodes[nodeName]
	return ok, nil
}

// ReplicasAreActive tells whether every shard hosting a replica on the
// node has all of its replicas active. The whole cluster state is
// scanned, stopping only between collections once an unhealthy shard
// was found. A node hosting no replica cannot block replication, so the
// answer is true in that case.
func (r *Reader) ReplicasAreActive(ctx context.Context, nodeName string) (bool, error) {
	contextLogger := log.FromContext(ctx)

	state, err := r.FetchClusterState(ctx)
	if err != nil {
		return false, err
	}

	active := true
	for _, collectionName := range slices.Sorted(maps.Keys(state)) {
		collection := state[collectionName]
		for _, shardName := range slices.Sorted(maps.Keys(collection.Shards)) {
			replicaDown := false
			nodeInShard := false
			for _, replica := range collection.Shards[shardName].Replicas {
				if replica.NodeName == nodeName {
					nodeInShard = true
				}
				if !replica.IsActive() {
					replicaDown = true
				}
			}
			if replicaDown && nodeInShard {
				contextLogger.Debug("Shard hosted on the node has replicas not active",
					"collection", collectionName, "shard", shardName, "node", nodeName)
				active = false
			}
		}
		if !active {
			break
		}
	}

	return active, nil
}

// ReplicaStatus describes a replica hosted on a node
type ReplicaStatus struct {
	Collection   string `json:"collection"`
	Shard        string `json:"shard"`
	Replica      string `json:"replica"`
	Core         string `json:"core,omitempty"`
	State        string `json:"state"`
	Leader       bool   `json:"leader"`
	ShardHealthy bool   `json:"shardHealthy"`
}

// NodeReplicas lists every replica hosted on the node, together with
// the health of the shard it belongs to
func (r *Reader) NodeReplicas(ctx context.Context, nodeName string) ([]ReplicaStatus, error) {
	state, err := r.FetchClusterState(ctx)
	if err != nil {
		return nil, err
	}

	var result []ReplicaStatus
	for _, collectionName := range slices.Sorted(maps.Keys(state)) {
		collection := state[collectionName]
		for _, shardName := range slices.Sorted(maps.Keys(collection.Shards)) {
			shard := collection.Shards[shardName]

			healthy := true
			for _, replica := range shard.Replicas {
				if !replica.IsActive() {
					healthy = false
				}
			}

			for _, replicaName := range slices.Sorted(maps.Keys(shard.Replicas)) {
				replica := shard.Replicas[replicaName]
				if replica.NodeName != nodeName {
					continue
				}
				result = append(result, ReplicaStatus{
					Collection:   collectionName,
					Shard:        shardName,
					Replica:      replicaName,
					Core:         replica.Core,
					State:        replica.State,
					Leader:       replica.IsLeader(),
					ShardHealthy: healthy,
				})
			}
		}
	}

	return result, nil
}
