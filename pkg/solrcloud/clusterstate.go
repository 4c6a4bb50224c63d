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

// Package solrcloud reads and interprets the SolrCloud cluster state
// published in the coordination service
package solrcloud

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ReplicaStateActive is the only replica state considered healthy. Every
// other value, including the ones this tool does not know about, means
// the replica is not serving.
const ReplicaStateActive = "active"

// ErrMalformedState is returned when a cluster state document
// cannot be decoded
var ErrMalformedState = errors.New("malformed cluster state")

// ClusterState maps every collection name to its layout
type ClusterState map[string]Collection

// Collection is a named dataset partitioned into shards. Only the
// attributes whose type is stable across Solr releases are decoded.
type Collection struct {
	Shards map[string]Shard `json:"shards"`
}

// Shard is a partition of a collection, made of replicas
type Shard struct {
	Range    string             `json:"range,omitempty"`
	State    string             `json:"state,omitempty"`
	Replicas map[string]Replica `json:"replicas"`
}

// Replica is a copy of a shard hosted on a node
type Replica struct {
	Core     string `json:"core,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	NodeName string `json:"node_name"`
	State    string `json:"state"`
	Leader   string `json:"leader,omitempty"`
}

// IsActive tells whether the replica is serving
func (r Replica) IsActive() bool {
	return r.State == ReplicaStateActive
}

// IsLeader tells whether the replica is the shard leader
func (r Replica) IsLeader() bool {
	return r.Leader == "true"
}

// NodeName builds the name a Solr instance registers with in the
// live nodes, i.e. "host:port_solr"
func NodeName(host, port string) string {
	return host + ":" + port + "_solr"
}

// ParseClusterState decodes a cluster state document. An empty document
// is an empty cluster state.
func ParseClusterState(data []byte) (ClusterState, error) {
	state := ClusterState{}
	if len(bytes.TrimSpace(data)) == 0 {
		return state, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	if state == nil {
		// the document was a JSON null
		state = ClusterState{}
	}

	return state, nil
}

// Merge adds the collections of other to the state, overwriting the
// ones with the same name
func (cs ClusterState) Merge(other ClusterState) {
	for name, collection := range other {
		cs[name] = collection
	}
}
