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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const sampleClusterState = `{
  "goseg": {
    "replicationFactor": "2",
    "router": {"name": "compositeId"},
    "shards": {
      "shard1": {
        "range": "80000000-ffffffff",
        "state": "active",
        "replicas": {
          "core_node1": {
            "core": "goseg_shard1_replica1",
            "base_url": "http://solr1:8983/solr",
            "node_name": "solr1:8983_solr",
            "state": "active",
            "leader": "true"
          },
          "core_node2": {
            "core": "goseg_shard1_replica2",
            "base_url": "http://solr3:8983/solr",
            "node_name": "solr3:8983_solr",
            "state": "recovering"
          }
        }
      }
    }
  }
}`

var _ = Describe("ParseClusterState", func() {
	It("decodes collections, shards and replicas", func() {
		state, err := ParseClusterState([]byte(sampleClusterState))
		Expect(err).ToNot(HaveOccurred())
		Expect(state).To(HaveKey("goseg"))

		shard := state["goseg"].Shards["shard1"]
		Expect(shard.Range).To(Equal("80000000-ffffffff"))
		Expect(shard.Replicas).To(HaveLen(2))

		leader := shard.Replicas["core_node1"]
		Expect(leader.NodeName).To(Equal("solr1:8983_solr"))
		Expect(leader.IsActive()).To(BeTrue())
		Expect(leader.IsLeader()).To(BeTrue())

		recovering := shard.Replicas["core_node2"]
		Expect(recovering.IsActive()).To(BeFalse())
		Expect(recovering.IsLeader()).To(BeFalse())
	})

	It("treats empty and null documents as an empty state", func() {
		for _, document := range []string{"", "  \n", "null", "{}"} {
			state, err := ParseClusterState([]byte(document))
			Expect(err).ToNot(HaveOccurred())
			Expect(state).ToNot(BeNil())
			Expect(state).To(BeEmpty())
		}
	})

	It("rejects malformed documents", func() {
		_, err := ParseClusterState([]byte(`{"goseg": [`))
		Expect(err).To(MatchError(ErrMalformedState))

		_, err = ParseClusterState([]byte(`{"goseg": {"shards": "none"}}`))
		Expect(err).To(MatchError(ErrMalformedState))
	})

	It("treats unknown replica states as not active", func() {
		for _, state := range []string{"down", "recovering", "recovery_failed", "construction", "Active", ""} {
			Expect(Replica{State: state}.IsActive()).To(BeFalse(), state)
		}
	})
})

var _ = Describe("NodeName", func() {
	It("joins host and port with the solr suffix", func() {
		Expect(NodeName("solr3", "8983")).To(Equal("solr3:8983_solr"))
	})
})

var _ = Describe("ClusterState.Merge", func() {
	It("overwrites collections with the same name", func() {
		state := ClusterState{
			"a": {Shards: map[string]Shard{"shard1": {}}},
			"b": {},
		}
		state.Merge(ClusterState{
			"a": {Shards: map[string]Shard{"shard2": {}}},
			"c": {},
		})
		Expect(state).To(HaveLen(3))
		Expect(state["a"].Shards).To(HaveKey("shard2"))
		Expect(state["a"].Shards).ToNot(HaveKey("shard1"))
	})
})
