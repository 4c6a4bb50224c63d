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
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/logrusorgru/aurora/v4"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin"
	pluginerrors "github.com/viable-hartman/solrfab/internal/cmd/plugin/errors"
	"github.com/viable-hartman/solrfab/internal/configuration"
	"github.com/viable-hartman/solrfab/pkg/coordination"
	"github.com/viable-hartman/solrfab/pkg/coordination/fake"
	"github.com/viable-hartman/solrfab/pkg/solrcloud"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const node = "solr3:8983_solr"

var _ = Describe("status command", func() {
	var (
		client *fake.Client
		data   *configuration.Data
		out    *bytes.Buffer
	)

	setState := func(states ...string) {
		replicas := map[string]solrcloud.Replica{}
		for i, state := range states {
			nodeName := node
			if i > 0 {
				nodeName = "solr1:8983_solr"
			}
			replicas[string(rune('a'+i))] = solrcloud.Replica{NodeName: nodeName, State: state, Core: "products_shard1"}
		}
		state, err := json.Marshal(solrcloud.ClusterState{
			"products": {Shards: map[string]solrcloud.Shard{"shard1": {Replicas: replicas}}},
		})
		Expect(err).ToNot(HaveOccurred())
		client.Set(solrcloud.ClusterStatePath, state)
	}

	BeforeEach(func() {
		originalColorizer := aurora.DefaultColorizer
		aurora.DefaultColorizer = aurora.New(aurora.WithColors(false))

		client = fake.NewClient()
		client.Set(solrcloud.LiveNodePath(node), nil)
		setState(solrcloud.ReplicaStateActive, solrcloud.ReplicaStateActive)

		originalConnect := plugin.Connect
		DeferCleanup(func() {
			plugin.Connect = originalConnect
			aurora.DefaultColorizer = originalColorizer
		})
		plugin.Connect = func(context.Context, string, coordination.Options) (coordination.Client, error) {
			return client, nil
		}

		data = &configuration.Data{
			Host:                    "solr3",
			ZooKeeperHost:           "zk:2181/solr",
			ZooKeeperSessionTimeout: time.Second,
			ZooKeeperRetries:        1,
			Output:                  plugin.OutputFormatJSON,
		}
		out = &bytes.Buffer{}
	})

	It("reports a healthy node", func() {
		Expect(Status(context.Background(), data, out)).To(Succeed())
		Expect(out.String()).To(MatchJSON(`{
			"node": "solr3:8983_solr",
			"live": true,
			"replicasActive": true,
			"replicas": [{
				"collection": "products",
				"shard": "shard1",
				"replica": "a",
				"core": "products_shard1",
				"state": "active",
				"leader": false,
				"shardHealthy": true
			}]
		}`))
		Expect(client.Closed).To(Equal(1))
		Expect(client.Deleted).To(BeEmpty())
	})

	It("exits with 10 when the node is not live", func() {
		client.Remove(solrcloud.LiveNodePath(node))
		err := Status(context.Background(), data, out)
		Expect(pluginerrors.ExitCode(err)).To(Equal(10))
		Expect(client.Closed).To(Equal(1))
	})

	It("exits with 20 when a shard of the node is degraded", func() {
		setState(solrcloud.ReplicaStateActive, "recovering")
		err := Status(context.Background(), data, out)
		Expect(pluginerrors.ExitCode(err)).To(Equal(20))
		Expect(err).To(MatchError("Not all replicas are active"))
	})

	It("exits with 1 without host", func() {
		data.Host = ""
		Expect(pluginerrors.ExitCode(Status(context.Background(), data, out))).To(Equal(1))
		Expect(client.Calls).To(BeEmpty())
	})

	It("exits with 1 when the cluster state is malformed", func() {
		client.Set(solrcloud.ClusterStatePath, []byte("{"))
		err := Status(context.Background(), data, out)
		Expect(pluginerrors.ExitCode(err)).To(Equal(1))
		Expect(err).To(MatchError(solrcloud.ErrMalformedState))
	})

	It("prints a human readable report", func() {
		data.Output = plugin.OutputFormatText
		setState(solrcloud.ReplicaStateActive, "down")
		_ = Status(context.Background(), data, out)
		Expect(out.String()).To(MatchRegexp(`Name:\s+solr3:8983_solr`))
		Expect(out.String()).To(MatchRegexp(`Live:\s+yes`))
		Expect(out.String()).To(MatchRegexp(`Replicas active:\s+no`))
		Expect(out.String()).To(MatchRegexp(`products\s+shard1\s+a\s+products_shard1\s+active\s+false\s+no`))
	})

	It("reports when the node hosts no replica", func() {
		data.Output = plugin.OutputFormatText
		client.Set(solrcloud.ClusterStatePath, []byte("{}"))
		Expect(Status(context.Background(), data, out)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No replica hosted on the node"))
	})

	Describe("from the command line", func() {
		execute := func(args ...string) int {
			cmd := NewCmd()
			cmd.SetOut(out)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(args)
			return pluginerrors.ExitCode(cmd.Execute())
		}

		It("exits with 0 for a node that can be restarted", func() {
			Expect(execute("--host", "solr3", "-o", "json")).To(BeZero())
			Expect(out.String()).To(ContainSubstring(`"live": true`))
			Expect(client.Closed).To(Equal(1))
		})

		It("exits with 10 for a node that is not live", func() {
			client.Remove(solrcloud.LiveNodePath(node))
			Expect(execute("--host", "solr3")).To(Equal(10))
		})

		It("exits with 20 for a node with degraded shards", func() {
			setState(solrcloud.ReplicaStateActive, "recovering")
			Expect(execute("--host", "solr3", "--host-port", "8983")).To(Equal(20))
		})

		It("exits with 1 without host, before connecting", func() {
			Expect(execute()).To(Equal(1))
			Expect(client.Calls).To(BeEmpty())
		})

		It("exits with 1 on an invalid connection setting", func() {
			Expect(execute("--host", "solr3", "--zk-retries", "0")).To(Equal(1))
			Expect(client.Calls).To(BeEmpty())
		})
	})
})
