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

import (
	"context"
	"errors"

	pluginerrors "github.com/viable-hartman/solrfab/internal/cmd/plugin/errors"
	"github.com/viable-hartman/solrfab/pkg/coordination"
	"github.com/viable-hartman/solrfab/pkg/coordination/fake"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ConnectCoordination", func() {
	var original ConnectFunc

	BeforeEach(func() {
		original = Connect
		DeferCleanup(func() { Connect = original })
	})

	It("returns the client", func() {
		client := fake.NewClient()
		Connect = func(context.Context, string, coordination.Options) (coordination.Client, error) {
			return client, nil
		}

		result, err := ConnectCoordination(context.Background(), "zk:2181/solr", coordination.DefaultOptions)
		Expect(err).ToNot(HaveOccurred())
		Expect(result).To(BeIdenticalTo(client))
	})

	It("maps connection failures to exit code 1", func() {
		Connect = func(context.Context, string, coordination.Options) (coordination.Client, error) {
			return nil, coordination.ErrCoordinationUnavailable
		}

		_, err := ConnectCoordination(context.Background(), "zk:2181/solr", coordination.DefaultOptions)
		Expect(err).To(MatchError(coordination.ErrCoordinationUnavailable))
		Expect(pluginerrors.ExitCode(err)).To(Equal(1))
	})

	It("rejects connection strings without servers", func() {
		_, err := ConnectCoordination(context.Background(), "/solr", coordination.DefaultOptions)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, coordination.ErrCoordinationUnavailable)).To(BeFalse())
	})
})

var _ = Describe("ValidateOutputFormat", func() {
	It("accepts the supported formats", func() {
		for _, format := range []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatYAML} {
			Expect(ValidateOutputFormat(format)).To(Succeed())
		}
	})

	It("rejects anything else", func() {
		Expect(ValidateOutputFormat("xml")).To(MatchError(ContainSubstring(`"xml"`)))
	})
})
