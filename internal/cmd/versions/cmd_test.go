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

package versions

import (
	"bytes"

	"github.com/viable-hartman/solrfab/pkg/versions"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("version command", func() {
	run := func(args ...string) (string, error) {
		out := &bytes.Buffer{}
		cmd := NewCmd()
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	It("prints the build information", func() {
		out, err := run()
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(ContainSubstring("Version:" + versions.Version))
	})

	It("prints JSON on request", func() {
		out, err := run("-o", "json")
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(MatchJSON(`{"version": "` + versions.Version + `", "commit": "none", "date": "unknown"}`))
	})

	It("rejects unknown formats", func() {
		_, err := run("-o", "xml")
		Expect(err).To(HaveOccurred())
	})
})
