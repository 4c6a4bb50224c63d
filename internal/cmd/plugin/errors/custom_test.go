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

package errors

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExitCode", func() {
	It("is zero without errors", func() {
		Expect(ExitCode(nil)).To(BeZero())
	})

	It("uses the code of wrapped plugin errors", func() {
		err := fmt.Errorf("restart: %w", NewExitError(50, errors.New("timeout")))
		Expect(ExitCode(err)).To(Equal(50))
		Expect(err.Error()).To(Equal("restart: timeout"))
	})

	It("is 1 for any other error", func() {
		Expect(ExitCode(errors.New("boom"))).To(Equal(1))
	})

	It("keeps the cause of coordination errors", func() {
		cause := errors.New("connection refused")
		err := NewCoordinationError(cause)
		Expect(err.Code).To(Equal(1))
		Expect(err).To(MatchError(cause))
		Expect(err.Error()).To(Equal("while interacting with ZooKeeper: connection refused"))
	})

	It("tells apart the outcomes already printed", func() {
		printed := NewResultError(20, "Not all replicas are active")
		Expect(ExitCode(printed)).To(Equal(20))
		Expect(printed).To(MatchError("Not all replicas are active"))
		Expect(IsReported(fmt.Errorf("status: %w", printed))).To(BeTrue())

		Expect(IsReported(NewExitError(1, errors.New("host is required")))).To(BeFalse())
		Expect(IsReported(NewCoordinationError(errors.New("no session")))).To(BeFalse())
		Expect(IsReported(errors.New("unknown flag"))).To(BeFalse())
		Expect(IsReported(nil)).To(BeFalse())
	})
})
