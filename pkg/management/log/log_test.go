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

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func decodeLines(buffer *bytes.Buffer) []map[string]interface{} {
	var result []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buffer.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		Expect(json.Unmarshal([]byte(line), &entry)).To(Succeed())
		result = append(result, entry)
	}
	return result
}

var _ = Describe("the zap backed logger", func() {
	var buffer *bytes.Buffer

	BeforeEach(func() {
		buffer = &bytes.Buffer{}
		DeferCleanup(SetLogger, logr.Discard())
	})

	It("filters out the levels below the configured one", func() {
		SetLogger(zapr.NewLogger(NewZapLogger(InfoLevel, buffer)))
		Info("visible", "key", "value")
		Debug("hidden")
		Trace("hidden too")

		lines := decodeLines(buffer)
		Expect(lines).To(HaveLen(1))
		Expect(lines[0]).To(HaveKeyWithValue("msg", "visible"))
		Expect(lines[0]).To(HaveKeyWithValue("key", "value"))
		Expect(lines[0]).To(HaveKeyWithValue("level", InfoLevelString))
	})

	It("emits trace messages when the level is trace", func() {
		SetLogger(zapr.NewLogger(NewZapLogger(TraceLevel, buffer)))
		Debug("debug message")
		Trace("trace message")

		lines := decodeLines(buffer)
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(HaveKeyWithValue("level", DebugLevelString))
		Expect(lines[1]).To(HaveKeyWithValue("level", TraceLevelString))
	})

	It("logs warnings at the warning level keeping names and values", func() {
		SetLogger(zapr.NewLogger(NewZapLogger(WarningLevel, buffer)))
		WithName("restart").WithValues("host", "solr3").Warning("careful")
		Info("not shown")

		lines := decodeLines(buffer)
		Expect(lines).To(HaveLen(1))
		Expect(lines[0]).To(HaveKeyWithValue("level", WarningLevelString))
		Expect(lines[0]).To(HaveKeyWithValue("logger", "restart"))
		Expect(lines[0]).To(HaveKeyWithValue("host", "solr3"))
	})

	It("logs errors with the error text", func() {
		SetLogger(zapr.NewLogger(NewZapLogger(InfoLevel, buffer)))
		Error(errors.New("boom"), "failed")

		lines := decodeLines(buffer)
		Expect(lines).To(HaveLen(1))
		Expect(lines[0]).To(HaveKeyWithValue("level", ErrorLevelString))
		Expect(lines[0]).To(HaveKeyWithValue("error", "boom"))
	})
})

var _ = Describe("the context logger", func() {
	It("returns the default logger when the context is empty", func() {
		Expect(FromContext(context.Background())).To(BeIdenticalTo(GetLogger()))
	})

	It("returns the logger stored into the context", func() {
		contextLogger := GetLogger().WithValues("runID", "1234")
		ctx := IntoContext(context.Background(), contextLogger)
		Expect(FromContext(ctx)).To(BeIdenticalTo(contextLogger))
	})
})

var _ = Describe("log level parsing", func() {
	It("falls back to the default on unknown levels", func() {
		Expect(getLogLevel("verbose")).To(Equal(DefaultLevel))
		Expect(getLogLevel(TraceLevelString)).To(Equal(TraceLevel))
		Expect(getLogLevelString(WarningLevel)).To(Equal(WarningLevelString))
	})
})
