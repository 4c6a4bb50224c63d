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

package restart

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	metricsNamespace = "solrfab"
	metricsSubsystem = "restart"

	// PushJobName is the job name used when pushing the metrics
	PushJobName = "solrfab_restart"
)

// Metrics holds the metrics of a restart run, in a dedicated registry
// since a run is a short-lived batch job
type Metrics struct {
	registry *prometheus.Registry

	StepDuration   *prometheus.GaugeVec
	StepProbes     *prometheus.GaugeVec
	Duration       prometheus.Gauge
	LastStatus     prometheus.Gauge
	LastCompletion prometheus.Gauge
}

// NewMetrics creates and registers the restart metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "step_duration_seconds",
			Help:      "Time spent in each step of the last restart",
		}, []string{"step"}),
		StepProbes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "step_probes",
			Help:      "Number of probes run by the waiting steps of the last restart",
		}, []string{"step"}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "duration_seconds",
			Help:      "Duration of the last restart",
		}),
		LastStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "last_status",
			Help:      "Status code of the last restart, 0 on success",
		}),
		LastCompletion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "last_completion_timestamp_seconds",
			Help:      "Unix time of the completion of the last restart",
		}),
	}

	m.registry.MustRegister(
		m.StepDuration,
		m.StepProbes,
		m.Duration,
		m.LastStatus,
		m.LastCompletion,
	)
	return m
}

// Registry is the registry holding the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeStep(step Step, duration time.Duration) {
	m.StepDuration.WithLabelValues(string(step)).Set(duration.Seconds())
}

func (m *Metrics) observeProbes(step Step, probes int) {
	m.StepProbes.WithLabelValues(string(step)).Set(float64(probes))
}

func (m *Metrics) observeResult(result Result, duration time.Duration, completion time.Time) {
	m.Duration.Set(duration.Seconds())
	m.LastStatus.Set(float64(result.Status))
	m.LastCompletion.Set(float64(completion.Unix()))
}

// Push sends the metrics to a Prometheus Pushgateway, grouped by host
func (m *Metrics) Push(ctx context.Context, url, host string) error {
	return push.New(url, PushJobName).
		Gatherer(m.registry).
		Grouping("host", host).
		PushContext(ctx)
}
