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

// Package restart implements the safe rolling restart of a single Solr node:
// verify the cluster is healthy, deregister the node, restart it and wait
// for the cluster to converge again
package restart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"k8s.io/utils/clock"

	"github.com/viable-hartman/solrfab/pkg/coordination"
	"github.com/viable-hartman/solrfab/pkg/management/log"
	"github.com/viable-hartman/solrfab/pkg/remote"
	"github.com/viable-hartman/solrfab/pkg/solrcloud"
	"github.com/viable-hartman/solrfab/pkg/tracing"
)

// Step is a state of the restart workflow
type Step string

const (
	// StepCheckLive verifies the node is registered as alive
	StepCheckLive Step = "CheckLive"
	// StepCheckReplicas verifies every shard hosted on the node is healthy
	StepCheckReplicas Step = "CheckReplicas"
	// StepDeregister removes the live node registration
	StepDeregister Step = "Deregister"
	// StepRestartService runs the restart command on the host
	StepRestartService Step = "RestartService"
	// StepWaitLive waits for the node to register again
	StepWaitLive Step = "WaitLive"
	// StepWaitReplicas waits for the replicas to become active
	StepWaitReplicas Step = "WaitReplicas"
)

// DefaultPollInterval is the pause between two probes of a waiting step
const DefaultPollInterval = 3 * time.Second

// Orchestrator restarts Solr nodes. It owns the coordination client it
// was created with, which is released by Close.
type Orchestrator struct {
	client          coordination.Client
	reader          *solrcloud.Reader
	executor        remote.Executor
	restartCommand  []string
	pollInterval    time.Duration
	clock           clock.Clock
	dryRun          bool
	collectionState bool
	metrics         *Metrics
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithRestartCommand sets the command restarting the Solr service
func WithRestartCommand(command []string) Option {
	return func(o *Orchestrator) {
		o.restartCommand = command
	}
}

// WithPollInterval sets the pause between two probes of a waiting step
func WithPollInterval(interval time.Duration) Option {
	return func(o *Orchestrator) {
		o.pollInterval = interval
	}
}

// WithClock sets the clock used to measure and sleep
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithDryRun makes the orchestrator only pretend to deregister the node,
// and echo the restart command instead of running it
func WithDryRun(dryRun bool) Option {
	return func(o *Orchestrator) {
		o.dryRun = dryRun
	}
}

// WithCollectionState enables or disables the reading of the
// per-collection state documents
func WithCollectionState(enabled bool) Option {
	return func(o *Orchestrator) {
		o.collectionState = enabled
	}
}

// WithMetrics sets where the run metrics are recorded
func WithMetrics(metrics *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics
	}
}

// New creates an Orchestrator taking ownership of the client
func New(client coordination.Client, executor remote.Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:          client,
		executor:        executor,
		restartCommand:  []string{"/sbin/restart", "solr-undertow"},
		pollInterval:    DefaultPollInterval,
		clock:           clock.RealClock{},
		collectionState: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics()
	}
	o.reader = solrcloud.NewReader(client, solrcloud.WithCollectionState(o.collectionState))
	return o
}

// Close releases the coordination client
func (o *Orchestrator) Close() {
	o.client.Close()
}

// Metrics returns the metrics of the runs
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// Reader returns the cluster state reader used by the orchestrator
func (o *Orchestrator) Reader() *solrcloud.Reader {
	return o.reader
}

// Restart runs the restart workflow. Every failure is terminal and
// reported in the result: nothing is rolled back and nothing is retried
// beyond the coordination client retry policy.
func (o *Orchestrator) Restart(ctx context.Context, req Request) (result Result) {
	started := o.clock.Now()
	runID := uuid.NewString()

	ctx, span := tracing.StartSpan(ctx, "Restart",
		attribute.String("runID", runID),
		attribute.String("host", req.Host),
		attribute.Bool("force", req.Force),
		attribute.Bool("dryRun", o.dryRun),
	)
	contextLogger := log.FromContext(ctx).WithValues("runID", runID, "host", req.Host)

	defer func() {
		o.metrics.observeResult(result, o.clock.Since(started), o.clock.Now())
		span.SetAttributes(attribute.Int("status", int(result.Status)))
		if !result.Succeeded() {
			span.SetStatus(codes.Error, result.Message)
		}
		span.End()
	}()

	if err := req.Validate(); err != nil {
		contextLogger.Info("Invalid restart request", "err", err)
		return NewResult(StatusInvalidInput, nil)
	}

	nodeName := req.NodeName()
	contextLogger = contextLogger.WithValues("node", nodeName)
	ctx = log.IntoContext(ctx, contextLogger)

	if req.Force {
		contextLogger.Warning("Forced restart, skipping the liveness and replica checks")
	} else {
		live, err := o.runStep(ctx, StepCheckLive, func(ctx context.Context) (bool, error) {
			return o.reader.IsNodeLive(ctx, nodeName)
		})
		if err != nil || !live {
			return NewResult(StatusNodeNotLive, err)
		}

		active, err := o.runStep(ctx, StepCheckReplicas, func(ctx context.Context) (bool, error) {
			return o.reader.ReplicasAreActive(ctx, nodeName)
		})
		if err != nil || !active {
			return NewResult(StatusReplicasNotActive, err)
		}
	}

	// TODO: refuse to restart while a reindex is running, once the
	// indexer publishes its progress somewhere we can read it
	if _, err := o.runStep(ctx, StepDeregister, func(ctx context.Context) (bool, error) {
		return true, o.deregister(ctx, nodeName)
	}); err != nil {
		return NewResult(StatusDeregisterFailed, err)
	}

	if _, err := o.runStep(ctx, StepRestartService, func(ctx context.Context) (bool, error) {
		return true, o.restartService(ctx, req.Host)
	}); err != nil {
		return NewResult(StatusRestartFailed, err)
	}

	live, err := o.runStep(ctx, StepWaitLive, func(ctx context.Context) (bool, error) {
		return o.waitFor(ctx, StepWaitLive, req.LiveTimeout, func(ctx context.Context) (bool, error) {
			return o.reader.IsNodeLive(ctx, nodeName)
		})
	})
	if err != nil || !live {
		return NewResult(StatusLiveTimeout, err)
	}

	active, err := o.runStep(ctx, StepWaitReplicas, func(ctx context.Context) (bool, error) {
		return o.waitFor(ctx, StepWaitReplicas, req.ReplicaTimeout, func(ctx context.Context) (bool, error) {
			return o.reader.ReplicasAreActive(ctx, nodeName)
		})
	})
	if err != nil || !active {
		return NewResult(StatusReplicaTimeout, err)
	}

	contextLogger.Info("Node restarted", "elapsed", o.clock.Since(started).String())
	return NewResult(StatusSuccess, nil)
}

// runStep runs a step inside its own span, recording its duration
func (o *Orchestrator) runStep(
	ctx context.Context,
	step Step,
	fn func(context.Context) (bool, error),
) (bool, error) {
	contextLogger := log.FromContext(ctx).WithValues("step", string(step))
	ctx = log.IntoContext(ctx, contextLogger)

	ctx, span := tracing.StartSpan(ctx, string(step))
	defer span.End()

	started := o.clock.Now()
	contextLogger.Debug("Step started")
	ok, err := fn(ctx)
	elapsed := o.clock.Since(started)
	o.metrics.observeStep(step, elapsed)

	span.SetAttributes(attribute.Bool("outcome", ok))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		contextLogger.Error(err, "Step failed", "elapsed", elapsed.String())
	case !ok:
		span.SetStatus(codes.Error, "condition not met")
		contextLogger.Info("Step condition not met", "elapsed", elapsed.String())
	default:
		contextLogger.Info("Step completed", "elapsed", elapsed.String())
	}

	return ok, err
}

// deregister removes the live node registration. A node that is already
// not registered is in the desired state.
func (o *Orchestrator) deregister(ctx context.Context, nodeName string) error {
	contextLogger := log.FromContext(ctx)
	livePath := solrcloud.LiveNodePath(nodeName)

	if o.dryRun {
		contextLogger.Info("Pretend to delete", "path", livePath)
		return nil
	}

	err := o.client.Delete(ctx, livePath)
	if errors.Is(err, coordination.ErrNoNode) {
		contextLogger.Warning("Live node already removed", "path", livePath)
		return nil
	}
	return err
}

// restartService runs the restart command on the host, or just echoes
// it there on dry runs
func (o *Orchestrator) restartService(ctx context.Context, host string) error {
	command := o.restartCommand
	if o.dryRun {
		command = append([]string{"echo"}, command...)
	}

	log.FromContext(ctx).Info("Restarting Solr service", "command", command)
	return o.executor.Run(ctx, host, command)
}

// waitFor probes the condition until it holds or the timeout elapsed.
// Time is measured from the first probe, and a probe is always run
// after every sleep, so the last one can happen after the timeout.
func (o *Orchestrator) waitFor(
	ctx context.Context,
	step Step,
	timeout time.Duration,
	probe func(context.Context) (bool, error),
) (bool, error) {
	contextLogger := log.FromContext(ctx)
	started := o.clock.Now()

	for probes := 1; ; probes++ {
		ok, err := probe(ctx)
		o.metrics.observeProbes(step, probes)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		elapsed := o.clock.Since(started)
		if elapsed >= timeout {
			contextLogger.Info("Timeout reached",
				"elapsed", elapsed.String(), "timeout", timeout.String(), "probes", probes)
			return false, nil
		}

		contextLogger.Debug("Condition not met yet, waiting",
			"elapsed", elapsed.String(), "timeout", timeout.String(), "probes", probes)
		o.clock.Sleep(o.pollInterval)
	}
}
