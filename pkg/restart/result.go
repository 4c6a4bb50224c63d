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
	"errors"
	"time"

	"github.com/viable-hartman/solrfab/pkg/solrcloud"
)

// Status is the outcome code of a restart, also used as process exit code
type Status int

const (
	// StatusSuccess means the node was restarted and the cluster converged
	StatusSuccess Status = 0
	// StatusInvalidInput means the request was rejected before any action
	StatusInvalidInput Status = 1
	// StatusNodeNotLive means the node was not registered as alive
	StatusNodeNotLive Status = 10
	// StatusReplicasNotActive means a shard hosted on the node was degraded
	StatusReplicasNotActive Status = 20
	// StatusDeregisterFailed means the live node could not be removed
	StatusDeregisterFailed Status = 30
	// StatusRestartFailed means the restart command failed
	StatusRestartFailed Status = 40
	// StatusLiveTimeout means the node did not register again in time
	StatusLiveTimeout Status = 50
	// StatusReplicaTimeout means the replicas did not recover in time
	StatusReplicaTimeout Status = 60
)

var statusMessages = map[Status]string{
	StatusInvalidInput:      "host is required",
	StatusNodeNotLive:       "Node is not live",
	StatusReplicasNotActive: "Not all replicas are active",
	StatusDeregisterFailed:  "Error removing live node",
	StatusRestartFailed:     "Error restarting solr service",
	StatusLiveTimeout:       "Timeout waiting for live node",
	StatusReplicaTimeout:    "Timeout waiting for replicas",
}

// Message is the human readable description of the status, empty on success
func (s Status) Message() string {
	return statusMessages[s]
}

// Result is the structured outcome of a restart
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	// Error is the underlying failure, when the status was caused by one
	Error string `json:"error,omitempty"`
}

// Succeeded tells whether the restart completed
func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// NewResult creates the result for the passed status. The error, if
// any, is reported as the cause.
func NewResult(status Status, err error) Result {
	result := Result{
		Status:  status,
		Message: status.Message(),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// ErrHostRequired is returned when the request has no target host
var ErrHostRequired = errors.New("host is required")

// DefaultPort is the Solr port used when the request has none
const DefaultPort = "8983"

// Request describes the node to restart and the convergence budget
type Request struct {
	// Host is the host running the Solr node
	Host string

	// Port is the Solr port, DefaultPort when empty
	Port string

	// Force skips the liveness and replica health preconditions
	Force bool

	// LiveTimeout is how long the node has to register again
	LiveTimeout time.Duration

	// ReplicaTimeout is how long the replicas have to become active again
	ReplicaTimeout time.Duration
}

// Validate checks the request can be executed
func (r Request) Validate() error {
	if r.Host == "" {
		return ErrHostRequired
	}
	return nil
}

// NodeName is the name the node registers with
func (r Request) NodeName() string {
	return solrcloud.NodeName(r.Host, r.port())
}

func (r Request) port() string {
	if r.Port == "" {
		return DefaultPort
	}
	return r.Port
}
