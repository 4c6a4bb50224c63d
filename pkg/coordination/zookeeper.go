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

// Package coordination contains the ZooKeeper client used to read the
// SolrCloud cluster state and to deregister live nodes
package coordination

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/samuel/go-zookeeper/zk"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"

	"github.com/viable-hartman/solrfab/pkg/management/log"
)

var (
	// ErrCoordinationUnavailable is returned when the coordination service
	// cannot serve a request, after the retries are exhausted
	ErrCoordinationUnavailable = errors.New("coordination service unavailable")

	// ErrNoNode is returned when the requested path does not exist
	ErrNoNode = errors.New("coordination node does not exist")
)

// Client is the set of coordination service operations solrfab needs.
// Every path is relative to the chroot of the connection.
type Client interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Children(ctx context.Context, path string) ([]string, error)
	Delete(ctx context.Context, path string) error
	Close()
}

// conn is the subset of *zk.Conn used by ZooKeeper
type conn interface {
	Get(path string) ([]byte, *zk.Stat, error)
	Children(path string) ([]string, *zk.Stat, error)
	Delete(path string, version int32) error
	Close()
}

// Options configures the ZooKeeper session and its retry policy
type Options struct {
	// SessionTimeout is the ZooKeeper session timeout, also used as the
	// deadline for the initial session establishment
	SessionTimeout time.Duration

	// Retries is the number of attempts for every operation
	Retries int

	// RetryInterval is the initial pause between attempts, doubled at
	// every retry
	RetryInterval time.Duration
}

// DefaultOptions are the options used when none are specified
var DefaultOptions = Options{
	SessionTimeout: 10 * time.Second,
	Retries:        5,
	RetryInterval:  200 * time.Millisecond,
}

// ZooKeeper is a Client backed by a ZooKeeper session
type ZooKeeper struct {
	conn      conn
	chroot    string
	backoff   wait.Backoff
	closeOnce sync.Once
}

// ParseConnectionString splits a connection string such as
// "zk1:2181,zk2:2181/solr/5.1.0/sandbox" into the server list and the
// chroot path prefix
func ParseConnectionString(connectionString string) (servers []string, chroot string, err error) {
	hosts := connectionString
	if idx := strings.Index(connectionString, "/"); idx >= 0 {
		hosts = connectionString[:idx]
		chroot = path.Clean(connectionString[idx:])
		if chroot == "/" {
			chroot = ""
		}
	}

	for _, server := range strings.Split(hosts, ",") {
		server = strings.TrimSpace(server)
		if server != "" {
			servers = append(servers, server)
		}
	}
	if len(servers) == 0 {
		return nil, "", fmt.Errorf("no servers in connection string %q", connectionString)
	}

	return servers, chroot, nil
}

// Connect opens a ZooKeeper session and waits until it is established.
// The returned client must be closed by the caller.
func Connect(ctx context.Context, connectionString string, options Options) (*ZooKeeper, error) {
	contextLogger := log.FromContext(ctx).WithName("zookeeper")

	servers, chroot, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	zkConn, events, err := zk.Connect(
		servers,
		options.SessionTimeout,
		zk.WithLogger(zkLogger{logger: contextLogger}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCoordinationUnavailable, err)
	}

	timer := time.NewTimer(options.SessionTimeout)
	defer timer.Stop()
	for {
		select {
		case event := <-events:
			contextLogger.Trace("ZooKeeper event", "state", event.State.String())
			if event.State == zk.StateHasSession {
				contextLogger.Debug("ZooKeeper session established",
					"servers", servers, "chroot", chroot, "sessionID", zkConn.SessionID())
				return newZooKeeper(zkConn, chroot, options), nil
			}
			if event.State == zk.StateAuthFailed || event.State == zk.StateExpired {
				zkConn.Close()
				return nil, fmt.Errorf("%w: session state %s", ErrCoordinationUnavailable, event.State)
			}
		case <-timer.C:
			zkConn.Close()
			return nil, fmt.Errorf("%w: no session within %s from %v",
				ErrCoordinationUnavailable, options.SessionTimeout, servers)
		case <-ctx.Done():
			zkConn.Close()
			return nil, fmt.Errorf("%w: %w", ErrCoordinationUnavailable, ctx.Err())
		}
	}
}

func newZooKeeper(c conn, chroot string, options Options) *ZooKeeper {
	steps := options.Retries
	if steps < 1 {
		steps = 1
	}
	return &ZooKeeper{
		conn:   c,
		chroot: chroot,
		backoff: wait.Backoff{
			Duration: options.RetryInterval,
			Factor:   2,
			Jitter:   0.1,
			Steps:    steps,
		},
	}
}

// Get reads the content of a node
func (z *ZooKeeper) Get(ctx context.Context, nodePath string) ([]byte, error) {
	fullPath := z.fullPath(nodePath)

	var data []byte
	err := z.withRetry(ctx, "get", fullPath, func() error {
		var err error
		data, _, err = z.conn.Get(fullPath)
		return err
	})
	return data, err
}

// Children lists the names of the children of a node
func (z *ZooKeeper) Children(ctx context.Context, nodePath string) ([]string, error) {
	fullPath := z.fullPath(nodePath)

	var children []string
	err := z.withRetry(ctx, "children", fullPath, func() error {
		var err error
		children, _, err = z.conn.Children(fullPath)
		return err
	})
	return children, err
}

// Delete removes a node, whatever its version is
func (z *ZooKeeper) Delete(ctx context.Context, nodePath string) error {
	fullPath := z.fullPath(nodePath)

	return z.withRetry(ctx, "delete", fullPath, func() error {
		return z.conn.Delete(fullPath, -1)
	})
}

// Close terminates the ZooKeeper session. It is safe to call it more
// than once.
func (z *ZooKeeper) Close() {
	z.closeOnce.Do(z.conn.Close)
}

func (z *ZooKeeper) fullPath(nodePath string) string {
	return path.Join("/", z.chroot, nodePath)
}

func (z *ZooKeeper) withRetry(ctx context.Context, operation, fullPath string, fn func() error) error {
	contextLogger := log.FromContext(ctx).WithValues("operation", operation, "path", fullPath)

	errorIsRetryable := func(err error) bool {
		if ctx.Err() != nil {
			return false
		}
		if isTransient(err) {
			contextLogger.Debug("ZooKeeper operation failed, will retry", "err", err)
			return true
		}
		return false
	}

	err := retry.OnError(z.backoff, errorIsRetryable, fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, zk.ErrNoNode):
		return fmt.Errorf("%w: %s", ErrNoNode, fullPath)
	default:
		return fmt.Errorf("%w: %s %s: %w", ErrCoordinationUnavailable, operation, fullPath, err)
	}
}

// isTransient reports whether the error is a connection level failure
// that can go away by retrying the same operation
func isTransient(err error) bool {
	return errors.Is(err, zk.ErrConnectionClosed) ||
		errors.Is(err, zk.ErrSessionExpired) ||
		errors.Is(err, zk.ErrSessionMoved) ||
		errors.Is(err, zk.ErrNoServer)
}

// zkLogger routes the ZooKeeper library messages into our logger
type zkLogger struct {
	logger log.Logger
}

func (l zkLogger) Printf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
