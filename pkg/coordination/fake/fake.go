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

// Package fake contains an in-memory coordination client for tests
package fake

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/viable-hartman/solrfab/pkg/coordination"
)

// Client is an in-memory coordination.Client. Nodes are addressed by
// their path relative to the chroot, parents are created implicitly.
// It is not safe for concurrent use.
type Client struct {
	nodes map[string][]byte

	// Errors forces the operation on a path to fail. The key is the
	// operation name ("get", "children", "delete") followed by a space
	// and the path.
	Errors map[string]error

	// Hooks run before an operation on a path, with the same keys as
	// Errors, and can mutate the client to simulate a changing cluster
	Hooks map[string]func(*Client)

	// Deleted records the deleted paths
	Deleted []string

	// Calls records every operation
	Calls []string

	// Closed counts the calls to Close
	Closed int
}

var _ coordination.Client = &Client{}

// NewClient creates an empty fake client
func NewClient() *Client {
	return &Client{
		nodes:  map[string][]byte{},
		Errors: map[string]error{},
		Hooks:  map[string]func(*Client){},
	}
}

func clean(nodePath string) string {
	return strings.TrimPrefix(path.Clean("/"+nodePath), "/")
}

// Set creates or replaces a node and its missing parents
func (c *Client) Set(nodePath string, data []byte) *Client {
	nodePath = clean(nodePath)
	c.nodes[nodePath] = data
	for parent := path.Dir(nodePath); parent != "." && parent != "/"; parent = path.Dir(parent) {
		if _, ok := c.nodes[parent]; !ok {
			c.nodes[parent] = nil
		}
	}
	return c
}

// Remove drops a node without recording it as deleted
func (c *Client) Remove(nodePath string) *Client {
	delete(c.nodes, clean(nodePath))
	return c
}

// Exists tells whether the node exists
func (c *Client) Exists(nodePath string) bool {
	_, ok := c.nodes[clean(nodePath)]
	return ok
}

func (c *Client) before(operation, nodePath string) error {
	key := operation + " " + clean(nodePath)
	c.Calls = append(c.Calls, key)
	if hook, ok := c.Hooks[key]; ok {
		hook(c)
	}
	return c.Errors[key]
}

// Get implements coordination.Client
func (c *Client) Get(_ context.Context, nodePath string) ([]byte, error) {
	if err := c.before("get", nodePath); err != nil {
		return nil, err
	}
	data, ok := c.nodes[clean(nodePath)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", coordination.ErrNoNode, nodePath)
	}
	return data, nil
}

// Children implements coordination.Client
func (c *Client) Children(_ context.Context, nodePath string) ([]string, error) {
	if err := c.before("children", nodePath); err != nil {
		return nil, err
	}
	parent := clean(nodePath)
	if _, ok := c.nodes[parent]; !ok {
		return nil, fmt.Errorf("%w: %s", coordination.ErrNoNode, nodePath)
	}

	var children []string
	for candidate := range c.nodes {
		if path.Dir(candidate) == parent {
			children = append(children, path.Base(candidate))
		}
	}
	slices.Sort(children)
	return children, nil
}

// Delete implements coordination.Client
func (c *Client) Delete(_ context.Context, nodePath string) error {
	if err := c.before("delete", nodePath); err != nil {
		return err
	}
	key := clean(nodePath)
	if _, ok := c.nodes[key]; !ok {
		return fmt.Errorf("%w: %s", coordination.ErrNoNode, nodePath)
	}
	delete(c.nodes, key)
	c.Deleted = append(c.Deleted, key)
	return nil
}

// Close implements coordination.Client
func (c *Client) Close() {
	c.Closed++
}
