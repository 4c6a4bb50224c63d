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

// Package plugin contains the common behaviors of the solrfab subcommands
package plugin

import (
	"context"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin/errors"
	"github.com/viable-hartman/solrfab/pkg/coordination"
)

const (
	// GroupIDNode represents an ID to group up the commands acting on a
	// Solr node
	GroupIDNode = "node"

	// GroupIDMiscellaneous represents an ID to group up miscellaneous commands
	GroupIDMiscellaneous = "misc"
)

// ConnectFunc opens a coordination client
type ConnectFunc func(ctx context.Context, connectionString string, options coordination.Options) (
	coordination.Client, error)

// Connect is used by the commands to reach ZooKeeper. Tests replace it
// with an in-memory client.
var Connect ConnectFunc = func(
	ctx context.Context,
	connectionString string,
	options coordination.Options,
) (coordination.Client, error) {
	client, err := coordination.Connect(ctx, connectionString, options)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ConnectCoordination opens the coordination client, mapping failures to
// a plugin error
func ConnectCoordination(
	ctx context.Context,
	connectionString string,
	options coordination.Options,
) (coordination.Client, error) {
	client, err := Connect(ctx, connectionString, options)
	if err != nil {
		return nil, errors.NewCoordinationError(err)
	}

	return client, nil
}
