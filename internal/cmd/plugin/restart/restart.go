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
	"io"
	"os"

	"github.com/viable-hartman/solrfab/internal/cmd/plugin"
	pluginerrors "github.com/viable-hartman/solrfab/internal/cmd/plugin/errors"
	"github.com/viable-hartman/solrfab/internal/configuration"
	"github.com/viable-hartman/solrfab/pkg/management/log"
	"github.com/viable-hartman/solrfab/pkg/remote"
	noderestart "github.com/viable-hartman/solrfab/pkg/restart"
	"github.com/viable-hartman/solrfab/pkg/tracing"
)

// newExecutor creates the executor running the restart command
var newExecutor = func(data *configuration.Data) remote.Executor {
	return data.Executor()
}

// traceWriter receives the spans when tracing is enabled
var traceWriter io.Writer = os.Stderr

// Restart restarts the node described by the configuration and prints
// the result. A failed restart is returned as an error carrying the
// status as exit code.
func Restart(ctx context.Context, data *configuration.Data, out io.Writer) error {
	contextLogger := log.FromContext(ctx).WithName("restart")
	ctx = log.IntoContext(ctx, contextLogger)

	request := data.Request()
	if err := request.Validate(); err != nil {
		return report(noderestart.NewResult(noderestart.StatusInvalidInput, nil), data.Output, out)
	}

	restartCommand, err := data.ParsedRestartCommand()
	if err != nil {
		return err
	}

	if data.Trace {
		shutdown, err := tracing.Setup(traceWriter)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				contextLogger.Warning("Cannot flush the trace", "err", err)
			}
		}()
	}

	client, err := plugin.ConnectCoordination(ctx, data.ZooKeeperHost, data.CoordinationOptions())
	if err != nil {
		return err
	}

	orchestrator := noderestart.New(
		client,
		newExecutor(data),
		noderestart.WithRestartCommand(restartCommand),
		noderestart.WithPollInterval(data.PollInterval),
		noderestart.WithDryRun(data.DryRun),
		noderestart.WithCollectionState(data.CollectionState),
	)
	defer orchestrator.Close()

	result := orchestrator.Restart(ctx, request)

	if data.PushgatewayURL != "" {
		if err := orchestrator.Metrics().Push(ctx, data.PushgatewayURL, data.Host); err != nil {
			contextLogger.Warning("Cannot push the restart metrics",
				"url", data.PushgatewayURL, "err", err)
		}
	}

	return report(result, data.Output, out)
}

func report(result noderestart.Result, format plugin.OutputFormat, out io.Writer) error {
	if err := plugin.PrintResult(result, format, out); err != nil {
		return err
	}

	if result.Succeeded() {
		return nil
	}
	return pluginerrors.NewResultError(int(result.Status), result.Message)
}
