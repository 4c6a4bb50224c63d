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

package plugin

import (
	"encoding/json"
	"io"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"github.com/logrusorgru/aurora/v4"
	"sigs.k8s.io/yaml"

	"github.com/viable-hartman/solrfab/pkg/restart"
	"github.com/viable-hartman/solrfab/pkg/solrcloud"
)

// Print output an object via an io.Writer in a machine-readable way
func Print(o any, format OutputFormat, writer io.Writer) error {
	switch format {
	case OutputFormatJSON:
		data, err := json.MarshalIndent(o, "", "  ")
		if err != nil {
			return err
		}
		_, err = writer.Write(data)
		if err != nil {
			return err
		}
		// json.MarshalIndent doesn't add the final newline
		_, err = io.WriteString(writer, "\n")
		if err != nil {
			return err
		}
	case OutputFormatYAML:
		data, err := yaml.Marshal(o)
		if err != nil {
			return err
		}
		_, err = writer.Write(data)
		if err != nil {
			return err
		}
	}

	return nil
}

// NewTable creates a table writing to the passed writer
func NewTable(writer io.Writer) *tabby.Tabby {
	return tabby.NewCustom(tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0))
}

// PrintResult renders the outcome of a restart
func PrintResult(result restart.Result, format OutputFormat, writer io.Writer) error {
	if format != OutputFormatText {
		return Print(result, format, writer)
	}

	summary := NewTable(writer)
	if result.Succeeded() {
		summary.AddLine("Status:", aurora.Green(int(result.Status)))
		summary.AddLine("Message:", aurora.Green("Node restarted"))
	} else {
		summary.AddLine("Status:", aurora.Red(int(result.Status)))
		summary.AddLine("Message:", aurora.Red(result.Message))
	}
	if result.Error != "" {
		summary.AddLine("Error:", result.Error)
	}
	summary.Print()

	return nil
}

// ColorizeBool renders a condition as a colored yes/no
func ColorizeBool(condition bool) string {
	if condition {
		return aurora.Green("yes").String()
	}
	return aurora.Red("no").String()
}

// ColorizeReplicaState renders the state of a replica
func ColorizeReplicaState(state string) string {
	switch state {
	case solrcloud.ReplicaStateActive:
		return aurora.Green(state).String()
	case "recovering", "down":
		return aurora.Yellow(state).String()
	default:
		return aurora.Red(state).String()
	}
}
