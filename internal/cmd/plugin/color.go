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
	"os"

	"github.com/logrusorgru/aurora/v4"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ColorMode tells when the console output is colorized
type ColorMode string

const (
	// ColorAuto colorizes when stdout is a terminal and NO_COLOR is unset
	ColorAuto ColorMode = "auto"

	// ColorAlways colorizes even when the output is redirected
	ColorAlways ColorMode = "always"

	// ColorNever disables colors
	ColorNever ColorMode = "never"
)

// noColorEnv is the conventional variable disabling colors in auto mode
const noColorEnv = "NO_COLOR"

// AddColorControlFlags adds color control flags to the command and its
// subcommands
func AddColorControlFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("colors", false, "Force colorized output even if no terminal is attached")
	cmd.PersistentFlags().Bool("no-colors", false, "Disable colorized output")
	cmd.MarkFlagsMutuallyExclusive("colors", "no-colors")
}

// ConfigureColor renews aurora.DefaultColorizer for the mode selected
// by the command flags
func ConfigureColor(cmd *cobra.Command) error {
	mode, err := colorModeFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	_, noColor := os.LookupEnv(noColorEnv)
	isTerminal := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	setColorizer(mode.colorize(isTerminal, noColor))

	return nil
}

func colorModeFromFlags(flags *pflag.FlagSet) (ColorMode, error) {
	colors, err := flags.GetBool("colors")
	if err != nil {
		return "", err
	}

	noColors, err := flags.GetBool("no-colors")
	if err != nil {
		return "", err
	}

	switch {
	case colors:
		return ColorAlways, nil
	case noColors:
		return ColorNever, nil
	default:
		return ColorAuto, nil
	}
}

// colorize applies the mode to the console the command writes to
func (mode ColorMode) colorize(isTerminal, noColor bool) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal && !noColor
	}
}

func setColorizer(enabled bool) {
	aurora.DefaultColorizer = aurora.New(
		aurora.WithColors(enabled),
		aurora.WithHyperlinks(false),
	)
}
