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
	"fmt"
	"io"
	"os"

	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// ErrorLevelString is the string representation of the error level
	ErrorLevelString = "error"
	// WarningLevelString is the string representation of the warning level
	WarningLevelString = "warning"
	// InfoLevelString is the string representation of the info level
	InfoLevelString = "info"
	// DebugLevelString is the string representation of the debug level
	DebugLevelString = "debug"
	// TraceLevelString is the string representation of the trace level
	TraceLevelString = "trace"
	// DefaultLevelString is the string representation of the default level
	DefaultLevelString = InfoLevelString
)

const (
	// ErrorLevel is the error level priority
	ErrorLevel = zapcore.ErrorLevel
	// WarningLevel is the warning level priority
	WarningLevel = zapcore.WarnLevel
	// InfoLevel is the info level priority
	InfoLevel = zapcore.InfoLevel
	// DebugLevel is the debug level priority
	DebugLevel = zapcore.Level(-debugVerbosity)
	// TraceLevel is the trace level priority
	TraceLevel = zapcore.Level(-traceVerbosity)
	// DefaultLevel is the default logging level
	DefaultLevel = InfoLevel
)

// Flags contains the set of values necessary
// for configuring the logger
type Flags struct {
	logLevel       string
	logDestination string
}

// AddFlags binds logging configuration flags to a given flagset
func (l *Flags) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&l.logLevel, "log-level", DefaultLevelString,
		"the desired log level, one of error, warning, info, debug and trace")
	flags.StringVar(&l.logDestination, "log-destination", "",
		"where the log stream will be written, defaults to stderr")
}

// ConfigureLogging configure the logging honoring the flags
// passed from the user
func (l *Flags) ConfigureLogging() error {
	var destination io.Writer = os.Stderr
	if l.logDestination != "" {
		logStream, err := os.OpenFile(l.logDestination, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600) //#nosec
		if err != nil {
			return fmt.Errorf("cannot open log destination %v: %w", l.logDestination, err)
		}
		destination = logStream
	}

	zapLogger := NewZapLogger(getLogLevel(l.logLevel), destination)
	SetLogger(zapr.NewLogger(zapLogger))

	switch l.logLevel {
	case ErrorLevelString,
		WarningLevelString,
		InfoLevelString,
		DebugLevelString,
		TraceLevelString:
	default:
		Info("Invalid log level, defaulting", "level", l.logLevel, "default", DefaultLevelString)
	}

	return nil
}

// NewZapLogger creates the JSON zap logger writing to the passed destination
func NewZapLogger(level zapcore.Level, destination io.Writer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderConfig.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(getLogLevelString(l))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(destination),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}

func getLogLevel(l string) zapcore.Level {
	switch l {
	case ErrorLevelString:
		return ErrorLevel
	case WarningLevelString:
		return WarningLevel
	case InfoLevelString:
		return InfoLevel
	case DebugLevelString:
		return DebugLevel
	case TraceLevelString:
		return TraceLevel
	default:
		return DefaultLevel
	}
}

func getLogLevelString(l zapcore.Level) string {
	switch l {
	case ErrorLevel:
		return ErrorLevelString
	case WarningLevel:
		return WarningLevelString
	case InfoLevel:
		return InfoLevelString
	case DebugLevel:
		return DebugLevelString
	case TraceLevel:
		return TraceLevelString
	default:
		return DefaultLevelString
	}
}
