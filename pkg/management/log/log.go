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

// Package log contains the logging subsystem of solrfab
package log

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
)

// Logger is the logging interface used across solrfab. It is a thin layer
// over logr adding the warning, debug and trace verbosities.
type Logger interface {
	Enabled() bool
	Error(err error, msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warning(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Trace(msg string, keysAndValues ...interface{})

	WithValues(keysAndValues ...interface{}) Logger
	WithName(name string) Logger
	GetLogger() logr.Logger
}

type logger struct {
	logr.Logger
}

type contextKey struct{}

const (
	debugVerbosity = 1
	traceVerbosity = 2
)

var internalLogger Logger = &logger{Logger: logr.Discard()}

// SetLogger will set the backing logr implementation for solrfab
func SetLogger(logr logr.Logger) {
	internalLogger = &logger{Logger: logr}
}

// GetLogger returns the default logger
func GetLogger() Logger {
	return internalLogger
}

// IntoContext stores the logger inside the context
func IntoContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in the context, or the
// default one when the context carries none
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return internalLogger
	}
	if l, ok := ctx.Value(contextKey{}).(Logger); ok {
		return l
	}
	return internalLogger
}

func (l *logger) Enabled() bool {
	return l.Logger.Enabled()
}

func (l *logger) GetLogger() logr.Logger {
	return l.Logger
}

func (l *logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Error(err, msg, keysAndValues...)
}

func (l *logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, keysAndValues...)
}

// Warning logs at the zap warn level when the sink is zap, since logr
// has no notion of warnings
func (l *logger) Warning(msg string, keysAndValues ...interface{}) {
	if underlier, ok := l.Logger.GetSink().(zapr.Underlier); ok {
		underlier.GetUnderlying().Sugar().Warnw(msg, keysAndValues...)
		return
	}
	l.Logger.Info(msg, keysAndValues...)
}

func (l *logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.V(debugVerbosity).Info(msg, keysAndValues...)
}

func (l *logger) Trace(msg string, keysAndValues ...interface{}) {
	l.Logger.V(traceVerbosity).Info(msg, keysAndValues...)
}

func (l *logger) WithValues(keysAndValues ...interface{}) Logger {
	return &logger{Logger: l.Logger.WithValues(keysAndValues...)}
}

func (l *logger) WithName(name string) Logger {
	return &logger{Logger: l.Logger.WithName(name)}
}

// Info logs with the default logger
func Info(msg string, keysAndValues ...interface{}) {
	internalLogger.Info(msg, keysAndValues...)
}

// Warning logs with the default logger
func Warning(msg string, keysAndValues ...interface{}) {
	internalLogger.Warning(msg, keysAndValues...)
}

// Debug logs with the default logger
func Debug(msg string, keysAndValues ...interface{}) {
	internalLogger.Debug(msg, keysAndValues...)
}

// Trace logs with the default logger
func Trace(msg string, keysAndValues ...interface{}) {
	internalLogger.Trace(msg, keysAndValues...)
}

// Error logs with the default logger
func Error(err error, msg string, keysAndValues ...interface{}) {
	internalLogger.Error(err, msg, keysAndValues...)
}

// WithName returns the default logger with the given name
func WithName(name string) Logger {
	return internalLogger.WithName(name)
}

// WithValues returns the default logger with the given values
func WithValues(keysAndValues ...interface{}) Logger {
	return internalLogger.WithValues(keysAndValues...)
}
