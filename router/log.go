/*
Copyright (c) Facebook, Inc. and its affiliates.

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
package router

import log "github.com/sirupsen/logrus"

// Logger is the core's logging sink (spec.md section 4.5): it accepts
// structured events, never format strings, so the core stays independent
// of any particular logging library.
type Logger interface {
	Event(level Level, scenario string, fields map[string]any)
}

// Level mirrors logrus's level scale without exposing the dependency on
// the core's public surface.
type Level int

// Log levels, ordered least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LogrusLogger adapts Logger to github.com/sirupsen/logrus, the logger
// cmd/dlep-router configures.
type LogrusLogger struct {
	entry *log.Entry
}

// NewLogrusLogger wraps the standard logrus logger.
func NewLogrusLogger() *LogrusLogger {
	return &LogrusLogger{entry: log.NewEntry(log.StandardLogger())}
}

// Event implements Logger.
func (l *LogrusLogger) Event(level Level, scenario string, fields map[string]any) {
	e := l.entry.WithFields(log.Fields(fields))
	switch level {
	case LevelDebug:
		e.Debug(scenario)
	case LevelInfo:
		e.Info(scenario)
	case LevelWarn:
		e.Warn(scenario)
	case LevelError:
		e.Error(scenario)
	default:
		e.Info(scenario)
	}
}

// nopLogger discards every event; used as the zero-value default so the
// engine never needs a nil check before logging.
type nopLogger struct{}

func (nopLogger) Event(Level, string, map[string]any) {}
