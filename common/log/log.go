// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log defines trustify's logging interface. By default it is backed
// by logrus, but it can be replaced with any user-defined implementation.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is trustify's logging interface, narrow enough that the importer
// runner, loaders and graph service can all depend on it without pulling in
// a concrete logging library.
type Logger interface {
	Errorf(format string, args ...any)
	Error(args ...any)
	Warnf(format string, args ...any)
	Warn(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Debugf(format string, args ...any)
	Debug(args ...any)

	// WithField returns a Logger that attaches key=value to every subsequent
	// entry, the way an importer run's logs are tagged with the importer
	// name throughout its lifetime.
	WithField(key string, value any) Logger
}

var logger Logger = NewLogrusLogger(logrus.InfoLevel)

// SetLogger overwrites the default logger with a user-specified one.
func SetLogger(l Logger) { logger = l }

// L returns the current default logger.
func L() Logger { return logger }

// Errorf is the static formatted error logging function.
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

// Warnf is the static formatted warning logging function.
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

// Infof is the static formatted info logging function.
func Infof(format string, args ...any) { logger.Infof(format, args...) }

// Debugf is the static formatted debug logging function.
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

// Error is the static error logging function.
func Error(args ...any) { logger.Error(args...) }

// Warn is the static warning logging function.
func Warn(args ...any) { logger.Warn(args...) }

// Info is the static info logging function.
func Info(args ...any) { logger.Info(args...) }

// Debug is the static debug logging function.
func Debug(args ...any) { logger.Debug(args...) }

// WithField tags subsequent entries on the default logger with key=value.
func WithField(key string, value any) Logger { return logger.WithField(key, value) }

// LogrusLogger is the Logger implementation backed by
// github.com/sirupsen/logrus, trustify's default.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger builds a LogrusLogger writing JSON-formatted entries to
// stderr at the given level, matching the structured-logging idiom the rest
// of the ingestion pipeline assumes when it calls WithField.
func NewLogrusLogger(level logrus.Level) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
func (l *LogrusLogger) Error(args ...any)                 { l.entry.Error(args...) }
func (l *LogrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Warn(args ...any)                  { l.entry.Warn(args...) }
func (l *LogrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Info(args ...any)                  { l.entry.Info(args...) }
func (l *LogrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Debug(args ...any)                 { l.entry.Debug(args...) }

// WithField returns a LogrusLogger sharing the same underlying logrus
// logger, with key=value attached to every entry it writes.
func (l *LogrusLogger) WithField(key string, value any) Logger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}
