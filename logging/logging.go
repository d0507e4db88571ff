// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging wraps gosl/io's colored console printers (io.Pf* and
// friends) behind a four-level verbosity gate, so call sites choose a
// severity instead of printing unconditionally.
package logging

import (
	"time"

	"github.com/cpmech/gosl/io"
)

// Level is one of the four verbosity names the logging config block
// accepts.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

// ParseLevel maps the TOML logging.verbosity string onto a Level,
// defaulting to Info for an empty or unrecognized string.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Logger gates io.Pf* calls by level and optionally times named sections.
type Logger struct {
	level  Level
	timing bool
}

// New builds a Logger at the given level; timing enables Since-style
// duration reporting around Time-wrapped sections.
func New(level Level, timing bool) *Logger {
	return &Logger{level: level, timing: timing}
}

func (l *Logger) enabled(level Level) bool { return l != nil && level >= l.level }

// Debugf prints in grey, gated on Debug.
func (l *Logger) Debugf(format string, args ...any) {
	if l.enabled(Debug) {
		io.Pfgrey("DEBUG "+format, args...)
	}
}

// Infof prints uncolored, gated on Info.
func (l *Logger) Infof(format string, args ...any) {
	if l.enabled(Info) {
		io.Pf(format, args...)
	}
}

// Warnf prints in yellow, gated on Warn.
func (l *Logger) Warnf(format string, args ...any) {
	if l.enabled(Warn) {
		io.Pfyel("WARN "+format, args...)
	}
}

// Errorf prints in red, always shown regardless of level.
func (l *Logger) Errorf(format string, args ...any) {
	io.PfRed("ERROR "+format, args...)
}

// Time runs fn, and when timing is enabled reports its wall-clock duration
// under name at Info level.
func (l *Logger) Time(name string, fn func()) {
	if !l.timing {
		fn()
		return
	}
	start := time.Now()
	fn()
	l.Infof("%s took %v\n", name, time.Since(start))
}
