/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logging is the leveled, colored logger shared by every arena-coder package.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

// Logger writes leveled messages prefixed with time and caller location.
type Logger struct {
	name      string
	out       io.Writer
	callDepth int
}

const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNoPrint
)

var (
	level     atomic.Int32
	debugMode atomic.Bool

	magenta = string([]byte{27, 91, 57, 53, 109}) // Trace
	green   = string([]byte{27, 91, 57, 50, 109}) // Debug
	blue    = string([]byte{27, 91, 57, 52, 109}) // Info
	yellow  = string([]byte{27, 91, 57, 51, 109}) // Warn
	red     = string([]byte{27, 91, 57, 49, 109}) // Error
	reset   = string([]byte{27, 91, 48, 109})

	colors = []string{
		magenta,
		green,
		blue,
		yellow,
		red,
	}

	levelName = []string{
		"Trace",
		"Debug",
		"Info",
		"Warn",
		"Error",
	}
)

func init() {
	level.Store(LevelWarn)
	if v := os.Getenv("CODER_LOG_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			SetLevel(n)
		}
	}
	if os.Getenv("CODER_DEBUG_MODE") != "" {
		debugMode.Store(true)
	}
}

// SetLevel changes the level of every logger. The default level is Warn and
// the process env `CODER_LOG_LEVEL` also sets it.
func SetLevel(l int) {
	if l >= LevelTrace && l <= LevelNoPrint {
		level.Store(int32(l))
	}
}

// Level returns the current level.
func Level() int {
	return int(level.Load())
}

// SetDebugMode toggles debug mode. In debug mode Debug messages are printed
// whatever the level, unless it is NoPrint.
func SetDebugMode(on bool) {
	debugMode.Store(on)
}

// DebugMode reports whether `CODER_DEBUG_MODE` or SetDebugMode enabled debug mode.
func DebugMode() bool {
	return debugMode.Load()
}

// New returns a named logger writing to out, os.Stdout when out is nil.
func New(name string, out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		name:      name,
		out:       out,
		callDepth: 3,
	}
}

func enabled(lv int) bool {
	threshold := Level()
	if DebugMode() && threshold > LevelDebug && threshold < LevelNoPrint {
		threshold = LevelDebug
	}
	return lv >= threshold
}

func (l *Logger) logf(lv int, format string, a ...interface{}) {
	if !enabled(lv) {
		return
	}
	if _, err := fmt.Fprintf(l.out, l.prefix(lv)+format+reset+"\n", a...); err != nil {
		fmt.Fprintf(os.Stderr, "logger %s failed: %v\n", levelName[lv], err)
	}
}

func (l *Logger) Errorf(format string, a ...interface{}) { l.logf(LevelError, format, a...) }

func (l *Logger) Warnf(format string, a ...interface{}) { l.logf(LevelWarn, format, a...) }

func (l *Logger) Infof(format string, a ...interface{}) { l.logf(LevelInfo, format, a...) }

func (l *Logger) Debugf(format string, a ...interface{}) { l.logf(LevelDebug, format, a...) }

func (l *Logger) Tracef(format string, a ...interface{}) { l.logf(LevelTrace, format, a...) }

// Error logs v at error level.
func (l *Logger) Error(v interface{}) { l.logf(LevelError, "%v", v) }

func (l *Logger) prefix(lv int) string {
	var buffer [64]byte
	buf := bytes.NewBuffer(buffer[:0])
	_, _ = buf.WriteString(colors[lv])
	_, _ = buf.WriteString(levelName[lv])
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.location())
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.name)
	_ = buf.WriteByte(' ')
	return buf.String()
}

func (l *Logger) location() string {
	// logf adds one frame on top of the exported method.
	_, file, line, ok := runtime.Caller(l.callDepth + 1)
	if !ok {
		file = "???"
		line = 0
	}
	file = filepath.Base(file)
	return file + ":" + strconv.Itoa(line)
}
