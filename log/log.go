// Copyright 2015 The go-probeum Authors
// This file is part of the florinscan library.
//
// The florinscan library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The florinscan library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the florinscan library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a small structured, key-value logger in the idiom
// go-probeum's own `log` package uses throughout probe/handler.go
// (log.Info("Probeum peer connected", "name", peer.Name())). It keeps
// per-component level gates (log_level / peer_log_level) and colorizes
// output when writing to a terminal.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level gates which calls are emitted. Higher is noisier.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func ParseLevel(s string) Level {
	switch s {
	case "error":
		return LevelError
	case "warn":
		return LevelWarn
	case "debug":
		return LevelDebug
	case "trace":
		return LevelTrace
	default:
		return LevelInfo
	}
}

var (
	levelNames = map[Level]string{
		LevelError: "ERROR", LevelWarn: "WARN", LevelInfo: "INFO",
		LevelDebug: "DEBUG", LevelTrace: "TRACE",
	}
	levelColors = map[Level]*color.Color{
		LevelError: color.New(color.FgRed, color.Bold),
		LevelWarn:  color.New(color.FgYellow),
		LevelInfo:  color.New(color.FgGreen),
		LevelDebug: color.New(color.FgCyan),
		LevelTrace: color.New(color.FgWhite),
	}
)

// Logger is a named, leveled, key-value sink. Components obtain one via
// New("component", "name") the way go-probeum's log.New("peer", id) does.
type Logger struct {
	ctx   []interface{}
	level *int32 // shared with the root so SetLevel applies retroactively
	out   io.Writer
	color bool
	mu    *sync.Mutex
}

var root = newRoot()

func newRoot() *Logger {
	lvl := int32(LevelInfo)
	w := os.Stderr
	var out io.Writer = w
	isTerm := isatty.IsTerminal(w.Fd())
	if isTerm {
		out = colorable.NewColorable(w)
	}
	return &Logger{level: &lvl, out: out, color: isTerm, mu: &sync.Mutex{}}
}

// SetLevel changes the root (and all derived loggers') verbosity gate.
func SetLevel(l Level) { atomic.StoreInt32(root.level, int32(l)) }

// New returns a child logger carrying additional context key-values,
// in the same style as log.New("peer", id[:8]) in probe/handler.go.
func New(ctx ...interface{}) *Logger {
	return root.New(ctx...)
}

func (l *Logger) New(ctx ...interface{}) *Logger {
	nctx := make([]interface{}, 0, len(l.ctx)+len(ctx))
	nctx = append(nctx, l.ctx...)
	nctx = append(nctx, ctx...)
	return &Logger{ctx: nctx, level: l.level, out: l.out, color: l.color, mu: l.mu}
}

func (l *Logger) log(lvl Level, msg string, kv []interface{}) {
	if Level(atomic.LoadInt32(l.level)) < lvl {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02T15:04:05.000")
	name := levelNames[lvl]
	if l.color {
		name = levelColors[lvl].Sprint(name)
	}
	fmt.Fprintf(l.out, "%s [%s] %s", ts, name, msg)
	all := append(append([]interface{}{}, l.ctx...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		fmt.Fprintf(l.out, " %v=%v", all[i], all[i+1])
	}
	if lvl == LevelError {
		fmt.Fprintf(l.out, " stack=%v", stack.Caller(2))
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LevelError, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LevelWarn, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LevelInfo, msg, kv) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LevelDebug, msg, kv) }
func (l *Logger) Trace(msg string, kv ...interface{}) { l.log(LevelTrace, msg, kv) }

func Error(msg string, kv ...interface{}) { root.Error(msg, kv...) }
func Warn(msg string, kv ...interface{})  { root.Warn(msg, kv...) }
func Info(msg string, kv ...interface{})  { root.Info(msg, kv...) }
func Debug(msg string, kv ...interface{}) { root.Debug(msg, kv...) }
func Trace(msg string, kv ...interface{}) { root.Trace(msg, kv...) }
