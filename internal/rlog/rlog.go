// Package rlog is a small structured, leveled logger used throughout the
// node. It follows the go-ethereum log15 convention of a message plus a
// flat list of key/value context pairs rather than format strings.
package rlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity.
type Level int

const (
	LevelCrit Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelCrit:
		return "CRIT"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "???"
	}
}

var colors = map[Level]string{
	LevelCrit:  "\x1b[35m",
	LevelError: "\x1b[31m",
	LevelWarn:  "\x1b[33m",
	LevelInfo:  "\x1b[32m",
	LevelDebug: "\x1b[36m",
}

const colorReset = "\x1b[0m"

// Logger writes leveled, contextual log lines to an output stream.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	color    bool
	minLevel Level
	ctx      []interface{}
}

var root = New(os.Stderr)

// New builds a Logger writing to w, colorizing output when w is a terminal.
func New(w io.Writer) *Logger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
		if color {
			w = colorable.NewColorable(f)
		}
	}
	return &Logger{out: w, color: color, minLevel: LevelDebug}
}

// SetLevel bounds the verbosity of the root logger.
func SetLevel(l Level) { root.mu.Lock(); root.minLevel = l; root.mu.Unlock() }

// With returns a child logger with additional persistent context.
func (l *Logger) With(ctx ...interface{}) *Logger {
	return &Logger{out: l.out, color: l.color, minLevel: l.minLevel, ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
}

func (l *Logger) log(lvl Level, msg string, ctx []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl > l.minLevel {
		return
	}
	var b []byte
	ts := time.Now().Format("2006-01-02T15:04:05.000")
	if l.color {
		b = append(b, colors[lvl]...)
		b = append(b, lvl.String()...)
		b = append(b, colorReset...)
	} else {
		b = append(b, lvl.String()...)
	}
	b = append(b, ' ')
	b = append(b, ts...)
	b = append(b, ' ')
	b = append(b, msg...)
	all := append(append([]interface{}{}, l.ctx...), ctx...)
	for i := 0; i+1 < len(all); i += 2 {
		b = append(b, fmt.Sprintf(" %v=%v", all[i], all[i+1])...)
	}
	b = append(b, '\n')
	l.out.Write(b)
	if lvl == LevelCrit {
		os.Exit(1)
	}
}

func (l *Logger) Crit(msg string, ctx ...interface{})  { l.log(LevelCrit, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LevelError, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LevelWarn, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LevelInfo, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LevelDebug, msg, ctx) }

// Package-level helpers delegate to the root logger, mirroring the
// log.Crit/log.Error/... call sites used throughout the teacher's rawdb
// accessors and handler code.
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }

// With returns a child of the root logger carrying additional context.
func With(ctx ...interface{}) *Logger { return root.With(ctx...) }
