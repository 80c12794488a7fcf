package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Verbosity levels, as counted from repeated -v flags.
const (
	LevelNone  = 0
	LevelDebug = 1
	LevelTrace = 2
)

type Logger struct {
	out   io.Writer
	err   io.Writer
	level int
}

func DefaultLogger() *Logger {
	return &Logger{
		out:   os.Stdout,
		err:   os.Stderr,
		level: LevelNone,
	}
}

func NewLogger(out, err io.Writer, level int) *Logger {
	return &Logger{
		out,
		err,
		level,
	}
}

type ctxKey struct{}

// Ctx returns the logger stored in ctx, or a default logger writing to the process stdio.
func Ctx(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return DefaultLogger()
}

// WithContext returns a copy of ctx carrying l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	if existing, ok := ctx.Value(ctxKey{}).(*Logger); ok && existing == l {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// SetLevel changes the verbosity.  Only meant to be called while the
// application is still reading its global flags.
func (l *Logger) SetLevel(level int) {
	l.level = level
}

func (l *Logger) Level() int {
	return l.level
}

func (l *Logger) Out(f string, args ...interface{}) {
	fmt.Fprintf(l.out, f+"\n", args...)
}

func (l *Logger) Info(tag string, f string, args ...interface{}) {
	print(l.err, color.New(color.FgHiGreen), tag, f, args...)
}

func (l *Logger) Debug(tag string, f string, args ...interface{}) {
	if l.level >= LevelDebug {
		print(l.err, color.New(color.FgGreen), tag, f, args...)
	}
}

func (l *Logger) Trace(tag string, f string, args ...interface{}) {
	if l.level >= LevelTrace {
		print(l.err, color.New(color.FgCyan), tag, f, args...)
	}
}

func print(w io.Writer, tagColor *color.Color, tag, f string, args ...interface{}) {
	str := fmt.Sprintf(f, args...)
	for _, line := range strings.Split(str, "\n") {
		fmt.Fprintf(w, "%s  %s\n",
			tagColor.Sprint(tag),
			color.WhiteString(line))
	}
}
