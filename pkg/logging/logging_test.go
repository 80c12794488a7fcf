package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	qt "github.com/frankban/quicktest"
)

func init() {
	color.NoColor = true
}

func TestLevels(t *testing.T) {
	var out, errs bytes.Buffer
	l := NewLogger(&out, &errs, LevelNone)

	l.Debug("dbg", "hidden")
	l.Trace("trc", "hidden")
	qt.Assert(t, errs.String(), qt.Equals, "")

	l.SetLevel(LevelDebug)
	l.Debug("dbg", "shown %d", 1)
	l.Trace("trc", "hidden")
	qt.Assert(t, errs.String(), qt.Equals, "dbg  shown 1\n")

	errs.Reset()
	l.SetLevel(LevelTrace)
	l.Trace("trc", "a\nb")
	qt.Assert(t, errs.String(), qt.Equals, "trc  a\ntrc  b\n")

	l.Out("result: %s", "ok")
	qt.Assert(t, out.String(), qt.Equals, "result: ok\n")
}

func TestContext(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&out, &out, LevelDebug)
	ctx := l.WithContext(context.Background())
	qt.Assert(t, Ctx(ctx), qt.Equals, l)
	qt.Assert(t, l.WithContext(ctx), qt.Equals, ctx)

	// No logger stored: a fresh default one comes back.
	qt.Assert(t, Ctx(context.Background()).Level(), qt.Equals, LevelNone)
}
