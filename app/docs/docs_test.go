package docs

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour/ansi"
	qt "github.com/frankban/quicktest"

	"github.com/warptools/devicectl/devapi"
)

func TestPickStyle(t *testing.T) {
	for _, name := range []string{"auto", "dark", "light", "notty"} {
		_, err := pickStyle(name)
		qt.Assert(t, err, qt.IsNil, qt.Commentf("style %q", name))
	}
	_, err := pickStyle("neon")
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeArgument)
}

func TestRenderNoTTY(t *testing.T) {
	out, err := render("# plug\n\nControl a smart plug.\n", mustStyle(t, "notty"), 60)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out, qt.Contains, "plug")
	qt.Assert(t, out, qt.Contains, "Control a smart plug.")
}

func TestTerminalWidthOfBuffer(t *testing.T) {
	var sb strings.Builder
	_, tty := terminalWidth(&sb)
	qt.Assert(t, tty, qt.IsFalse)
}

func mustStyle(t *testing.T, name string) ansi.StyleConfig {
	s, err := pickStyle(name)
	qt.Assert(t, err, qt.IsNil)
	return s
}
