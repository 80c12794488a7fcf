package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	appbase "github.com/warptools/devicectl/app/base"
	"github.com/warptools/devicectl/app/base/util"
	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devdocs"
)

var docsCmdDef = cli.Command{
	Name:      "docs",
	Usage:     "Print the command reference of device classes",
	ArgsUsage: "[CLASS...]",
	Description: "Without arguments, every device class is documented.\n" +
		"On a terminal the reference is rendered; otherwise, or with --raw, it is printed as markdown.",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Print markdown even on a terminal",
		},
		&cli.StringFlag{
			Name:  "style",
			Usage: "Rendering style: auto, dark, light or notty",
			Value: "auto",
		},
	},
	Action: util.ChainCmdMiddleware(cmdDocs,
		util.CmdMiddlewareTracingSpan,
	),
}

func init() {
	appbase.App.Commands = append(appbase.App.Commands, &docsCmdDef)
}

// cmdDocs writes the reference for the named classes.
//
// Errors:
//
//   - devicectl-error-invalid-argument -- unknown class, or unknown style
//   - devicectl-error-io -- output failed
//   - devicectl-error-internal -- the renderer failed
func cmdDocs(c *cli.Context) error {
	var buf bytes.Buffer
	if err := devdocs.Markdown(&buf, appbase.Devices, c.Args().Slice()...); err != nil {
		return err
	}
	width, tty := terminalWidth(c.App.Writer)
	if c.Bool("raw") || !tty {
		if _, err := c.App.Writer.Write(buf.Bytes()); err != nil {
			return devapi.ErrorIo("cannot write docs", "", err)
		}
		return nil
	}
	style, err := pickStyle(c.String("style"))
	if err != nil {
		return err
	}
	out, err := render(buf.String(), style, width)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(c.App.Writer, out); err != nil {
		return devapi.ErrorIo("cannot write docs", "", err)
	}
	return nil
}

// terminalWidth reports whether w is a terminal, and how wide it is.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	return width, true
}

func pickStyle(name string) (ansi.StyleConfig, error) {
	switch name {
	case "auto":
		if termenv.HasDarkBackground() {
			return glamour.DarkStyleConfig, nil
		}
		return glamour.LightStyleConfig, nil
	case "dark":
		return glamour.DarkStyleConfig, nil
	case "light":
		return glamour.LightStyleConfig, nil
	case "notty":
		return glamour.NoTTYStyleConfig, nil
	}
	return ansi.StyleConfig{}, devapi.ErrorArgument("docs", fmt.Sprintf("unknown style %q", name))
}

// render turns markdown into terminal output.
//
// Errors:
//
//   - devicectl-error-internal -- the renderer failed
func render(md string, style ansi.StyleConfig, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", devapi.ErrorInternal("cannot create renderer", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", devapi.ErrorInternal("cannot render docs", err)
	}
	return out, nil
}
