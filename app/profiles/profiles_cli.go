package profiles

import (
	"fmt"
	"strings"

	"github.com/facette/natsort"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/devicectl/app/base"
	"github.com/warptools/devicectl/app/base/util"
	"github.com/warptools/devicectl/pkg/config"
	"github.com/warptools/devicectl/pkg/logging"
)

var profilesCmdDef = cli.Command{
	Name:  "profiles",
	Usage: "List the saved device profiles",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "reveal",
			Usage: "Show tokens in full",
		},
	},
	Action: util.ChainCmdMiddleware(cmdProfiles,
		util.CmdMiddlewareTracingSpan,
	),
}

func init() {
	appbase.App.Commands = append(appbase.App.Commands, &profilesCmdDef)
}

// cmdProfiles prints the profiles file as a table.
//
// Errors:
//
//   - devicectl-error-io -- the profiles file cannot be read
//   - devicectl-error-serialization -- the profiles file is malformed
func cmdProfiles(c *cli.Context) error {
	path := appbase.ProfilesPath(c.Context)
	profiles, err := config.LoadProfiles(path)
	if err != nil {
		return err
	}
	logger := logging.Ctx(c.Context)
	if len(profiles.Profiles) == 0 {
		logger.Info("profiles", "no profiles in %s", path)
		return nil
	}
	fmt.Fprintln(c.App.Writer, renderProfiles(profiles, c.Bool("reveal")))
	return nil
}

func renderProfiles(profiles config.Profiles, reveal bool) string {
	names := profiles.Names()
	natsort.Sort(names)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Class", "Address", "Token"})
	for _, name := range names {
		p := profiles.Profiles[name]
		token := p.Token
		if !reveal {
			token = maskToken(token)
		}
		tw.AppendRow(table.Row{name, p.Class, p.Address, token})
	}
	return tw.Render()
}

// maskToken keeps the last four characters of a token.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
