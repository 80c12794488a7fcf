/*
Package devdocs renders a markdown reference of device classes:
one section per class, listing its options and every command.

The output is plain markdown, meant to be either saved as-is
or handed to a terminal renderer.
*/
package devdocs

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/MakeNowJust/heredoc"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devcmd"
)

// ConnectionOptions are the options every device group takes, whatever its class.
var ConnectionOptions = []devcmd.FlagInfo{
	{Names: []string{"address", "ip"}, Usage: "IP address of the device", TakesValue: true},
	{Names: []string{"token"}, Usage: "authentication token of the device (32 characters)", TakesValue: true},
	{Names: []string{"profile"}, Usage: "read address and token from the named profile", TakesValue: true},
}

type classDoc struct {
	Name       string
	Usage      string
	Connection []devcmd.FlagInfo
	Params     []devcmd.FlagInfo
	Commands   []devcmd.CommandInfo
}

// helper for heredoc dedenting plus don't do a trailing linebreak.
func docnl(s string) string {
	s = heredoc.Doc(s)
	return s[:len(s)-1]
}

var classTemplate = template.Must(template.New("class").Funcs(template.FuncMap{
	"flag":  flagName,
	"trim":  strings.TrimSpace,
	"title": title,
}).Parse(docnl(`
	# {{.Name}}
	{{if .Usage}}
	{{title .Usage}}.
	{{end}}
	## Connection

	{{range .Connection}}- {{flag .}}: {{.Usage}}
	{{end}}
	{{- if .Params}}
	## Options

	{{range .Params}}- {{flag .}}{{if .Usage}}: {{.Usage}}{{end}}
	{{end}}
	{{- end}}
	## Commands
	{{range .Commands}}
	### {{.Name}}

	` + "`{{$.Name}} {{.Name}}{{if .Flags}} [OPTIONS]{{end}}{{if .ArgsUsage}} {{.ArgsUsage}}{{end}}`" + `
	{{if .Doc}}
	{{trim .Doc}}
	{{end}}
	{{- if .Flags}}
	{{range .Flags}}- {{flag .}}{{if .Usage}}: {{.Usage}}{{end}}
	{{end}}
	{{- end}}
	{{- end}}
`)))

var indexTemplate = template.Must(template.New("index").Parse(docnl(`
	| Class | Commands |
	| ----- | -------- |
	{{- range .}}
	| {{.Name}} | {{len .Commands}} |
	{{- end}}
`)))

func flagName(f devcmd.FlagInfo) string {
	parts := make([]string, 0, len(f.Names))
	for _, n := range f.Names {
		dash := "--"
		if len(n) == 1 {
			dash = "-"
		}
		parts = append(parts, "`"+dash+n+"`")
	}
	s := strings.Join(parts, ", ")
	if f.TakesValue {
		s += " VALUE"
	}
	return s
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Markdown writes the reference for the named classes, in the order given.
// With no names, every class in reg is documented, sorted by name,
// preceded by a summary table.
//
// Errors:
//
//   - devicectl-error-invalid-argument -- a named class is not registered
//   - devicectl-error-io -- writing to w failed
func Markdown(w io.Writer, reg *devcmd.Registry, classes ...string) error {
	var entries []devcmd.Entry
	if len(classes) == 0 {
		entries = reg.Entries()
	}
	for _, name := range classes {
		e, ok := reg.Lookup(name)
		if !ok {
			return devapi.ErrorArgument("docs", fmt.Sprintf("no device class named %q (known: %s)", name, strings.Join(reg.Names(), ", ")))
		}
		entries = append(entries, e)
	}

	docs := make([]classDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, classDoc{
			Name:       e.Name(),
			Usage:      e.Usage(),
			Connection: ConnectionOptions,
			Params:     e.ParamInfo(),
			Commands:   e.Reference(),
		})
	}

	if len(classes) == 0 && len(docs) > 1 {
		if err := indexTemplate.Execute(w, docs); err != nil {
			return devapi.ErrorIo("cannot write docs", "", err)
		}
		if _, err := io.WriteString(w, "\n\n"); err != nil {
			return devapi.ErrorIo("cannot write docs", "", err)
		}
	}
	for i, d := range docs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return devapi.ErrorIo("cannot write docs", "", err)
			}
		}
		if err := classTemplate.Execute(w, d); err != nil {
			return devapi.ErrorIo("cannot write docs", "", err)
		}
	}
	return nil
}
