package devcmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/warptools/devicectl/devapi"
)

// Conn is everything a device constructor gets from the command line.
type Conn struct {
	Address string
	Token   string
	// Debug is the global verbosity level.
	Debug int
	// Extra holds the values of the class's own parameters (and any added with WithParams),
	// keyed by flag name.
	Extra Args
}

// Constructor builds a device handle.
type Constructor[D any] func(ctx context.Context, conn Conn) (D, error)

// ClassSpec declares a device class.  See Register.
type ClassSpec[D any] struct {
	Name  string
	Usage string
	New   Constructor[D]
	// Params are extra group-level options, e.g. a timeout.
	Params []cli.Flag
	// Commands lists the class's commands in declaration order.
	Commands func() []*Descriptor[D]
	// Strict turns duplicate command names into a registration error.
	Strict bool
	// GroupFactory replaces NewGroup as the way Class.Group builds the command group.
	GroupFactory func(class *Class[D], opts ...GroupOption) *Group[D]
}

// Class is a registered device class.  Its command table is fixed at registration.
type Class[D any] struct {
	spec     ClassSpec[D]
	commands map[string]*Descriptor[D]
	shadowed []string
}

// Register scans the class's descriptors and builds its command table.
// When two descriptors share a name, the later one wins and the name is reported by Shadowed,
// unless ClassSpec.Strict is set.
//
// Errors:
//
//   - devicectl-error-configuration -- missing name or constructor, descriptor without a name,
//     or a duplicate name in a strict class
func Register[D any](spec ClassSpec[D]) (*Class[D], error) {
	if spec.Name == "" {
		return nil, devapi.ErrorConfiguration("device class has no name")
	}
	if spec.New == nil {
		return nil, devapi.ErrorConfiguration(fmt.Sprintf("device class %q has no constructor", spec.Name))
	}
	c := &Class[D]{
		spec:     spec,
		commands: map[string]*Descriptor[D]{},
	}
	if spec.Commands == nil {
		return c, nil
	}
	for _, d := range spec.Commands() {
		if d == nil {
			continue
		}
		name := d.Name()
		if name == "" {
			return nil, devapi.ErrorConfiguration(fmt.Sprintf("device class %q: command without a name", spec.Name))
		}
		if _, exists := c.commands[name]; exists {
			if spec.Strict {
				return nil, devapi.ErrorConfiguration(fmt.Sprintf("device class %q: duplicate command %q", spec.Name, name))
			}
			c.shadowed = append(c.shadowed, name)
		}
		c.commands[name] = d
	}
	return c, nil
}

// MustRegister is Register for package-level declarations.  It panics on error.
func MustRegister[D any](spec ClassSpec[D]) *Class[D] {
	c, err := Register(spec)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Class[D]) Name() string {
	return c.spec.Name
}

func (c *Class[D]) Usage() string {
	return c.spec.Usage
}

func (c *Class[D]) Params() []cli.Flag {
	return c.spec.Params
}

// Names returns the command names, sorted.
func (c *Class[D]) Names() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Class[D]) Lookup(name string) (*Descriptor[D], bool) {
	d, ok := c.commands[name]
	return d, ok
}

// Shadowed lists the names that were declared more than once, in the order the duplicates were seen.
func (c *Class[D]) Shadowed() []string {
	return append([]string(nil), c.shadowed...)
}

// New constructs a device handle.
func (c *Class[D]) New(ctx context.Context, conn Conn) (D, error) {
	return c.spec.New(ctx, conn)
}

// Group builds a command group for this class.
func (c *Class[D]) Group(opts ...GroupOption) *Group[D] {
	if c.spec.GroupFactory != nil {
		return c.spec.GroupFactory(c, opts...)
	}
	return NewGroup(c, opts...)
}

// Command is shorthand for c.Group(opts...).Command().
func (c *Class[D]) Command(opts ...GroupOption) *cli.Command {
	return c.Group(opts...).Command()
}

// CommandInfo describes a command for documentation.
type CommandInfo struct {
	Name      string
	Method    string
	Usage     string
	Doc       string
	ArgsUsage string
	Flags     []FlagInfo
}

type FlagInfo struct {
	Names      []string
	Usage      string
	TakesValue bool
}

// Reference describes every command, sorted by name.
func (c *Class[D]) Reference() []CommandInfo {
	infos := make([]CommandInfo, 0, len(c.commands))
	for _, name := range c.Names() {
		d := c.commands[name]
		infos = append(infos, CommandInfo{
			Name:      name,
			Method:    d.Method(),
			Usage:     d.Usage(),
			Doc:       d.Doc(),
			ArgsUsage: d.ArgsUsage(),
			Flags:     describeFlags(d.Flags()),
		})
	}
	return infos
}

// ParamInfo describes the class's own group parameters.
func (c *Class[D]) ParamInfo() []FlagInfo {
	return describeFlags(c.spec.Params)
}

func describeFlags(flags []cli.Flag) []FlagInfo {
	infos := make([]FlagInfo, 0, len(flags))
	for _, f := range flags {
		info := FlagInfo{Names: f.Names()}
		if dg, ok := f.(cli.DocGenerationFlag); ok {
			info.Usage = dg.GetUsage()
			info.TakesValue = dg.TakesValue()
		}
		infos = append(infos, info)
	}
	return infos
}
