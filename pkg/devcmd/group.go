package devcmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/config"
	"github.com/warptools/devicectl/pkg/logging"
	"github.com/warptools/devicectl/pkg/tracing"
	"github.com/warptools/devicectl/pkg/validate"
)

const logTag = "devcmd"

// Globals are the application-wide options a group reads when it is invoked.
type Globals struct {
	// Debug is the verbosity level (the number of -v flags).
	Debug int
}

// Profile is a named set of connection parameters.
type Profile struct {
	Class   string
	Address string
	Token   string
}

// ProfileLookup resolves a --profile name.
type ProfileLookup func(ctx context.Context, name string) (Profile, error)

// Source is how a group exposes its commands to the cli: the names, and
// the executable command for a name.
type Source interface {
	Names() []string
	Resolve(name string) (*cli.Command, bool)
}

// GroupOption configures a Group.
type GroupOption func(*groupConfig)

type resultFunc func(ctx context.Context, dev interface{}, results []interface{}) error

type groupConfig struct {
	name       string
	usage      string
	globals    *Globals
	params     []cli.Flag
	chain      bool
	result     resultFunc
	passDevice bool
	profiles   ProfileLookup
	wrap       []func(cli.ActionFunc) cli.ActionFunc
}

// WithName overrides the group's command name, which otherwise is the class name.
func WithName(name string) GroupOption {
	return func(cfg *groupConfig) { cfg.name = name }
}

// WithGlobals gives the group access to the application-wide options.
// The pointer is read on every invocation, after the application has parsed its flags.
func WithGlobals(g *Globals) GroupOption {
	return func(cfg *groupConfig) { cfg.globals = g }
}

// WithParams adds group-level options on top of the class's own.
// Their values are passed to the constructor in Conn.Extra.
func WithParams(flags ...cli.Flag) GroupOption {
	return func(cfg *groupConfig) { cfg.params = append(cfg.params, flags...) }
}

// Chained lets one invocation run several commands in a row, e.g. `plug on status`.
// All of them run against the same device handle.
func Chained() GroupOption {
	return func(cfg *groupConfig) { cfg.chain = true }
}

// WithProfiles enables the --profile option.
func WithProfiles(lookup ProfileLookup) GroupOption {
	return func(cfg *groupConfig) { cfg.profiles = lookup }
}

// WithActionMiddleware decorates the action of every command of the group, first one outermost.
// The device is constructed inside of these.
func WithActionMiddleware(mws ...func(cli.ActionFunc) cli.ActionFunc) GroupOption {
	return func(cfg *groupConfig) { cfg.wrap = append(cfg.wrap, mws...) }
}

// OnResult registers a callback that runs once all chosen commands have completed,
// with the device handle and the results of those commands in order.
func OnResult[D any](fn func(ctx context.Context, dev D, results []interface{}) error) GroupOption {
	return func(cfg *groupConfig) {
		cfg.passDevice = true
		cfg.result = func(ctx context.Context, dev interface{}, results []interface{}) error {
			d, _ := dev.(D)
			return fn(ctx, d, results)
		}
	}
}

// OnResultNoDevice is OnResult for callbacks that don't need the device.
func OnResultNoDevice(fn func(ctx context.Context, results []interface{}) error) GroupOption {
	return func(cfg *groupConfig) {
		cfg.passDevice = false
		cfg.result = func(ctx context.Context, _ interface{}, results []interface{}) error {
			return fn(ctx, results)
		}
	}
}

// Group is the command-line face of a device class.
//
// Per invocation, it validates the connection parameters, waits for a subcommand to be chosen,
// constructs the device once, and runs the chosen commands against it.
// A Group is not safe for concurrent invocations.
type Group[D any] struct {
	class    *Class[D]
	commands map[string]*Descriptor[D]
	names    []string
	params   []cli.Flag
	extra    []cli.Flag
	cfg      groupConfig

	inv *invocation[D]
}

type invocation[D any] struct {
	state    State
	conn     Conn
	dev      D
	built    bool
	resolved map[string]*cli.Command
	results  []interface{}
}

func newInvocation[D any]() *invocation[D] {
	return &invocation[D]{
		state:    AwaitingSubcommand,
		resolved: map[string]*cli.Command{},
	}
}

// NewGroup builds a command group from a registered class.
// It panics if class did not come from Register: that is a programming error.
func NewGroup[D any](class *Class[D], opts ...GroupOption) *Group[D] {
	if class == nil || class.commands == nil {
		panic(devapi.ErrorConfiguration("device group built from an unregistered class"))
	}
	cfg := groupConfig{
		name:       strings.ToLower(class.Name()),
		usage:      class.Usage(),
		passDevice: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	g := &Group[D]{
		class:    class,
		commands: make(map[string]*Descriptor[D], len(class.commands)),
		cfg:      cfg,
		inv:      &invocation[D]{state: Uninitialized, resolved: map[string]*cli.Command{}},
	}
	for name, d := range class.commands {
		g.commands[name] = d
		g.names = append(g.names, name)
	}
	sort.Strings(g.names)
	g.extra = append(append([]cli.Flag{}, class.Params()...), cfg.params...)
	g.params = append(connParams(), g.extra...)
	return g
}

func connParams() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"ip"},
			Usage:   "IP address of the device",
			EnvVars: []string{config.EnvDevicectlAddress},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "authentication token of the device (32 characters)",
			EnvVars: []string{config.EnvDevicectlToken},
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "read address and token from the named profile",
		},
	}
}

func (g *Group[D]) Class() *Class[D] {
	return g.class
}

// Names returns the command names, sorted.
func (g *Group[D]) Names() []string {
	return append([]string(nil), g.names...)
}

// State reports where the current invocation is.
func (g *Group[D]) State() State {
	return g.inv.state
}

// Device returns the handle of the current invocation, if one was constructed.
func (g *Group[D]) Device() (D, bool) {
	return g.inv.dev, g.inv.built
}

// Conn returns the validated connection parameters of the current invocation.
func (g *Group[D]) Conn() Conn {
	return g.inv.conn
}

// Command returns the cli command for the group.
func (g *Group[D]) Command() *cli.Command {
	cmd := &cli.Command{
		Name:            g.cfg.name,
		Usage:           g.cfg.usage,
		Flags:           g.params,
		Before:          g.before,
		HideHelpCommand: true,
	}
	if g.cfg.chain {
		cmd.ArgsUsage = "COMMAND [COMMAND OPTIONS] [COMMAND [COMMAND OPTIONS]...]"
		cmd.Description = "Commands: " + strings.Join(g.names, ", ")
		cmd.Action = g.runChain
		return cmd
	}
	cmd.Subcommands = g.placeholders()
	cmd.Action = g.orphan
	return cmd
}

// before resets the invocation and validates the connection parameters.
// It runs before any subcommand is looked up, so a bad address fails before any device exists.
//
// Errors:
//
//   - devicectl-error-invalid-parameter -- missing or malformed address or token, or unusable profile
//   - devicectl-error-profile-missing -- from the profile lookup
func (g *Group[D]) before(c *cli.Context) error {
	g.inv = newInvocation[D]()

	address := c.String("address")
	token := c.String("token")
	if name := c.String("profile"); name != "" {
		if g.cfg.profiles == nil {
			return devapi.ErrorInvalidParameter("profile", "profiles are not available")
		}
		p, err := g.cfg.profiles(c.Context, name)
		if err != nil {
			return err
		}
		if p.Class != "" && p.Class != g.class.Name() {
			return devapi.ErrorInvalidParameter("profile", fmt.Sprintf("profile %q is for a %s, not a %s", name, p.Class, g.class.Name()))
		}
		if address == "" {
			address = p.Address
		}
		if token == "" {
			token = p.Token
		}
	}
	if address == "" {
		return devapi.ErrorInvalidParameter("address", `missing option "--address"`)
	}
	if token == "" {
		return devapi.ErrorInvalidParameter("token", `missing option "--token"`)
	}
	address, err := validate.Address(address)
	if err != nil {
		return err
	}
	token, err = validate.Token(token)
	if err != nil {
		return err
	}

	extra := Args{}
	for _, f := range g.extra {
		name := f.Names()[0]
		extra[name] = c.Value(name)
	}
	conn := Conn{
		Address: address,
		Token:   token,
		Extra:   extra,
	}
	if g.cfg.globals != nil {
		conn.Debug = g.cfg.globals.Debug
	}
	g.inv.conn = conn
	logging.Ctx(c.Context).Trace(logTag, "%s: address=%s params=%v", g.class.Name(), address, extra)
	return nil
}

// placeholders lists one cli command per name, in sorted order.
// Their actions materialize the real command on first use.
func (g *Group[D]) placeholders() []*cli.Command {
	cmds := make([]*cli.Command, 0, len(g.names))
	for _, name := range g.names {
		d := g.commands[name]
		name := name
		cmds = append(cmds, &cli.Command{
			Name:        name,
			Usage:       d.Usage(),
			Description: d.Doc(),
			ArgsUsage:   d.ArgsUsage(),
			Flags:       d.Flags(),
			Action: func(c *cli.Context) error {
				cmd, ok := g.Resolve(name)
				if !ok {
					return g.unknown(name)
				}
				if err := cmd.Action(c); err != nil {
					return err
				}
				return g.finish(c.Context)
			},
		})
	}
	return cmds
}

// orphan handles the group being invoked without a known subcommand.
func (g *Group[D]) orphan(c *cli.Context) error {
	if c.Args().Present() {
		return g.unknown(c.Args().First())
	}
	return cli.ShowSubcommandHelp(c)
}

func (g *Group[D]) unknown(name string) error {
	return cli.Exit(fmt.Sprintf("No such command %q.", name), 2)
}

// Resolve returns the executable command for name, building it on first use within an invocation.
// The command is bound to the group's one device handle.
func (g *Group[D]) Resolve(name string) (*cli.Command, bool) {
	if cmd, ok := g.inv.resolved[name]; ok {
		return cmd, true
	}
	d, ok := g.commands[name]
	if !ok {
		return nil, false
	}
	wrap := append(append([]func(cli.ActionFunc) cli.ActionFunc{}, g.cfg.wrap...), g.ensureDevice)
	cmd := d.Materialize(g.bind(d), g.collect, wrap...)
	g.inv.resolved[name] = cmd
	return cmd, true
}

var _ Source = (*Group[struct{}])(nil)

// bind returns d's operation with the invocation's device as receiver.
func (g *Group[D]) bind(d *Descriptor[D]) Func {
	return func(ctx context.Context, args Args) (interface{}, error) {
		return d.Invoke(ctx, g.inv.dev, args)
	}
}

func (g *Group[D]) collect(ctx context.Context, result interface{}) error {
	g.inv.results = append(g.inv.results, result)
	return nil
}

func (g *Group[D]) ensureDevice(next cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := g.construct(c.Context); err != nil {
			return err
		}
		g.inv.state = SubcommandRunning
		return next(c)
	}
}

// construct builds the device handle, once per invocation.
func (g *Group[D]) construct(ctx context.Context) (err error) {
	if g.inv.built {
		return nil
	}
	if g.inv.state == Uninitialized {
		return devapi.ErrorConfiguration(fmt.Sprintf("device group %q: command run outside of an invocation", g.cfg.name))
	}
	ctx, span := tracing.Start(ctx, "construct device", trace.WithAttributes(
		attribute.String(tracing.AttrKeyDevicectlDeviceClass, g.class.Name()),
		attribute.String(tracing.AttrKeyDevicectlDeviceAddress, g.inv.conn.Address),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	logging.Ctx(ctx).Debug(logTag, "constructing %s for %s", g.class.Name(), g.inv.conn.Address)
	dev, err := g.class.New(ctx, g.inv.conn)
	if err != nil {
		return err
	}
	g.inv.dev = dev
	g.inv.built = true
	g.inv.state = DeviceConstructed
	return nil
}

// finish runs the result callback and closes the invocation.
func (g *Group[D]) finish(ctx context.Context) error {
	defer func() { g.inv.state = Done }()
	if g.cfg.result == nil {
		return nil
	}
	var dev interface{}
	if g.cfg.passDevice && g.inv.built {
		dev = g.inv.dev
	}
	return g.cfg.result(ctx, dev, g.inv.results)
}

// runChain runs every command named in the arguments, in order, on one device.
func (g *Group[D]) runChain(c *cli.Context) error {
	rest := c.Args().Slice()
	if len(rest) == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	segments, err := g.split(rest)
	if err != nil {
		return err
	}
	for _, seg := range segments {
		cmd, _ := g.Resolve(seg[0])
		app := &cli.App{
			Name:            g.cfg.name,
			Writer:          c.App.Writer,
			ErrWriter:       c.App.ErrWriter,
			Commands:        []*cli.Command{cmd},
			HideHelpCommand: true,
			ExitErrHandler:  func(*cli.Context, error) {},
		}
		if err := app.RunContext(c.Context, append([]string{g.cfg.name}, seg...)); err != nil {
			return err
		}
	}
	return g.finish(c.Context)
}

// split cuts chained arguments into one segment per command.
// A segment is the command name, its flags, and as many positional arguments as the command declares.
func (g *Group[D]) split(args []string) ([][]string, error) {
	var segments [][]string
	for len(args) > 0 {
		d, ok := g.commands[args[0]]
		if !ok {
			return nil, g.unknown(args[0])
		}
		seg := []string{args[0]}
		args = args[1:]
		positional := 0
		for len(args) > 0 {
			tok := args[0]
			if len(tok) > 1 && strings.HasPrefix(tok, "-") {
				seg = append(seg, tok)
				args = args[1:]
				if !strings.Contains(tok, "=") && takesValue(d.Flags(), tok) && len(args) > 0 {
					seg = append(seg, args[0])
					args = args[1:]
				}
				continue
			}
			if positional == len(d.Args()) {
				break
			}
			seg = append(seg, tok)
			args = args[1:]
			positional++
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func takesValue(flags []cli.Flag, tok string) bool {
	name := strings.TrimLeft(tok, "-")
	for _, f := range flags {
		for _, n := range f.Names() {
			if n != name {
				continue
			}
			if dg, ok := f.(cli.DocGenerationFlag); ok {
				return dg.TakesValue()
			}
			return false
		}
	}
	return false
}
