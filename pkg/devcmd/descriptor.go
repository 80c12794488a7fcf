package devcmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/warptools/devicectl/devapi"
)

// Handler is the unbound form of a device operation.
// It is usually a method expression, e.g. `(*Plug).On`.
type Handler[D any] func(ctx context.Context, dev D, args Args) (interface{}, error)

// Option configures a Descriptor.
type Option func(*settings)

type settings struct {
	name       string
	usage      string
	doc        string
	middleware []Middleware
	flags      []cli.Flag
	args       []string
}

// Named overrides the command name, which otherwise is the lowercased method name.
func Named(name string) Option {
	return func(s *settings) { s.name = name }
}

// Use appends middleware.  The first middleware given, over all Use options, runs outermost.
func Use(middlewares ...Middleware) Option {
	return func(s *settings) { s.middleware = append(s.middleware, middlewares...) }
}

// Usage sets the one-line help text.
func Usage(usage string) Option {
	return func(s *settings) { s.usage = usage }
}

// Doc sets the long help text.  Its first line is the default usage.
func Doc(doc string) Option {
	return func(s *settings) { s.doc = strings.TrimSpace(doc) }
}

// WithFlags declares the command's own options.
// Their values show up in Args under each flag's primary name.
func WithFlags(flags ...cli.Flag) Option {
	return func(s *settings) { s.flags = append(s.flags, flags...) }
}

// WithArgs declares required positional arguments, in order.
func WithArgs(names ...string) Option {
	return func(s *settings) { s.args = append(s.args, names...) }
}

// Descriptor is the declaration of one device command: which operation it invokes,
// how it's named, and the middleware around it.
// A Descriptor holds no device; the handle is bound at dispatch time.
type Descriptor[D any] struct {
	method  string
	handler Handler[D]
	settings
}

// Describe declares a command for method, dispatched to h.
func Describe[D any](method string, h Handler[D], opts ...Option) *Descriptor[D] {
	d := &Descriptor[D]{
		method:  method,
		handler: h,
	}
	for _, opt := range opts {
		opt(&d.settings)
	}
	return d
}

func (d *Descriptor[D]) Method() string {
	return d.method
}

// Name is the explicit name if one was given, and otherwise the lowercased method name.
func (d *Descriptor[D]) Name() string {
	if d.name != "" {
		return d.name
	}
	return strings.ToLower(d.method)
}

func (d *Descriptor[D]) Usage() string {
	if d.usage != "" {
		return d.usage
	}
	first, _, _ := strings.Cut(d.doc, "\n")
	return strings.TrimSpace(first)
}

func (d *Descriptor[D]) Doc() string {
	return d.doc
}

func (d *Descriptor[D]) Flags() []cli.Flag {
	return d.flags
}

func (d *Descriptor[D]) Args() []string {
	return d.args
}

// ArgsUsage renders the positional arguments for help output, e.g. "LEVEL NAME".
func (d *Descriptor[D]) ArgsUsage() string {
	names := make([]string, len(d.args))
	for i, a := range d.args {
		names[i] = strings.ToUpper(a)
	}
	return strings.Join(names, " ")
}

// Invoke calls the operation on dev.
//
// Errors:
//
//   - devicectl-error-configuration -- the descriptor has no handler
//   - whatever the handler returns
func (d *Descriptor[D]) Invoke(ctx context.Context, dev D, args Args) (interface{}, error) {
	if d.handler == nil {
		return nil, devapi.ErrorConfiguration(fmt.Sprintf("command %q: no handler for method %q", d.Name(), d.method))
	}
	return d.handler(ctx, dev, args)
}

// Compose wraps base in the descriptor's middleware.
func (d *Descriptor[D]) Compose(base Func) Func {
	return Chain(base, d.middleware...)
}

// Materialize builds the executable cli command.
// Its action gathers Args from the parsed flags and positional arguments,
// runs base wrapped in the descriptor's middleware, and hands the final result to collect (if not nil).
// The wrap functions decorate that action; the first one is outermost.
func (d *Descriptor[D]) Materialize(base Func, collect func(ctx context.Context, result interface{}) error, wrap ...func(cli.ActionFunc) cli.ActionFunc) *cli.Command {
	run := d.Compose(base)
	action := func(c *cli.Context) error {
		args, err := d.parse(c)
		if err != nil {
			return err
		}
		result, err := run(c.Context, args)
		if err != nil {
			return err
		}
		if collect != nil {
			return collect(c.Context, result)
		}
		return nil
	}
	for i := len(wrap) - 1; i >= 0; i-- {
		action = wrap[i](action)
	}
	return &cli.Command{
		Name:        d.Name(),
		Usage:       d.Usage(),
		Description: d.doc,
		ArgsUsage:   d.ArgsUsage(),
		Flags:       d.flags,
		Action:      action,
	}
}

// parse collects the invocation's keyword arguments.
//
// Errors:
//
//   - devicectl-error-invalid-argument -- wrong number of positional arguments
func (d *Descriptor[D]) parse(c *cli.Context) (Args, error) {
	args := Args{}
	for _, f := range d.flags {
		name := f.Names()[0]
		args[name] = c.Value(name)
	}
	pos := c.Args()
	if pos.Len() < len(d.args) {
		return nil, devapi.ErrorArgument(d.Name(), fmt.Sprintf("missing argument %q", strings.ToUpper(d.args[pos.Len()])))
	}
	if pos.Len() > len(d.args) {
		return nil, devapi.ErrorArgument(d.Name(), fmt.Sprintf("unexpected extra argument %q", pos.Get(len(d.args))))
	}
	for i, name := range d.args {
		args[name] = pos.Get(i)
	}
	return args, nil
}
