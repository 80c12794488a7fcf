package appbase

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/warptools/devicectl/app/base/util"
	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/config"
	"github.com/warptools/devicectl/pkg/devcmd"
	"github.com/warptools/devicectl/pkg/logging"
	"github.com/warptools/devicectl/pkg/tracing"
)

const VERSION = "v0.1.0"

// Globals is filled from the application flags before any device group runs.
var Globals = &devcmd.Globals{}

// Devices holds every device class the application offers.
// Packages add theirs with RegisterDevice.
var Devices = devcmd.NewRegistry()

var App = &cli.App{
	Name:    "devicectl",
	Version: VERSION,
	Usage:   "control devices on your network",

	Reader:    closedReader{}, // Replace with os.Stdin in real application; or other wiring, in tests.
	Writer:    panicWriter{},  // Replace with os.Stdout in real application; or other wiring, in tests.
	ErrWriter: panicWriter{},  // Replace with os.Stderr in real application; or other wiring, in tests.

	UseShortOptionHandling: true,

	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"v"},
			Usage:   "Print debug output; repeat for more",
		},
		&cli.StringFlag{
			Name:      "config",
			Usage:     "Read profiles from this file instead of the default one",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      "trace.file",
			Usage:     "Enable tracing and emit output to file",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  "trace.http.enable",
			Usage: "Enable remote tracing over http",
		},
		&cli.BoolFlag{
			Name:  "trace.http.insecure",
			Usage: "Allows insecure http",
		},
		&cli.StringFlag{
			Name:  "trace.http.endpoint",
			Usage: "Sets an endpoint for remote open-telemetry tracing collection",
		},
	},

	// The commands slice is updated by each package that contains commands.
	// Import the parent of this package to get that all done for you!
	Commands: []*cli.Command{},

	Before: before,
	After:  after,

	// Device failures are reported by devcmd.Guard, which wraps the whole run.
	ExitErrHandler: func(c *cli.Context, err error) {
		if err == nil || devapi.IsDeviceError(err) {
			return
		}
		fmt.Fprintf(c.App.ErrWriter, "Error: %s\n", err)
	},
}

// RegisterDevice adds a device class to the application, as a command group named after it.
// It panics if a class of that name is already registered.
func RegisterDevice(e devcmd.Entry, opts ...devcmd.GroupOption) {
	if err := Devices.Add(e); err != nil {
		panic(err)
	}
	opts = append([]devcmd.GroupOption{
		devcmd.WithGlobals(Globals),
		devcmd.WithProfiles(LookupProfile),
		devcmd.WithActionMiddleware(util.CmdMiddlewareTracingSpan),
	}, opts...)
	App.Commands = append(App.Commands, e.Command(opts...))
}

type ctxKey int

const (
	keyProfilesPath ctxKey = iota
	keyTracerProvider
)

// before reads the global flags into Globals, the logger, and the context.
//
// Errors:
//
//   - devicectl-error-initialization -- the environment or tracing cannot be set up
func before(c *cli.Context) error {
	Globals.Debug = c.Count("debug")
	logger := logging.Ctx(c.Context)
	logger.SetLevel(Globals.Debug)
	c.Context = logger.WithContext(c.Context)

	if err := config.ReloadGlobalState(); err != nil {
		return err
	}
	state, err := config.NewState()
	if err != nil {
		return err
	}
	path := c.String("config")
	if path == "" {
		path = config.ProfilesPath(state)
	}
	logger.Trace("config", "profiles: %s", path)
	c.Context = context.WithValue(c.Context, keyProfilesPath, path)

	tp, err := util.NewTracingProvider(c)
	if err != nil {
		return err
	}
	if tp == nil {
		c.Context = tracing.SetTracer(c.Context, nil)
		return nil
	}
	c.Context = context.WithValue(c.Context, keyTracerProvider, tp)
	c.Context = tracing.SetTracer(c.Context, tp.Tracer(util.Module))
	return nil
}

// after flushes traces, if tracing was enabled.
func after(c *cli.Context) error {
	tp, ok := c.Context.Value(keyTracerProvider).(*sdktrace.TracerProvider)
	if !ok {
		return nil
	}
	if err := tp.Shutdown(c.Context); err != nil {
		logging.Ctx(c.Context).Debug("trace", "tracing shutdown error: %s", err)
	}
	return nil
}

// ProfilesPath is the profiles file chosen for this run.
func ProfilesPath(ctx context.Context) string {
	path, _ := ctx.Value(keyProfilesPath).(string)
	return path
}

// LookupProfile reads the profiles file and returns the named profile.
//
// Errors:
//
//   - devicectl-error-io -- the profiles file cannot be read
//   - devicectl-error-serialization -- the profiles file is malformed
//   - devicectl-error-profile-missing -- no such profile
func LookupProfile(ctx context.Context, name string) (devcmd.Profile, error) {
	profiles, err := config.LoadProfiles(ProfilesPath(ctx))
	if err != nil {
		return devcmd.Profile{}, err
	}
	p, err := profiles.Lookup(name)
	if err != nil {
		return devcmd.Profile{}, err
	}
	return devcmd.Profile{Class: p.Class, Address: p.Address, Token: p.Token}, nil
}

// Aaaand the other modifications to `urfave/cli` that are unfortunately only possible by manipulating globals:
func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version", // And no short aliases.  "-v" is for "debug"!
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

type closedReader struct{}

// Read is a dummy method that always returns EOF.
func (c closedReader) Read(p []byte) (int, error) {
	return 0, io.EOF
}

type panicWriter struct{}

// Write is a dummy method that always panics.  You're supposed to replace panicWriter values before use.
func (p panicWriter) Write(data []byte) (int, error) {
	panic("replace the Writer and ErrWriter on the App value in packages that use it!")
}
