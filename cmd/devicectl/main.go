package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	devapp "github.com/warptools/devicectl/app"
	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devcmd"
	"github.com/warptools/devicectl/pkg/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// Warning!  Impure function!  Cannot safely be used in parallel!
// It rewires the streams of the one global App.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := logging.NewLogger(stdout, stderr, logging.LevelNone)
	ctx = logger.WithContext(ctx)

	app := devapp.App
	app.Reader = stdin
	app.Writer = stdout
	app.ErrWriter = stderr

	err := devcmd.Guard(ctx, stdout, func(ctx context.Context) error {
		return app.RunContext(ctx, args)
	})
	return exitCode(err)
}

// exitCode maps the outcome of a run onto the process exit status:
// bad options and arguments are usage errors, everything else is a failure.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var failure *devcmd.DeviceFailure
	if errors.As(err, &failure) {
		return exitFailure
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	switch devapi.Code(err) {
	case devapi.ECodeInvalidParameter, devapi.ECodeArgument:
		return exitUsage
	}
	return exitFailure
}
