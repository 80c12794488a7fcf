package devcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/logging"
)

var errorStyle = color.New(color.FgRed, color.Bold)

// DeviceFailure is what Guard turns a device error into, once it has been reported.
type DeviceFailure struct {
	Err error
}

func (f *DeviceFailure) Error() string {
	return f.Err.Error()
}

func (f *DeviceFailure) Unwrap() error {
	return f.Err
}

// Guard runs fn, and reports a device error it returns: the full error chain is logged at debug level
// and a short "Error: ..." line is written to w.
// The reported error comes back as a *DeviceFailure.  Any other error is returned untouched.
func Guard(ctx context.Context, w io.Writer, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil || !devapi.IsDeviceError(err) {
		return err
	}
	var reported *DeviceFailure
	if errors.As(err, &reported) {
		return err
	}
	logging.Ctx(ctx).Debug(logTag, "device error:\n%s", describe(err))
	errorStyle.Fprintf(w, "Error: %s\n", err)
	return &DeviceFailure{Err: err}
}

// describe renders every error in the chain, with its serum code and details.
func describe(err error) string {
	var sb strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		code := serum.Code(e)
		if code == "" {
			fmt.Fprintf(&sb, "%s\n", e)
			continue
		}
		fmt.Fprintf(&sb, "%s: %s", code, serum.Message(e))
		for _, d := range serum.Details(e) {
			fmt.Fprintf(&sb, " %s=%q", d[0], d[1])
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
