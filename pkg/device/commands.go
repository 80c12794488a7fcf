package device

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/warptools/devicectl/pkg/devcmd"
)

// Handle is implemented by every type that embeds *Device.
type Handle interface {
	Base() *Device
}

// Commands are the commands every device class has.
// Classes put them first in their list, so that a class may override them.
func Commands[D Handle]() []*devcmd.Descriptor[D] {
	return []*devcmd.Descriptor[D]{
		devcmd.Describe("Info", func(ctx context.Context, dev D, _ devcmd.Args) (interface{}, error) {
			return dev.Base().Info(ctx)
		},
			devcmd.Use(devcmd.EchoResult(nil)),
			devcmd.Doc("Get model and firmware information."),
		),
		devcmd.Describe("RawCommand", func(ctx context.Context, dev D, args devcmd.Args) (interface{}, error) {
			return dev.Base().Raw(ctx, args.String("command"), args.String("params"))
		},
			devcmd.Named("raw_command"),
			devcmd.WithArgs("command"),
			devcmd.WithFlags(&cli.StringFlag{Name: "params", Usage: "parameters as a JSON list", Value: "[]"}),
			devcmd.Use(devcmd.EchoResult(devcmd.Template("Sending cmd {command} with params {params}"))),
			devcmd.Doc("Send a raw command to the device.\n\nThis is mostly useful when trying out commands that are not yet supported."),
		),
	}
}
