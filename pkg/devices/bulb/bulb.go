// Package bulb drives dimmable smart bulbs.
package bulb

import (
	"context"
	"fmt"

	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devcmd"
	"github.com/warptools/devicectl/pkg/device"
)

type Bulb struct {
	*device.Device
}

func New(ctx context.Context, conn devcmd.Conn) (*Bulb, error) {
	d, err := device.New(ctx, conn)
	if err != nil {
		return nil, err
	}
	return &Bulb{d}, nil
}

type Status struct {
	Power      bool
	Brightness int64
	Name       string
}

func (s Status) String() string {
	power := "off"
	if s.Power {
		power = "on"
	}
	return fmt.Sprintf("Power: %s\nBrightness: %d\nName: %s", power, s.Brightness, s.Name)
}

func (b *Bulb) On(ctx context.Context) error {
	_, err := b.Send(ctx, "set_power", basicnode.NewString("on"))
	return err
}

func (b *Bulb) Off(ctx context.Context) error {
	_, err := b.Send(ctx, "set_power", basicnode.NewString("off"))
	return err
}

// SetBrightness sets the brightness in percent.
//
// Errors:
//
//   - devicectl-error-invalid-argument -- level outside 1..100
//   - the errors of device.Send
func (b *Bulb) SetBrightness(ctx context.Context, level int) error {
	if level < 1 || level > 100 {
		return devapi.ErrorArgument("set_brightness", fmt.Sprintf("brightness must be between 1 and 100, got %d", level))
	}
	_, err := b.Send(ctx, "set_bright", basicnode.NewInt(int64(level)))
	return err
}

func (b *Bulb) SetName(ctx context.Context, name string) error {
	_, err := b.Send(ctx, "set_name", basicnode.NewString(name))
	return err
}

func (b *Bulb) Status(ctx context.Context) (Status, error) {
	n, err := b.Send(ctx, "get_prop",
		basicnode.NewString("power"),
		basicnode.NewString("bright"),
		basicnode.NewString("name"),
	)
	if err != nil {
		return Status{}, err
	}
	props, err := device.Props(n, 3)
	if err != nil {
		return Status{}, err
	}
	power, err1 := props[0].AsString()
	bright, err2 := props[1].AsInt()
	name, err3 := props[2].AsString()
	if err1 != nil || err2 != nil || err3 != nil {
		return Status{}, devapi.ErrorDeviceProtocol("get_prop", "unexpected property types")
	}
	return Status{Power: power == "on", Brightness: bright, Name: name}, nil
}

var Class = devcmd.MustRegister(devcmd.ClassSpec[*Bulb]{
	Name:   "bulb",
	Usage:  "control a dimmable bulb",
	New:    New,
	Params: device.Params(),
	Commands: func() []*devcmd.Descriptor[*Bulb] {
		return append(device.Commands[*Bulb](),
			devcmd.Describe("On", func(ctx context.Context, b *Bulb, _ devcmd.Args) (interface{}, error) {
				return nil, b.On(ctx)
			},
				devcmd.Use(devcmd.EchoStatus(devcmd.Template("Powering on"), nil)),
				devcmd.Doc("Power on."),
			),
			devcmd.Describe("Off", func(ctx context.Context, b *Bulb, _ devcmd.Args) (interface{}, error) {
				return nil, b.Off(ctx)
			},
				devcmd.Use(devcmd.EchoStatus(devcmd.Template("Powering off"), nil)),
				devcmd.Doc("Power off."),
			),
			devcmd.Describe("Status", func(ctx context.Context, b *Bulb, _ devcmd.Args) (interface{}, error) {
				return b.Status(ctx)
			},
				devcmd.Use(devcmd.EchoResult(nil)),
				devcmd.Doc("Retrieve properties."),
			),
			devcmd.Describe("SetBrightness", func(ctx context.Context, b *Bulb, args devcmd.Args) (interface{}, error) {
				level, err := args.Int("level")
				if err != nil {
					return nil, err
				}
				return nil, b.SetBrightness(ctx, level)
			},
				devcmd.Named("set_brightness"),
				devcmd.WithArgs("level"),
				devcmd.Use(devcmd.EchoStatus(devcmd.Template("Setting brightness to {level}"), nil)),
				devcmd.Doc("Set brightness, in percent."),
			),
			devcmd.Describe("SetName", func(ctx context.Context, b *Bulb, args devcmd.Args) (interface{}, error) {
				return nil, b.SetName(ctx, args.String("name"))
			},
				devcmd.Named("set_name"),
				devcmd.WithArgs("name"),
				devcmd.Use(devcmd.EchoStatus(devcmd.Template("Setting name to {name}"), nil)),
				devcmd.Doc("Set the name shown in the app."),
			),
		)
	},
})
