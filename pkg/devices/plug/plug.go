// Package plug drives smart power plugs.
package plug

import (
	"context"
	"fmt"

	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/urfave/cli/v2"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devcmd"
	"github.com/warptools/devicectl/pkg/device"
)

type Plug struct {
	*device.Device
}

func New(ctx context.Context, conn devcmd.Conn) (*Plug, error) {
	d, err := device.New(ctx, conn)
	if err != nil {
		return nil, err
	}
	return &Plug{d}, nil
}

type Status struct {
	Power       bool
	LED         bool
	Temperature int64
}

func (s Status) String() string {
	return fmt.Sprintf("Power: %s\nLED: %s\nTemperature: %d", onOff(s.Power), onOff(s.LED), s.Temperature)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (p *Plug) On(ctx context.Context) error {
	_, err := p.Send(ctx, "set_power", basicnode.NewString("on"))
	return err
}

func (p *Plug) Off(ctx context.Context) error {
	_, err := p.Send(ctx, "set_power", basicnode.NewString("off"))
	return err
}

// SetLED turns the indicator light on or off.
func (p *Plug) SetLED(ctx context.Context, on bool) error {
	_, err := p.Send(ctx, "set_led", basicnode.NewString(onOff(on)))
	return err
}

// Status reads power, LED and temperature.
//
// Errors:
//
//   - devicectl-error-device-protocol -- unexpected property values
//   - the errors of device.Send
func (p *Plug) Status(ctx context.Context) (Status, error) {
	n, err := p.Send(ctx, "get_prop",
		basicnode.NewString("power"),
		basicnode.NewString("led"),
		basicnode.NewString("temperature"),
	)
	if err != nil {
		return Status{}, err
	}
	props, err := device.Props(n, 3)
	if err != nil {
		return Status{}, err
	}
	power, err1 := props[0].AsString()
	led, err2 := props[1].AsString()
	temp, err3 := props[2].AsInt()
	if err1 != nil || err2 != nil || err3 != nil {
		return Status{}, devapi.ErrorDeviceProtocol("get_prop", "unexpected property types")
	}
	return Status{Power: power == "on", LED: led == "on", Temperature: temp}, nil
}

// exactlyOneLEDFlag rejects `led` unless exactly one of --on and --off is set.
func exactlyOneLEDFlag(next devcmd.Func) devcmd.Func {
	return func(ctx context.Context, args devcmd.Args) (interface{}, error) {
		if args.Bool("on") == args.Bool("off") {
			return nil, devapi.ErrorArgument("led", `exactly one of "--on" or "--off" is required`)
		}
		return next(ctx, args)
	}
}

func ledMessage(args devcmd.Args) string {
	if args.Bool("on") {
		return "Turning on LED"
	}
	return "Turning off LED"
}

var Class = devcmd.MustRegister(devcmd.ClassSpec[*Plug]{
	Name:   "plug",
	Usage:  "control a smart plug",
	New:    New,
	Params: device.Params(),
	Commands: func() []*devcmd.Descriptor[*Plug] {
		return append(device.Commands[*Plug](),
			devcmd.Describe("On", func(ctx context.Context, p *Plug, _ devcmd.Args) (interface{}, error) {
				return nil, p.On(ctx)
			},
				devcmd.Use(devcmd.EchoStatus(devcmd.Template("Power on"), nil)),
				devcmd.Doc("Power on."),
			),
			devcmd.Describe("Off", func(ctx context.Context, p *Plug, _ devcmd.Args) (interface{}, error) {
				return nil, p.Off(ctx)
			},
				devcmd.Use(devcmd.EchoStatus(devcmd.Template("Power off"), nil)),
				devcmd.Doc("Power off."),
			),
			devcmd.Describe("Status", func(ctx context.Context, p *Plug, _ devcmd.Args) (interface{}, error) {
				return p.Status(ctx)
			},
				devcmd.Use(devcmd.EchoResult(nil)),
				devcmd.Doc("Retrieve properties."),
			),
			devcmd.Describe("SetLED", func(ctx context.Context, p *Plug, args devcmd.Args) (interface{}, error) {
				return nil, p.SetLED(ctx, args.Bool("on"))
			},
				devcmd.Named("led"),
				devcmd.WithFlags(
					&cli.BoolFlag{Name: "on", Usage: "turn the LED on"},
					&cli.BoolFlag{Name: "off", Usage: "turn the LED off"},
				),
				devcmd.Use(exactlyOneLEDFlag, devcmd.EchoStatus(devcmd.MessageFunc(ledMessage), nil)),
				devcmd.Doc("Set the LED status."),
			),
		)
	},
})
