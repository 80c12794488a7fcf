// Package device is the base of every device class: connection parameters, the RPC client,
// and the operations every device understands.
package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	ipld "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/codec/json"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/urfave/cli/v2"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devcmd"
	"github.com/warptools/devicectl/pkg/devrpc"
	"github.com/warptools/devicectl/pkg/logging"
)

const logTag = "device"

const DefaultTimeout = 5 * time.Second

// Names of the class parameters every device takes.
const (
	ParamTimeout = "timeout"
	ParamCodec   = "codec"
)

// Params returns the group options shared by all device classes.
func Params() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  ParamTimeout,
			Usage: "how long to wait for each reply",
			Value: DefaultTimeout,
		},
		&cli.StringFlag{
			Name:  ParamCodec,
			Usage: "wire encoding: json or dag-cbor",
			Value: devrpc.CodecJSON.Name,
		},
	}
}

type Device struct {
	Address string
	Token   string
	Debug   int

	client *devrpc.Client
}

// Base lets embedding types hand out the Device they're built on.
func (d *Device) Base() *Device {
	return d
}

// New connects a Device from validated connection parameters.
// Nothing is sent to the device until the first call.
//
// Errors:
//
//   - devicectl-error-invalid-parameter -- unknown codec
func New(ctx context.Context, conn devcmd.Conn) (*Device, error) {
	timeout := conn.Extra.Duration(ParamTimeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	codec := devrpc.CodecJSON
	if name := conn.Extra.String(ParamCodec); name != "" {
		var err error
		if codec, err = devrpc.CodecByName(name); err != nil {
			return nil, err
		}
	}
	logging.Ctx(ctx).Debug(logTag, "device at %s, timeout %s, codec %s", conn.Address, timeout, codec.Name)
	return &Device{
		Address: conn.Address,
		Token:   conn.Token,
		Debug:   conn.Debug,
		client:  devrpc.NewClient(ctx, conn.Address, conn.Token, devrpc.WithTimeout(timeout), devrpc.WithCodec(codec)),
	}, nil
}

// Send calls method on the device.
// See devrpc.Client.Call for the errors.
func (d *Device) Send(ctx context.Context, method string, params ...datamodel.Node) (datamodel.Node, error) {
	return d.client.Call(ctx, method, params...)
}

// Info is what a device reports about itself.
type Info struct {
	Model    string
	Firmware string
	Hardware string
}

func (i Info) String() string {
	return fmt.Sprintf("Model: %s\nFirmware version: %s\nHardware version: %s", i.Model, i.Firmware, i.Hardware)
}

// Info asks the device what it is.
//
// Errors:
//
//   - devicectl-error-device-protocol -- the answer lacks a field
//   - the errors of Send
func (d *Device) Info(ctx context.Context) (Info, error) {
	n, err := d.Send(ctx, "miIO.info")
	if err != nil {
		return Info{}, err
	}
	var info Info
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"model", &info.Model},
		{"fw_ver", &info.Firmware},
		{"hw_ver", &info.Hardware},
	} {
		v, err := n.LookupByString(f.key)
		if err != nil {
			return Info{}, devapi.ErrorDeviceProtocol("miIO.info", fmt.Sprintf("missing %q", f.key))
		}
		if *f.dst, err = v.AsString(); err != nil {
			return Info{}, devapi.ErrorDeviceProtocol("miIO.info", fmt.Sprintf("%q is not a string", f.key))
		}
	}
	return info, nil
}

// Raw calls any method.  params is a JSON list, or empty for none.
// The result comes back as compact JSON.
//
// Errors:
//
//   - devicectl-error-invalid-argument -- params is not a JSON list
//   - the errors of Send
func (d *Device) Raw(ctx context.Context, method string, params string) (string, error) {
	var args []datamodel.Node
	if strings.TrimSpace(params) != "" {
		n, err := ipld.Decode([]byte(params), json.Decode)
		if err != nil || n.Kind() != datamodel.Kind_List {
			return "", devapi.ErrorArgument("raw_command", fmt.Sprintf("parameters must be a JSON list, got %q", params))
		}
		it := n.ListIterator()
		for !it.Done() {
			_, v, err := it.Next()
			if err != nil {
				return "", devapi.ErrorArgument("raw_command", err.Error())
			}
			args = append(args, v)
		}
	}
	result, err := d.Send(ctx, method, args...)
	if err != nil {
		return "", err
	}
	out, err := ipld.Encode(result, dagjson.Encode)
	if err != nil {
		return "", devapi.ErrorSerialization("encoding result of "+method, err)
	}
	return string(out), nil
}

// Props reads the answer to get_prop: a list of exactly count values.
//
// Errors:
//
//   - devicectl-error-device-protocol -- not a list, or the wrong length
func Props(n datamodel.Node, count int) ([]datamodel.Node, error) {
	if n.Kind() != datamodel.Kind_List || n.Length() != int64(count) {
		return nil, devapi.ErrorDeviceProtocol("get_prop", fmt.Sprintf("expected a list of %d values", count))
	}
	props := make([]datamodel.Node, 0, count)
	it := n.ListIterator()
	for !it.Done() {
		_, v, err := it.Next()
		if err != nil {
			return nil, devapi.ErrorDeviceProtocol("get_prop", err.Error())
		}
		props = append(props, v)
	}
	return props, nil
}
