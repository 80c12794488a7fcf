package device_test

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devcmd"
	"github.com/warptools/devicectl/pkg/device"
	"github.com/warptools/devicectl/pkg/devrpc"
	"github.com/warptools/devicectl/pkg/devrpc/devrpctest"
)

const token = "00112233445566778899aabbccddeeff"

func conn(extra devcmd.Args) devcmd.Conn {
	return devcmd.Conn{Address: "10.0.0.7", Token: token, Debug: 1, Extra: extra}
}

func info(params []datamodel.Node) (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Any, 3, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "model", qp.String("fake.plug.v1"))
		qp.MapEntry(ma, "fw_ver", qp.String("1.2.3"))
		qp.MapEntry(ma, "hw_ver", qp.String("esp32"))
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	d, err := device.New(ctx, conn(nil))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, d.Address, qt.Equals, "10.0.0.7")
	qt.Assert(t, d.Token, qt.Equals, token)
	qt.Assert(t, d.Debug, qt.Equals, 1)
	qt.Assert(t, d.Base(), qt.Equals, d)

	_, err = device.New(ctx, conn(devcmd.Args{device.ParamCodec: "xml"}))
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeInvalidParameter)
}

func TestInfo(t *testing.T) {
	for _, codec := range []devrpc.Codec{devrpc.CodecJSON, devrpc.CodecDagCBOR} {
		srv := devrpctest.Start(t, token)
		srv.Handle("miIO.info", info)
		srv.Codec = codec
		ctx := srv.Context(context.Background())
		d, err := device.New(ctx, conn(devcmd.Args{device.ParamTimeout: time.Second, device.ParamCodec: codec.Name}))
		qt.Assert(t, err, qt.IsNil)

		got, err := d.Info(ctx)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, got, qt.Equals, device.Info{Model: "fake.plug.v1", Firmware: "1.2.3", Hardware: "esp32"})
		qt.Assert(t, got.String(), qt.Equals, "Model: fake.plug.v1\nFirmware version: 1.2.3\nHardware version: esp32")
	}
}

func TestInfoMalformed(t *testing.T) {
	srv := devrpctest.Start(t, token)
	srv.Handle("miIO.info", func(params []datamodel.Node) (datamodel.Node, error) {
		return basicnode.NewString("what"), nil
	})
	ctx := srv.Context(context.Background())
	d, err := device.New(ctx, conn(nil))
	qt.Assert(t, err, qt.IsNil)
	_, err = d.Info(ctx)
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceProtocol)
}

func TestRaw(t *testing.T) {
	srv := devrpctest.Start(t, token)
	srv.Handle("echo", func(params []datamodel.Node) (datamodel.Node, error) {
		return qp.BuildList(basicnode.Prototype.Any, int64(len(params)), func(la datamodel.ListAssembler) {
			for _, p := range params {
				qp.ListEntry(la, qp.Node(p))
			}
		})
	})
	ctx := srv.Context(context.Background())
	d, err := device.New(ctx, conn(nil))
	qt.Assert(t, err, qt.IsNil)

	out, err := d.Raw(ctx, "echo", `["power", 1]`)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out, qt.Equals, `["power",1]`)

	out, err = d.Raw(ctx, "echo", "")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out, qt.Equals, `[]`)

	_, err = d.Raw(ctx, "echo", `{"a": 1}`)
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeArgument)
	qt.Assert(t, srv.Methods(), qt.DeepEquals, []string{"echo", "echo"})
}

func TestProps(t *testing.T) {
	n, err := qp.BuildList(basicnode.Prototype.Any, 2, func(la datamodel.ListAssembler) {
		qp.ListEntry(la, qp.String("on"))
		qp.ListEntry(la, qp.Int(40))
	})
	qt.Assert(t, err, qt.IsNil)

	props, err := device.Props(n, 2)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, props, qt.HasLen, 2)

	_, err = device.Props(n, 3)
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceProtocol)
	_, err = device.Props(basicnode.NewString("on"), 1)
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceProtocol)
}
