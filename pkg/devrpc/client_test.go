package devrpc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devrpc"
	"github.com/warptools/devicectl/pkg/devrpc/devrpctest"
)

const (
	address = "192.168.1.40"
	token   = "00112233445566778899aabbccddeeff"
)

func infoHandler(params []datamodel.Node) (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Any, 2, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "model", qp.String("fake.plug.v1"))
		qp.MapEntry(ma, "params", qp.Int(int64(len(params))))
	})
}

func lookupString(t *testing.T, n datamodel.Node, key string) string {
	v, err := n.LookupByString(key)
	qt.Assert(t, err, qt.IsNil)
	s, err := v.AsString()
	qt.Assert(t, err, qt.IsNil)
	return s
}

func TestCall(t *testing.T) {
	for _, codec := range []devrpc.Codec{devrpc.CodecJSON, devrpc.CodecDagCBOR} {
		t.Run(codec.Name, func(t *testing.T) {
			srv := devrpctest.Start(t, token)
			srv.Codec = codec
			srv.Handle("miIO.info", infoHandler)

			client := devrpc.NewClient(context.Background(), address, token, devrpc.Via(srv.Dialer()), devrpc.WithCodec(codec))
			result, err := client.Call(context.Background(), "miIO.info", basicnode.NewString("a"), basicnode.NewInt(2))
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, lookupString(t, result, "model"), qt.Equals, "fake.plug.v1")
			count, err := result.LookupByString("params")
			qt.Assert(t, err, qt.IsNil)
			n, err := count.AsInt()
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, n, qt.Equals, int64(2))

			calls := srv.Calls()
			qt.Assert(t, calls, qt.HasLen, 1)
			qt.Assert(t, calls[0].Method, qt.Equals, "miIO.info")
			qt.Assert(t, calls[0].Verify(token), qt.IsTrue)
			qt.Assert(t, calls[0].Auth, qt.HasLen, 64)
		})
	}
}

func TestCallDialerFromContext(t *testing.T) {
	srv := devrpctest.Start(t, token)
	srv.Handle("get_prop", func(params []datamodel.Node) (datamodel.Node, error) {
		return basicnode.NewString("on"), nil
	})
	ctx := srv.Context(context.Background())
	result, err := devrpc.NewClient(ctx, address, token).Call(ctx, "get_prop")
	qt.Assert(t, err, qt.IsNil)
	s, err := result.AsString()
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, s, qt.Equals, "on")
	qt.Assert(t, srv.Dials(), qt.Equals, 1)
}

func TestCallErrors(t *testing.T) {
	srv := devrpctest.Start(t, token)
	srv.Handle("set_power", func(params []datamodel.Node) (datamodel.Node, error) {
		return nil, &devrpctest.Fault{Code: -5001, Message: "invalid arg"}
	})
	srv.Handle("get_prop", func(params []datamodel.Node) (datamodel.Node, error) {
		return nil, errors.New("flash worn out")
	})
	srv.Handle("slow", func(params []datamodel.Node) (datamodel.Node, error) {
		return nil, devrpctest.ErrNoReply
	})
	ctx := srv.Context(context.Background())
	client := devrpc.NewClient(ctx, address, token, devrpc.WithTimeout(50*time.Millisecond))

	_, err := client.Call(ctx, "set_power", basicnode.NewString("on"))
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceResponse)
	qt.Assert(t, serum.Details(err), qt.DeepEquals, [][2]string{{"method", "set_power"}, {"code", "-5001"}, {"message", "invalid arg"}})

	_, err = client.Call(ctx, "get_prop")
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceResponse)
	qt.Assert(t, err.Error(), qt.Contains, "flash worn out")

	_, err = client.Call(ctx, "no_such_method")
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceResponse)

	_, err = client.Call(ctx, "slow")
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceTimeout)
	qt.Assert(t, devapi.IsDeviceError(err), qt.IsTrue)
}

func TestCallWrongToken(t *testing.T) {
	srv := devrpctest.Start(t, token)
	srv.Handle("miIO.info", infoHandler)
	ctx := srv.Context(context.Background())
	_, err := devrpc.NewClient(ctx, address, "ffffffffffffffffffffffffffffffff").Call(ctx, "miIO.info")
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceResponse)
	qt.Assert(t, err.Error(), qt.Contains, "unauthorized")
}

func TestCallMismatchedReply(t *testing.T) {
	srv := devrpctest.Start(t, token)
	srv.Handle("miIO.info", infoHandler)
	srv.Tamper = func(r *devrpc.Reply) { r.ID = "someone-else" }
	ctx := srv.Context(context.Background())
	_, err := devrpc.NewClient(ctx, address, token).Call(ctx, "miIO.info")
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceProtocol)
	qt.Assert(t, err.Error(), qt.Contains, "does not match")
}

func TestCodecByName(t *testing.T) {
	c, err := devrpc.CodecByName("dag-cbor")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, c.Name, qt.Equals, devrpc.CodecDagCBOR.Name)

	_, err = devrpc.CodecByName("xml")
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeInvalidParameter)
}

func TestSign(t *testing.T) {
	a := devrpc.Sign(token, "id-1", "get_prop")
	qt.Assert(t, a, qt.Equals, devrpc.Sign(token, "id-1", "get_prop"))
	qt.Assert(t, a, qt.Not(qt.Equals), devrpc.Sign(token, "id-2", "get_prop"))
	qt.Assert(t, devrpc.Request{ID: "id-1", Method: "get_prop", Auth: a}.Verify(token), qt.IsTrue)
	qt.Assert(t, devrpc.Request{ID: "id-1", Method: "set_power", Auth: a}.Verify(token), qt.IsFalse)
}

func TestParseReply(t *testing.T) {
	_, err := devrpc.ParseReply("m", basicnode.NewString("nope"))
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceProtocol)

	n, err := qp.BuildMap(basicnode.Prototype.Any, 1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "id", qp.String("x"))
	})
	qt.Assert(t, err, qt.IsNil)
	_, err = devrpc.ParseReply("m", n)
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeDeviceProtocol)

	n, err = devrpc.Reply{ID: "x"}.Node()
	qt.Assert(t, err, qt.IsNil)
	r, err := devrpc.ParseReply("m", n)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, r.Result.IsNull(), qt.IsTrue)
}
