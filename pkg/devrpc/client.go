package devrpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	ipld "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/printer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/logging"
	"github.com/warptools/devicectl/pkg/tracing"
)

const logTag = "devrpc"

// maxPacket bounds the size of one reply datagram.
const maxPacket = 64 * 1024

// Client talks to one device.  Every Call is one request datagram and one reply datagram.
type Client struct {
	address string
	token   string
	dialer  Dialer
	codec   Codec
	timeout time.Duration
}

type Option func(*Client)

// WithCodec selects the envelope encoding.  The default is CodecJSON.
func WithCodec(c Codec) Option {
	return func(cl *Client) { cl.codec = c }
}

// WithTimeout bounds each call.  Zero means only the context's deadline applies.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// Via makes the client use d rather than the dialer from the context or the network.
func Via(d Dialer) Option {
	return func(cl *Client) { cl.dialer = d }
}

// NewClient returns a client for the device at address.
// Unless an option says otherwise, it dials with the Dialer stored in ctx, or over UDP.
func NewClient(ctx context.Context, address, token string, opts ...Option) *Client {
	c := &Client{
		address: address,
		token:   token,
		codec:   CodecJSON,
	}
	if d, ok := DialerFromCtx(ctx); ok {
		c.dialer = d
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = UDPDialer(address)
	}
	return c
}

// Call invokes method on the device and returns its result.
//
// Errors:
//
//   - devicectl-error-device-connection -- the device can't be dialed, or the exchange broke off
//   - devicectl-error-device-timeout -- no reply in time
//   - devicectl-error-device-protocol -- the reply can't be decoded, or answers another request
//   - devicectl-error-device-response -- the device answered with an error
//   - devicectl-error-serialization -- the request can't be encoded
func (c *Client) Call(ctx context.Context, method string, params ...datamodel.Node) (_ datamodel.Node, err error) {
	ctx, span := tracing.Start(ctx, "rpc "+method, trace.WithAttributes(
		attribute.String(tracing.AttrKeyDevicectlRpcMethod, method),
		attribute.String(tracing.AttrKeyDevicectlRpcCodec, c.codec.Name),
		attribute.String(tracing.AttrKeyDevicectlDeviceAddress, c.address),
	))
	defer func() { tracing.EndWithStatus(span, err) }()
	log := logging.Ctx(ctx)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := uuid.New().String()
	req := Request{
		ID:     id,
		Method: method,
		Params: params,
		Auth:   Sign(c.token, id, method),
	}
	n, err := req.Node()
	if err != nil {
		return nil, devapi.ErrorSerialization("building request", err)
	}
	data, err := ipld.Encode(n, c.codec.Encode)
	if err != nil {
		return nil, devapi.ErrorSerialization("encoding request", err)
	}

	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		return nil, devapi.ErrorDeviceConnection(c.address, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	log.Debug(logTag, "%s -> %s %s", c.address, method, id)
	log.Trace(logTag, "request:\n%s", printer.Sprint(n))
	if _, err := conn.Write(data); err != nil {
		return nil, c.ioError(method, err)
	}

	buf := make([]byte, maxPacket)
	size, err := conn.Read(buf)
	if err != nil {
		return nil, c.ioError(method, err)
	}
	answer, err := ipld.Decode(buf[:size], c.codec.Decode)
	if err != nil {
		return nil, devapi.ErrorDeviceProtocol(method, fmt.Sprintf("undecodable reply: %s", err))
	}
	log.Trace(logTag, "reply:\n%s", printer.Sprint(answer))

	reply, err := ParseReply(method, answer)
	if err != nil {
		return nil, err
	}
	if reply.ID != id {
		return nil, devapi.ErrorDeviceProtocol(method, fmt.Sprintf("reply id %q does not match request id %q", reply.ID, id))
	}
	if reply.Error != nil {
		return nil, devapi.ErrorDeviceResponse(method, reply.Error.Code, reply.Error.Message)
	}
	return reply.Result, nil
}

func (c *Client) ioError(method string, err error) error {
	var ne net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return devapi.ErrorDeviceTimeout(c.address, method)
	}
	return devapi.ErrorDeviceConnection(c.address, err)
}
