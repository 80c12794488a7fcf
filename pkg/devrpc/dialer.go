package devrpc

import (
	"context"
	"net"
	"strconv"

	"github.com/serum-errors/go-serum"

	"github.com/warptools/devicectl/devapi"
)

// DefaultPort is the UDP port devices listen on.
const DefaultPort = 54321

// Dialer determines how to contact a device
type Dialer interface {
	// Dial creates a connection to the device
	//
	// Errors:
	//
	//   - devicectl-error-connection -- dial fails
	Dial(ctx context.Context) (net.Conn, error)
}

// netDialer is a wrapper around net.Dialer to conform to the Dialer interface
type netDialer struct {
	network string
	address string
	dialer  net.Dialer
}

// UDPDialer returns a Dialer for a device at the given IP address, on DefaultPort.
func UDPDialer(address string) Dialer {
	return &netDialer{
		network: "udp",
		address: net.JoinHostPort(address, strconv.Itoa(DefaultPort)),
	}
}

// Dial uses netDialer's stored network and address to start a connection.
// See net.Dial, net.Dialer.DialContext
//
// Errors:
//
//   - devicectl-error-connection -- dial fails
func (n *netDialer) Dial(ctx context.Context) (net.Conn, error) {
	conn, err := n.dialer.DialContext(ctx, n.network, n.address)
	if err != nil {
		return nil, serum.Error(devapi.ECodeConnection, serum.WithCause(err),
			serum.WithMessageTemplate("unable to dial device at network {{network|q}} and address {{address|q}}"),
			serum.WithDetail("network", n.network),
			serum.WithDetail("address", n.address),
		)
	}
	return conn, nil
}

type ctxKey struct{}

// WithDialer returns a context that makes clients built from it use d instead of dialing the network.
func WithDialer(ctx context.Context, d Dialer) context.Context {
	return context.WithValue(ctx, ctxKey{}, d)
}

// DialerFromCtx returns the Dialer stored by WithDialer, if any.
func DialerFromCtx(ctx context.Context) (Dialer, bool) {
	d, ok := ctx.Value(ctxKey{}).(Dialer)
	return d, ok && d != nil
}
