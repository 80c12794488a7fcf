package nettest

import (
	"context"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/serum-errors/go-serum"

	"github.com/warptools/devicectl/devapi"
)

const DefaultTimeout = 5 * time.Second

// PipeListener is an in-memory net.Listener whose Dial method hands out net.Pipe connections.
// It satisfies devrpc.Dialer, so a fake device can be served without sockets.
type PipeListener struct {
	connections chan net.Conn
	ctx         context.Context
	done        chan struct{}
	closed      atomic.Bool
	dials       atomic.Int64
	Timeout     time.Duration // Sets default deadline for new connections.
}

// Errors: none
func (p *PipeListener) Close() error {
	// closing channel will unblock accept
	if p.closed.CompareAndSwap(false, true) {
		close(p.done)
	}
	return nil
}

// Errors:
//
//   - devicectl-error-connection --
func (p *PipeListener) Accept() (net.Conn, error) {
	select {
	case <-p.done:
		return nil, serum.Error(devapi.ECodeConnection, serum.WithCause(io.EOF))
	case <-p.ctx.Done():
		return nil, serum.Error(devapi.ECodeConnection, serum.WithCause(p.ctx.Err()))
	case conn := <-p.connections:
		return conn, nil
	}
}

func (p *PipeListener) Addr() net.Addr { return pipeAddr{} }

// Dials counts the calls to Dial so far.
func (p *PipeListener) Dials() int {
	return int(p.dials.Load())
}

// Errors:
//
//   - devicectl-error-connection --
func (p *PipeListener) Dial(ctx context.Context) (net.Conn, error) {
	p.dials.Add(1)
	serverConn, clientConn := net.Pipe()
	deadline := time.Now().Add(p.Timeout)
	clientConn.SetDeadline(deadline) // will cause tests to fail if they block
	select {
	case <-ctx.Done():
		return nil, serum.Error(devapi.ECodeConnection, serum.WithCause(ctx.Err()))
	case <-p.done:
		return nil, serum.Error(devapi.ECodeConnection, serum.WithMessageLiteral("listener closed"))
	case p.connections <- serverConn:
		return clientConn, nil
	case <-time.After(p.Timeout):
		return nil, serum.Error(devapi.ECodeConnection, serum.WithMessageLiteral("dial timeout"))
	}
}

func NewPipeListener(ctx context.Context) *PipeListener {
	return &PipeListener{
		ctx:         ctx,
		connections: make(chan net.Conn),
		done:        make(chan struct{}),
		Timeout:     DefaultTimeout,
	}
}

type pipeAddr struct{}

func (pipeAddr) Network() string { return "pipe" }
func (pipeAddr) String() string  { return "pipe" }
