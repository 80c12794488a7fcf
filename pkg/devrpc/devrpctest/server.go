// Package devrpctest serves fake devices in memory, for tests.
package devrpctest

import (
	"context"
	"errors"
	"sync"
	"testing"

	ipld "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/datamodel"

	"github.com/warptools/devicectl/pkg/devrpc"
	"github.com/warptools/devicectl/pkg/testutil/nettest"
)

// Error codes a Server answers with when the request itself is at fault.
const (
	CodeUnauthorized   = -2
	CodeMethodNotFound = -32601
	CodeHandlerFailed  = -1
)

// HandlerFunc answers one method.
// Returning a *Fault makes the server answer with that error; any other error becomes CodeHandlerFailed.
type HandlerFunc func(params []datamodel.Node) (datamodel.Node, error)

// Fault is an error reply.
type Fault struct {
	Code    int64
	Message string
}

func (f *Fault) Error() string { return f.Message }

// ErrNoReply makes the server swallow the request, so the client times out.
var ErrNoReply = errors.New("no reply")

// Server is a fake device.  Use Start to make one.
type Server struct {
	Token string
	Codec devrpc.Codec
	// Tamper, if set, may modify every reply before it is sent.
	Tamper func(*devrpc.Reply)

	listener *nettest.PipeListener
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []devrpc.Request
}

// Start serves a fake device with the given token until the test ends.
func Start(t testing.TB, token string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		Token:    token,
		Codec:    devrpc.CodecJSON,
		listener: nettest.NewPipeListener(ctx),
		handlers: map[string]HandlerFunc{},
	}
	t.Cleanup(func() {
		cancel()
		s.listener.Close()
	})
	go s.serve()
	return s
}

// Handle sets the handler for method.
func (s *Server) Handle(method string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Dialer connects clients to this server.
func (s *Server) Dialer() devrpc.Dialer {
	return s.listener
}

// Context returns ctx with this server as the dialer for every client.
func (s *Server) Context(ctx context.Context) context.Context {
	return devrpc.WithDialer(ctx, s.listener)
}

// Dials counts the connections clients opened so far.
func (s *Server) Dials() int {
	return s.listener.Dials()
}

// Calls returns the requests received so far.
func (s *Server) Calls() []devrpc.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]devrpc.Request(nil), s.calls...)
}

// Methods returns the method names received so far.
func (s *Server) Methods() []string {
	var methods []string
	for _, r := range s.Calls() {
		methods = append(methods, r.Method)
	}
	return methods
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go func() {
			defer conn.Close()
			buf := make([]byte, 64*1024)
			for {
				n, err := conn.Read(buf)
				if err != nil {
					return
				}
				reply, ok := s.answer(buf[:n])
				if !ok {
					continue
				}
				if _, err := conn.Write(reply); err != nil {
					return
				}
			}
		}()
	}
}

// answer handles one request.  Requests that can't be parsed are dropped, like a device would.
func (s *Server) answer(data []byte) ([]byte, bool) {
	n, err := ipld.Decode(data, s.Codec.Decode)
	if err != nil {
		return nil, false
	}
	req, err := devrpc.ParseRequest(n)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	s.calls = append(s.calls, req)
	h := s.handlers[req.Method]
	s.mu.Unlock()

	reply := devrpc.Reply{ID: req.ID}
	switch {
	case !req.Verify(s.Token):
		reply.Error = &devrpc.RemoteError{Code: CodeUnauthorized, Message: "unauthorized"}
	case h == nil:
		reply.Error = &devrpc.RemoteError{Code: CodeMethodNotFound, Message: "method not found"}
	default:
		result, err := h(req.Params)
		var fault *Fault
		switch {
		case errors.Is(err, ErrNoReply):
			return nil, false
		case errors.As(err, &fault):
			reply.Error = &devrpc.RemoteError{Code: fault.Code, Message: fault.Message}
		case err != nil:
			reply.Error = &devrpc.RemoteError{Code: CodeHandlerFailed, Message: err.Error()}
		default:
			reply.Result = result
		}
	}
	if s.Tamper != nil {
		s.Tamper(&reply)
	}
	rn, err := reply.Node()
	if err != nil {
		return nil, false
	}
	out, err := ipld.Encode(rn, s.Codec.Encode)
	if err != nil {
		return nil, false
	}
	return out, true
}
