package devcmd

import (
	"context"
)

// Func is a device command with the device handle already bound.
type Func func(ctx context.Context, args Args) (interface{}, error)

// Middleware wraps a Func with extra behavior.
type Middleware func(Func) Func

// Chain returns f wrapped by the given middleware.
// Middleware is executed in order. E.G. `middlewares[0](middlewares[1](f))`
func Chain(f Func, middlewares ...Middleware) Func {
	if len(middlewares) < 1 {
		return f
	}
	wrapped := f
	// loop in reverse to preserve middleware order
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}
