package devcmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/warptools/devicectl/devapi"
)

// Args are the keyword arguments of one command invocation:
// flag values keyed by the flag's primary name, and positional arguments keyed by their declared name.
type Args map[string]interface{}

// With returns a copy of a with key set to value.
func (a Args) With(key string, value interface{}) Args {
	result := make(Args, len(a)+1)
	for k, v := range a {
		result[k] = v
	}
	result[key] = value
	return result
}

// String returns the value of key formatted as a string, or "" if absent.
func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns the value of key if it is a bool, and false otherwise.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Int returns the value of key as an int.  Strings are parsed, so that positional arguments work.
//
// Errors:
//
//   - devicectl-error-invalid-argument -- the value is missing or not an integer
func (a Args) Int(key string) (int, error) {
	switch v := a[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, devapi.ErrorArgument(key, fmt.Sprintf("%q is not an integer", v))
		}
		return n, nil
	case nil:
		return 0, devapi.ErrorArgument(key, "missing value")
	default:
		return 0, devapi.ErrorArgument(key, fmt.Sprintf("%v is not an integer", v))
	}
}

// Duration returns the value of key if it is a time.Duration, and zero otherwise.
func (a Args) Duration(key string) time.Duration {
	d, _ := a[key].(time.Duration)
	return d
}
