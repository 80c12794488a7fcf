// Package validate holds the checks applied to device group connection options
// before any device handle is constructed.
package validate

import (
	"fmt"
	"net/netip"

	"github.com/warptools/devicectl/devapi"
)

// TokenLength is the exact number of characters an authentication token must have.
const TokenLength = 32

// Address returns raw unchanged if it is an IPv4 or IPv6 literal.
//
// Errors:
//
//   - devicectl-error-invalid-parameter -- raw is not an IP literal
func Address(raw string) (string, error) {
	if _, err := netip.ParseAddr(raw); err != nil {
		return "", devapi.ErrorInvalidParameter("address", fmt.Sprintf("invalid IP: %q", raw))
	}
	return raw, nil
}

// Token returns raw unchanged if it is exactly TokenLength characters long.
// The characters themselves are not checked.
//
// Errors:
//
//   - devicectl-error-invalid-parameter -- raw has the wrong length
func Token(raw string) (string, error) {
	if n := len(raw); n != TokenLength {
		return "", devapi.ErrorInvalidParameter("token", fmt.Sprintf("token length != %d chars: %d", TokenLength, n))
	}
	return raw, nil
}
