package validate

import (
	"strconv"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/warptools/devicectl/devapi"
)

func TestAddress(t *testing.T) {
	for _, raw := range []string{
		"192.168.1.20",
		"0.0.0.0",
		"::1",
		"fe80::1ff:fe23:4567:890a",
		"2001:db8::68",
	} {
		got, err := Address(raw)
		qt.Check(t, err, qt.IsNil)
		qt.Check(t, got, qt.Equals, raw)
	}

	for _, raw := range []string{
		"not-an-ip",
		"",
		"192.168.1",
		"192.168.1.300",
		"localhost",
		"10.0.0.1:54321",
	} {
		_, err := Address(raw)
		qt.Check(t, devapi.Code(err), qt.Equals, devapi.ECodeInvalidParameter, qt.Commentf("%q", raw))
	}
}

func TestAddressMessageNamesInput(t *testing.T) {
	_, err := Address("not-an-ip")
	qt.Assert(t, err, qt.ErrorMatches, `.*"not-an-ip".*`)
}

func TestToken(t *testing.T) {
	ok := strings.Repeat("a", 32)
	got, err := Token(ok)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got, qt.Equals, ok)

	// No character-set check: anything 32 long passes.
	_, err = Token(strings.Repeat("!", 32))
	qt.Assert(t, err, qt.IsNil)

	for _, n := range []int{0, 1, 31, 33, 64} {
		_, err := Token(strings.Repeat("a", n))
		qt.Check(t, devapi.Code(err), qt.Equals, devapi.ECodeInvalidParameter)
		qt.Check(t, err, qt.ErrorMatches, `.*: `+strconv.Itoa(n))
	}
}
