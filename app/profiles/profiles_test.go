package profiles

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/warptools/devicectl/pkg/config"
)

func TestMaskToken(t *testing.T) {
	qt.Assert(t, maskToken("00112233445566778899aabbccddeeff"), qt.Equals, strings.Repeat("*", 28)+"eeff")
	qt.Assert(t, maskToken("abc"), qt.Equals, "***")
	qt.Assert(t, maskToken(""), qt.Equals, "")
}

func TestRenderProfiles(t *testing.T) {
	profiles := config.Profiles{Profiles: map[string]config.Profile{
		"lamp10": {Class: "bulb", Address: "10.0.0.10", Token: "ffeeddccbbaa99887766554433221100"},
		"lamp2":  {Class: "bulb", Address: "10.0.0.2", Token: "ffeeddccbbaa99887766554433221100"},
		"fridge": {Class: "plug", Address: "fe80::1", Token: "00112233445566778899aabbccddeeff"},
	}}

	out := renderProfiles(profiles, false)
	qt.Assert(t, out, qt.Contains, "fe80::1")
	qt.Assert(t, out, qt.Not(qt.Contains), "00112233445566778899aabbccddeeff")
	qt.Assert(t, out, qt.Contains, "****eeff")

	// natural order: fridge, lamp2, lamp10
	fridge := strings.Index(out, "fridge")
	lamp2 := strings.Index(out, "lamp2")
	lamp10 := strings.Index(out, "lamp10")
	qt.Assert(t, fridge < lamp2, qt.IsTrue)
	qt.Assert(t, lamp2 < lamp10, qt.IsTrue)

	out = renderProfiles(profiles, true)
	qt.Assert(t, out, qt.Contains, "00112233445566778899aabbccddeeff")
}
