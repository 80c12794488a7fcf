package devdocs_test

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/warpfork/go-testmark"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/devcmd"
	"github.com/warptools/devicectl/pkg/devdocs"
	"github.com/warptools/devicectl/pkg/devices/bulb"
	"github.com/warptools/devicectl/pkg/devices/plug"
)

const fixture = "testdata/reference.md"

func registry(t *testing.T) *devcmd.Registry {
	reg := devcmd.NewRegistry()
	qt.Assert(t, reg.Add(plug.Class), qt.IsNil)
	qt.Assert(t, reg.Add(bulb.Class), qt.IsNil)
	return reg
}

func TestMarkdownFixtures(t *testing.T) {
	doc, err := testmark.ReadFile(fixture)
	if err != nil {
		t.Fatalf("fixture parse failed: %s", err)
	}
	qt.Assert(t, doc.DataHunks, qt.HasLen, 3)
	reg := registry(t)

	patches := testmark.PatchAccumulator{}
	for _, hunk := range doc.DataHunks {
		hunk := hunk
		t.Run(hunk.Name, func(t *testing.T) {
			var classes []string
			if hunk.Name != "all" {
				classes = []string{hunk.Name}
			}
			var buf bytes.Buffer
			qt.Assert(t, devdocs.Markdown(&buf, reg, classes...), qt.IsNil)
			if *testmark.Regen {
				patches.AppendPatchIfBodyDiffers(hunk.Hunk, buf.Bytes())
				return
			}
			qt.Assert(t, buf.String(), qt.Equals, string(hunk.Body))
		})
	}
	if *testmark.Regen {
		qt.Assert(t, patches.WriteFileWithPatches(doc, fixture), qt.IsNil)
	}
}

func TestMarkdownUnknownClass(t *testing.T) {
	var buf bytes.Buffer
	err := devdocs.Markdown(&buf, registry(t), "toaster")
	qt.Assert(t, devapi.Code(err), qt.Equals, devapi.ECodeArgument)
	qt.Assert(t, err, qt.ErrorMatches, `.*no device class named "toaster" \(known: bulb, plug\).*`)
	qt.Assert(t, buf.Len(), qt.Equals, 0)
}

func TestMarkdownSingleClassHasNoIndex(t *testing.T) {
	reg := devcmd.NewRegistry()
	qt.Assert(t, reg.Add(plug.Class), qt.IsNil)
	var buf bytes.Buffer
	qt.Assert(t, devdocs.Markdown(&buf, reg), qt.IsNil)
	qt.Assert(t, buf.String(), qt.Not(qt.Contains), "| Class |")
	qt.Assert(t, buf.String(), qt.Contains, "# plug\n")
}
