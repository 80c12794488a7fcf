package devapp_test

import (
	"sort"
	"testing"

	qt "github.com/frankban/quicktest"

	devapp "github.com/warptools/devicectl/app"
	appbase "github.com/warptools/devicectl/app/base"
)

func TestCommandsWired(t *testing.T) {
	var names []string
	for _, cmd := range devapp.App.Commands {
		names = append(names, cmd.Name)
	}
	sort.Strings(names)
	qt.Assert(t, names, qt.DeepEquals, []string{"bulb", "docs", "plug", "profiles"})
	qt.Assert(t, appbase.Devices.Names(), qt.DeepEquals, []string{"bulb", "plug"})
}

func TestDeviceGroupsListCommandsSorted(t *testing.T) {
	for _, cmd := range devapp.App.Commands {
		if cmd.Name != "plug" {
			continue
		}
		var sub []string
		for _, s := range cmd.Subcommands {
			sub = append(sub, s.Name)
		}
		qt.Assert(t, sort.StringsAreSorted(sub), qt.IsTrue)
		return
	}
	t.Fatal("plug command not registered")
}
