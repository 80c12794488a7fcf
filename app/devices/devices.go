// Package devices puts every supported device class on the command line.
package devices

import (
	appbase "github.com/warptools/devicectl/app/base"
	"github.com/warptools/devicectl/pkg/devcmd"
	"github.com/warptools/devicectl/pkg/devices/bulb"
	"github.com/warptools/devicectl/pkg/devices/plug"
)

func init() {
	appbase.RegisterDevice(plug.Class)
	// Bulbs take several commands at once, e.g. `bulb on set_brightness 40 status`.
	appbase.RegisterDevice(bulb.Class, devcmd.Chained())
}
