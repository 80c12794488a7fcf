package devapp

import (
	appbase "github.com/warptools/devicectl/app/base"
	_ "github.com/warptools/devicectl/app/devices"
	_ "github.com/warptools/devicectl/app/docs"
	_ "github.com/warptools/devicectl/app/profiles"
)

var App = appbase.App
