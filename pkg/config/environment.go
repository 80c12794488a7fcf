package config

const (
	// EnvDevicectlConfig overrides the path of the profiles file.
	EnvDevicectlConfig = "DEVICECTL_CONFIG"
	// EnvDevicectlAddress supplies the device address when --address is not given.
	EnvDevicectlAddress = "DEVICECTL_ADDRESS"
	// EnvDevicectlToken supplies the device token when --token is not given.
	EnvDevicectlToken = "DEVICECTL_TOKEN"
	// EnvXdgConfigHome is honored when locating the default profiles file.
	EnvXdgConfigHome = "XDG_CONFIG_HOME"
)

// NOTE: keep this up to date or the config loader won't load them
var envKeys = []string{
	EnvDevicectlConfig,
	EnvDevicectlAddress,
	EnvDevicectlToken,
	EnvXdgConfigHome,
}
