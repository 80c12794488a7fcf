package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/serum-errors/go-serum"

	"github.com/warptools/devicectl/devapi"
)

/*
	Environment variables and the home directory are read once, into State,
	rather than being looked up ad hoc wherever they happen to be needed.
	Commands get a copy from NewState and can modify it freely, which is
	also how tests inject their own values.
*/

type State struct {
	Env           map[string]string
	HomeDirectory string
}

var (
	globalm sync.RWMutex
	global  State
)

// ReloadGlobalState will fetch all values for internal state
// ReloadGlobalState will halt on the first error.
//
// Errors:
//
//   - devicectl-error-initialization -- loading the value failed
func ReloadGlobalState() error {
	globalm.Lock()
	defer globalm.Unlock()
	global.Env = make(map[string]string, len(envKeys))
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			global.Env[key] = v
		}
	}
	return loadUserHome()
}

// NewState will create a copy of the global state.
// The returned state can be modified without affecting anything else.
//
// Errors:
//
//   - devicectl-error-serialization -- error copying data
func NewState() (State, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 256))
	enc := json.NewEncoder(buf)
	dec := json.NewDecoder(buf)
	var result State
	globalm.RLock()
	defer globalm.RUnlock()
	if err := enc.Encode(global); err != nil {
		return State{}, serum.Error(devapi.ECodeSerialization, serum.WithCause(err))
	}
	if err := dec.Decode(&result); err != nil {
		return State{}, serum.Error(devapi.ECodeSerialization, serum.WithCause(err))
	}
	return result, nil
}

// ProfilesPath is where profiles are read from:
// $DEVICECTL_CONFIG if set, else $XDG_CONFIG_HOME/devicectl/profiles.toml,
// else ~/.config/devicectl/profiles.toml.
func ProfilesPath(state State) string {
	if path, ok := state.Env[EnvDevicectlConfig]; ok && path != "" {
		return path
	}
	base := state.Env[EnvXdgConfigHome]
	if base == "" {
		base = filepath.Join(state.HomeDirectory, ".config")
	}
	return filepath.Join(base, "devicectl", DefaultProfilesFilename)
}

// loadUserHome loads user home directory into the stored state
// NOT concurrent safe
//
// Errors:
//
//   - devicectl-error-initialization -- when the user home directory path cannot be found
func loadUserHome() error {
	dir, err := os.UserHomeDir()
	if err != nil {
		return serum.Error(devapi.ECodeInitialization,
			serum.WithMessageLiteral("unable to find user home directory"),
			serum.WithCause(err),
		)
	}
	global.HomeDirectory = dir
	return nil
}
