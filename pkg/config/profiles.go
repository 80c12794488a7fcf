package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/warptools/devicectl/devapi"
)

// DefaultProfilesFilename is the name of the profiles file inside the config directory.
const DefaultProfilesFilename = "profiles.toml"

// Profile is a saved set of connection parameters for one device.
//
//	[profile.kitchen]
//	class = "plug"
//	address = "192.168.1.40"
//	token = "..."
type Profile struct {
	Class   string `toml:"class"`
	Address string `toml:"address"`
	Token   string `toml:"token"`
}

// Profiles is the parsed content of a profiles file.
type Profiles struct {
	Path     string             `toml:"-"`
	Profiles map[string]Profile `toml:"profile"`
}

// LoadProfiles reads the profiles file at path.
// A missing file is not an error: it yields an empty set.
//
// Errors:
//
//   - devicectl-error-io -- the file exists but cannot be read
//   - devicectl-error-serialization -- the file is not valid TOML, or has unknown keys
func LoadProfiles(path string) (Profiles, error) {
	result := Profiles{Path: path, Profiles: map[string]Profile{}}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return result, devapi.ErrorIo("cannot open profiles file", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		return Profiles{Path: path}, devapi.ErrorSerialization("cannot parse profiles file "+path, err)
	}
	if result.Profiles == nil {
		result.Profiles = map[string]Profile{}
	}
	return result, nil
}

// Lookup returns the named profile.
//
// Errors:
//
//   - devicectl-error-profile-missing -- no such profile
func (p Profiles) Lookup(name string) (Profile, error) {
	prof, ok := p.Profiles[name]
	if !ok {
		return Profile{}, devapi.ErrorProfileMissing(name, p.Path)
	}
	return prof, nil
}

// Names lists the profile names in no particular order.
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p.Profiles))
	for name := range p.Profiles {
		names = append(names, name)
	}
	return names
}
