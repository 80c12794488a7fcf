package devcmd

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/warptools/devicectl/devapi"
)

// Entry is the type-erased view of a registered Class, as kept by a Registry.
type Entry interface {
	Name() string
	Usage() string
	Names() []string
	Shadowed() []string
	Reference() []CommandInfo
	ParamInfo() []FlagInfo
	Command(opts ...GroupOption) *cli.Command
}

var _ Entry = (*Class[struct{}])(nil)

// Registry is a set of device classes, keyed by class name.
type Registry struct {
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// Add registers a class.
//
// Errors:
//
//   - devicectl-error-configuration -- a class with that name is already registered
func (r *Registry) Add(e Entry) error {
	if _, exists := r.entries[e.Name()]; exists {
		return devapi.ErrorConfiguration(fmt.Sprintf("device class %q registered twice", e.Name()))
	}
	r.entries[e.Name()] = e
	return nil
}

func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the class names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns the classes sorted by name.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.entries))
	for _, name := range r.Names() {
		entries = append(entries, r.entries[name])
	}
	return entries
}
