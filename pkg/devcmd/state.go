package devcmd

// State is where a Group is in dispatching one invocation.
type State int

const (
	Uninitialized State = iota
	AwaitingSubcommand
	DeviceConstructed
	SubcommandRunning
	Done
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case AwaitingSubcommand:
		return "awaiting-subcommand"
	case DeviceConstructed:
		return "device-constructed"
	case SubcommandRunning:
		return "subcommand-running"
	case Done:
		return "done"
	default:
		return "invalid"
	}
}
