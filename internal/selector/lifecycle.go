package selector

import "fmt"

// Lifecycle is the build mode selected by the lifecycle signal.
type Lifecycle int

const (
	Dev Lifecycle = iota
	Build
	Stats
)

// ParseLifecycle maps a lifecycle event name to a Lifecycle. Names other than
// "build" and "stats" select Dev.
func ParseLifecycle(signal string) Lifecycle {
	switch signal {
	case "build":
		return Build
	case "stats":
		return Stats
	default:
		return Dev
	}
}

func (l Lifecycle) String() string {
	switch l {
	case Dev:
		return "dev"
	case Build:
		return "build"
	case Stats:
		return "stats"
	default:
		return fmt.Sprintf("lifecycle(%d)", int(l))
	}
}

// Production reports whether the lifecycle writes optimized, hashed output.
func (l Lifecycle) Production() bool {
	return l == Build || l == Stats
}
