package score

import "fmt"

// Method selects how a session is scored.
type Method int

const (
	// MethodPercentage scores boards by matchpoints and reports percentages.
	MethodPercentage Method = iota
	// MethodButler scores boards in IMPs against a datum and reports IMPs per board.
	MethodButler
)

// String returns the configuration name of the method.
func (m Method) String() string {
	switch m {
	case MethodPercentage:
		return "percentage"
	case MethodButler:
		return "butler"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod parses a configuration name.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "percentage", "":
		return MethodPercentage, nil
	case "butler":
		return MethodButler, nil
	default:
		return 0, fmt.Errorf("unknown scoring method %q", s)
	}
}
