// Package version holds the build version, set with:
//
//	go build -ldflags "-X github.com/ramonehamilton/bridge-scorer/internal/version.Version=v1.2.3"
package version

// Service is the name reported by the API and the CLI.
const Service = "bridge-scorer"

// Version defaults to "dev".
var Version = "dev"

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}
