package version

import "fmt"

// Build and Commit are injected via -ldflags. Build defaults to "dev".
var (
	Build  = "dev"
	Commit = ""
)

// String formats the build identifier for logs and the version command.
func String() string {
	if Commit == "" {
		return Build
	}
	return fmt.Sprintf("%s (%s)", Build, Commit)
}
