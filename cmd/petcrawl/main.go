// Petcrawl collects adoptable-animal records from a shelter site and
// stores them as schema-complete rows in SQLite.
package main

import (
	"os"

	"github.com/hclam/petcrawl/internal/cmd"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, BuildTime)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
