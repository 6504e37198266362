// Command journeyctl walks one visitor through the automation journey from
// the terminal, keeping their progress in a local SQLite file.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
