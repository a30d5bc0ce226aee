// Command schedviz animates and compares CPU scheduling timelines.
package main

import (
	"os"

	"github.com/Dicklesworthstone/schedviz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
