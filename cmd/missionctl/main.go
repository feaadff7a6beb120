package main

import (
	"os"

	"github.com/openclaw/missionctl/cmd/missionctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
