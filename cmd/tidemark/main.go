// Package main is the entrypoint for the command line executable.
package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/tidemark/cli/commands"
)

// main is the entrypoint function
func main() {
	err := commands.Execute()
	if commands.EC.Spinner != nil {
		commands.EC.Spinner.Stop()
	}
	if err != nil {
		commands.LogErrorTrace(commands.EC.Logger, err)
		log.Fatal(err)
	}
}
