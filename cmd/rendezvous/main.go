// The entrypoint for the rendezvous CLI.
package main

import (
	"log"

	"rendezvous/cmd/rendezvous/commands"
)

// Initialises and executes the command hierarchy.
func main() {
	if err := commands.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
