// ./main.go
package main

import (
	"github.com/mvoss9000/agentlens/cmd"
)

// main is the entry point for the agentlens CLI.
func main() {
	// Execute the root command defined in the cmd package.
	cmd.Execute()
}
