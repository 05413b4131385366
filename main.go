// The main package for the earthsurvivors executable.
package main

import (
	"github.com/earthsurvivors/earthsurvivors/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
