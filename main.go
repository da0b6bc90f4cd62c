// The main package for the steamgram executable.
package main

import (
	"github.com/steamgram/steamgram/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
