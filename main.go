// The main package for the propscrape executable.
package main

import (
	"github.com/atlast-data/propscrape/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
