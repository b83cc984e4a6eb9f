// Command docfields documents the fields of registered Go types.
//
// Types are registered with docgen.Register from init functions; the
// packages declaring them are linked in with blank imports below.
package main

import (
	"fmt"
	"os"

	"github.com/gork-labs/docfields/internal/cli"

	_ "github.com/gork-labs/docfields/examples/models"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
