// Command glenside-repl starts glenside's interactive read-eval-print
// loop over a single long-lived e-graph.
package main

import (
	"os"

	"glenside/repl"
)

func main() {
	repl.Start(os.Stdin, os.Stdout)
}
