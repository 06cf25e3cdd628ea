// Command kdtree builds a k-d tree over a CSV matrix and answers
// nearest-neighbour queries against it.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
