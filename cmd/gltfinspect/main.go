// gltfinspect is a command line utility for inspecting, loading and converting glTF 2.0 assets.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
