// Command fmsynth plays a four-operator FM voice on the default audio
// output and takes note commands from stdin, HTTP and WebSocket clients.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fmsynth:", err)
		os.Exit(1)
	}
}
