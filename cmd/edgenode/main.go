// Command edgenode is an example driver for the edge-client library: it
// loads a node configuration file, brings a Node online against its
// configured broker(s), attaches a small set of demonstration metrics, and
// runs until interrupted. It exists to exercise the library end-to-end, not
// as a production Sparkplug agent.
package main

import (
	"os"

	"github.com/sparkplug-edge/edge-client/cmd/edgenode/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
