// Command mcp-bridge is a standalone binary that runs the stdio to HTTP
// proxy. A process that only speaks newline delimited JSON-RPC on its
// standard streams points at this binary, which forwards every message
// to the configured backend endpoint and prints each backend reply as
// one line.
package main

import (
	"log"
	"os"

	"github.com/viant/mcp-bridge/bridge"
)

func main() {
	if err := bridge.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
