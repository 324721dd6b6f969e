// Command mcp-gateway is a standalone binary that exposes a stdio based
// JSON-RPC child process behind an HTTP endpoint. It is the mirror
// image of mcp-bridge: HTTP request bodies become child stdin lines and
// the child's identifier matched stdout lines become HTTP responses.
package main

import (
	"log"
	"os"

	"github.com/viant/mcp-bridge/gateway"
)

func main() {
	if err := gateway.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
