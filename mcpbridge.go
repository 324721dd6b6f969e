package mcpbridge

import (
	"github.com/viant/mcp-bridge/bridge"
	"github.com/viant/mcp-bridge/gateway"
)

// NewBridge returns a stdio to HTTP proxy service configured by options.
// Options should be initialized (bridge.Options.Init) before use so the
// built in defaults apply.
func NewBridge(options *bridge.Options, opts ...bridge.Option) *bridge.Service {
	return bridge.New(options, opts...)
}

// NewGateway returns an HTTP to stdio proxy service configured by
// options. The child process starts when the service is served.
func NewGateway(options *gateway.Options, opts ...gateway.Option) *gateway.Service {
	return gateway.New(options, opts...)
}
