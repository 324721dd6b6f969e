package gateway

import "github.com/viant/mcp-bridge/config"

const (
	defaultAddr       = "127.0.0.1:8000"
	defaultRoute      = "/mcp"
	defaultTimeoutSec = 30
	defaultLogFile    = "logs/mcp_gateway.log"
)

// Options configures a gateway Service.
type Options struct {
	Addr        string   `short:"a" long:"addr" description:"listen address" env:"MCP_GATEWAY_ADDR"`
	Route       string   `short:"r" long:"route" description:"JSON-RPC endpoint route" env:"MCP_GATEWAY_ROUTE"`
	Command     string   `long:"command" description:"child command speaking line delimited JSON-RPC on stdio" env:"MCP_GATEWAY_COMMAND"`
	Arguments   []string `long:"arg" description:"child command argument, repeat for each one"`
	NoHandshake bool     `long:"no-handshake" description:"skip the initialize handshake at startup"`
	TimeoutSec  int      `short:"t" long:"timeout" description:"child reply timeout in seconds"`
	LogFile     string   `short:"l" long:"log" description:"diagnostic log file" env:"MCP_GATEWAY_LOG"`
	ConfigURL   string   `short:"c" long:"config" description:"optional config file with gateway defaults"`
}

// Init layers configuration file values under whatever flags and
// environment variables already set, then fills the built in defaults.
func (o *Options) Init(cfg *config.Config) {
	if cfg != nil && cfg.Gateway != nil {
		if o.Addr == "" {
			o.Addr = cfg.Gateway.Addr
		}
		if o.Route == "" {
			o.Route = cfg.Gateway.Route
		}
		if o.Command == "" {
			o.Command = cfg.Gateway.Command
			if len(o.Arguments) == 0 {
				o.Arguments = cfg.Gateway.Arguments
			}
		}
		if !o.NoHandshake {
			o.NoHandshake = cfg.Gateway.NoHandshake
		}
		if o.TimeoutSec == 0 {
			o.TimeoutSec = cfg.Gateway.TimeoutSec
		}
		if o.LogFile == "" {
			o.LogFile = cfg.Gateway.Log
		}
	}
	if o.Addr == "" {
		o.Addr = defaultAddr
	}
	if o.Route == "" {
		o.Route = defaultRoute
	}
	if o.TimeoutSec == 0 {
		o.TimeoutSec = defaultTimeoutSec
	}
	if o.LogFile == "" {
		o.LogFile = defaultLogFile
	}
}
