package bridge

import "github.com/viant/mcp-bridge/config"

const (
	defaultBackendURL = "http://127.0.0.1:8000/mcp"
	defaultLogFile    = "logs/mcp_bridge.log"
)

// Options configures a bridge Service.
type Options struct {
	URL        string `short:"u" long:"url" description:"backend JSON-RPC endpoint" env:"MCP_BACKEND_URL"`
	LogFile    string `short:"l" long:"log" description:"diagnostic log file" env:"MCP_BRIDGE_LOG"`
	TimeoutSec int    `short:"t" long:"timeout" description:"backend call timeout in seconds, 0 waits indefinitely"`
	ConfigURL  string `short:"c" long:"config" description:"optional config file with bridge defaults"`
}

// Init layers configuration file values under whatever flags and
// environment variables already set, then fills the built in defaults.
func (o *Options) Init(cfg *config.Config) {
	if cfg != nil && cfg.Bridge != nil {
		if o.URL == "" {
			o.URL = cfg.Bridge.URL
		}
		if o.LogFile == "" {
			o.LogFile = cfg.Bridge.Log
		}
		if o.TimeoutSec == 0 {
			o.TimeoutSec = cfg.Bridge.TimeoutSec
		}
	}
	if o.URL == "" {
		o.URL = defaultBackendURL
	}
	if o.LogFile == "" {
		o.LogFile = defaultLogFile
	}
}
