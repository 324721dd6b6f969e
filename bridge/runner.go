package bridge

import (
	"context"

	"github.com/jessevdk/go-flags"
	"github.com/viant/mcp-bridge/config"
	"github.com/viant/mcp-bridge/internal/diag"
)

// Run parses args and pumps stdin to the backend until end of stream.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	var cfg *config.Config
	if options.ConfigURL != "" {
		var err error
		if cfg, err = config.Load(ctx, options.ConfigURL); err != nil {
			return err
		}
	}
	options.Init(cfg)
	logger := diag.Init(options.LogFile)
	srv := New(options, WithLogger(logger))
	return srv.Run(ctx)
}
