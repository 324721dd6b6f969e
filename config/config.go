// Package config loads the optional configuration document shared by the
// bridge and gateway binaries.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config mirrors the command line options of both binaries so a deployment
// can keep them in one document. Zero valued fields defer to flags,
// environment variables and built in defaults.
type Config struct {
	Bridge  *Bridge  `yaml:"bridge,omitempty" json:"bridge,omitempty"`
	Gateway *Gateway `yaml:"gateway,omitempty" json:"gateway,omitempty"`
}

// Bridge configures the stdio to HTTP side.
type Bridge struct {
	URL        string `yaml:"url,omitempty" json:"url,omitempty"`
	Log        string `yaml:"log,omitempty" json:"log,omitempty"`
	TimeoutSec int    `yaml:"timeoutSec,omitempty" json:"timeoutSec,omitempty"`
}

// Gateway configures the HTTP to stdio side.
type Gateway struct {
	Addr        string   `yaml:"addr,omitempty" json:"addr,omitempty"`
	Route       string   `yaml:"route,omitempty" json:"route,omitempty"`
	Command     string   `yaml:"command,omitempty" json:"command,omitempty"`
	Arguments   []string `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	NoHandshake bool     `yaml:"noHandshake,omitempty" json:"noHandshake,omitempty"`
	TimeoutSec  int      `yaml:"timeoutSec,omitempty" json:"timeoutSec,omitempty"`
	Log         string   `yaml:"log,omitempty" json:"log,omitempty"`
}

// Load fetches and decodes a configuration document. URL accepts anything
// afs understands, a local path works as well as a file:// or s3:// style
// location. The extension selects the format, .yaml and .yml decode as
// YAML, everything else as JSON.
func Load(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	config := &Config{}
	switch strings.ToLower(path.Ext(URL)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	return config, nil
}
