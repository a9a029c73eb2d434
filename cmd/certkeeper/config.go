package main

import (
	"github.com/dmitrymomot/certkeeper/core/logger"
	"github.com/dmitrymomot/certkeeper/core/renewal"
	"github.com/dmitrymomot/certkeeper/core/server"
)

// Config is the process configuration, read from the environment and
// optionally overlaid with a YAML file.
type Config struct {
	Server  server.Config  `yaml:"server"`
	Renewal renewal.Config `yaml:"renewal"`
	Log     logger.Config  `yaml:"log"`

	// Site served over HTTPS
	StaticDir    string `env:"STATIC_DIR" envDefault:"./public" yaml:"static_dir"`
	CacheControl string `env:"STATIC_CACHE_CONTROL" envDefault:"public, max-age=300" yaml:"cache_control"`
}
