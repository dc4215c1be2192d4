package main

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "JSROUTES_"

// config is read from JSROUTES_* environment variables. Command flags
// use these values as their defaults.
type config struct {
	URLs    string        `env:"URLS"`
	Context string        `env:"CONTEXT"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	Addr          string        `env:"ADDR"           envDefault:":8080"`
	BasePath      string        `env:"BASE_PATH"      envDefault:"/jsrev"`
	CacheDuration time.Duration `env:"CACHE_DURATION" envDefault:"24h"`
	SecureCookie  bool          `env:"SECURE_COOKIE"  envDefault:"false"`

	LogLevel      string `env:"LOG_LEVEL"       envDefault:"info"`
	LogColored    bool   `env:"LOG_COLORED"     envDefault:"true"`
	LogTimeFormat string `env:"LOG_TIME_FORMAT" envDefault:"15:04:05"`
}

func loadConfig() (config, error) {
	return env.ParseAsWithOptions[config](env.Options{Prefix: envPrefix})
}
