package config

import "github.com/caarlos0/env/v11"

// LogConfig is read from the environment before the main config so that
// config loading itself is logged at the right level.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"true"`
	SampleEvery uint32 `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
