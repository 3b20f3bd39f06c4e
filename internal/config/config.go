// internal/config/config.go
package config

import (
	"gopkg.in/yaml.v3"
	"os"
)

type Config struct {
	OutputDir    string `yaml:"output_dir"`
	TargetHeight int    `yaml:"target_height"`
	Format       string `yaml:"format"`
	Quality      int    `yaml:"quality"`
	Workers      int    `yaml:"workers"`
	Retry        bool   `yaml:"retry"`
}

func Default() *Config {
	return &Config{
		Format:  "jpeg",
		Quality: 85,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Format == "" {
		cfg.Format = "jpeg"
	}
	if cfg.Quality == 0 {
		cfg.Quality = 85
	}

	return cfg, nil
}
