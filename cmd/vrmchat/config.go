package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	orchestration "github.com/jimli1231/eletron-vrm/core"
	"github.com/jimli1231/eletron-vrm/core/llms/gemini"
	"gopkg.in/yaml.v3"
)

const apiKeyEnv = "GEMINI_API_KEY"

// Config is the on-disk configuration, by default at
// ~/.config/vrmchat/config.yaml.
type Config struct {
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	BaseURL           string        `yaml:"base_url"`
	Temperature       *float32      `yaml:"temperature"`
	ChunkTimeout      time.Duration `yaml:"chunk_timeout"`
	SystemInstruction string        `yaml:"system_instruction"`
	Listen            string        `yaml:"listen"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vrmchat", "config.yaml")
}

// loadConfig reads the config file at path. A missing file is only an error
// when the path was given explicitly. The GEMINI_API_KEY environment
// variable takes precedence over the file.
func loadConfig(path string) (Config, error) {
	var config Config

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if apiKey, ok := os.LookupEnv(apiKeyEnv); ok && apiKey != "" {
		config.APIKey = apiKey
	}
	return config, nil
}

func (c Config) clientOptions() []gemini.ClientOption {
	var opts []gemini.ClientOption
	if c.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(c.BaseURL))
	}
	if c.Model != "" {
		opts = append(opts, gemini.WithDefaultModel(c.Model))
	}
	if c.Temperature != nil {
		opts = append(opts, gemini.WithTemperature(*c.Temperature))
	}
	return opts
}

func (c Config) sessionOptions() []orchestration.SessionOption {
	opts := []orchestration.SessionOption{
		orchestration.WithTransport(gemini.NewClient(c.APIKey, c.clientOptions()...)),
	}
	if c.ChunkTimeout > 0 {
		opts = append(opts, orchestration.WithChunkTimeout(c.ChunkTimeout))
	}
	if c.SystemInstruction != "" {
		opts = append(opts, orchestration.WithSystemInstruction(c.SystemInstruction))
	}
	return opts
}
