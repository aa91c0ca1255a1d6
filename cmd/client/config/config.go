package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultBufferSize = 100

type ClientConfig struct {
	// StateStreamURL is the node's WebSocket endpoint, e.g. ws://localhost:8545/ws.
	StateStreamURL string `yaml:"state_stream_url"`
	BufferSize     uint   `yaml:"buffer_size"`
}

// LoadConfig reads a configuration file from the given path and unmarshals it
// into a ClientConfig struct.
func LoadConfig(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := ClientConfig{BufferSize: DefaultBufferSize}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.StateStreamURL == "" {
		return nil, errors.New("config: state_stream_url is required")
	}

	return &cfg, nil
}
