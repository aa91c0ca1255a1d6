package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "full.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_stream_url: ws://localhost:8545/ws\nbuffer_size: 7\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8545/ws", cfg.StateStreamURL)
	assert.Equal(t, uint(7), cfg.BufferSize)

	path = filepath.Join(dir, "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_stream_url: ws://node/ws\n"), 0o600))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(DefaultBufferSize), cfg.BufferSize)

	path = filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("buffer_size: 3\n"), 0o600))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "state_stream_url")

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
