package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "medium", cfg.AiDifficulty)
	assert.Equal(t, 0, cfg.AiDepth)
	assert.Equal(t, 6, cfg.AiOpeningStones)
	assert.Equal(t, 20, cfg.AiMidgameStones)
	assert.True(t, cfg.AiEnableKillerMoves)
	assert.True(t, cfg.AiEnableTT)
	assert.False(t, cfg.AiEnableParallelRoot)
}

func TestDefaultEvalWeights(t *testing.T) {
	w := DefaultEvalWeights()
	assert.Equal(t, 1000000.0, w.Win)
	assert.Equal(t, 50000.0, w.FourOpen)
	assert.Equal(t, 5000.0, w.FourBlocked)
	assert.Equal(t, 2000.0, w.ThreeOpen)
	assert.Equal(t, 200.0, w.ThreeBlocked)
	assert.Equal(t, 100.0, w.TwoOpen)
	assert.Equal(t, 10.0, w.TwoBlocked)
	assert.Equal(t, 1.0, w.One)
	assert.Equal(t, 1.1, w.OpponentScale)
	assert.Equal(t, 2.0, w.ThreatScale)
	assert.Equal(t, 1.5, w.BlockScale)
	assert.Equal(t, 0.1, w.CenterScale)
}

func TestLoadConfigWithoutFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ServerAddr, cfg.ServerAddr)
	assert.Equal(t, DefaultConfig().Weights, cfg.Weights)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server_addr: \":9090\"\nai_difficulty: hard\nai_depth: 3\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "hard", cfg.AiDifficulty)
	assert.Equal(t, 3, cfg.AiDepth)
	// Untouched keys keep their defaults.
	assert.Equal(t, 6, cfg.AiOpeningStones)
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_addr: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestConfigStoreUpdateIsVisible(t *testing.T) {
	saved := GetConfig()
	defer configStore.Update(saved)

	cfg := saved
	cfg.AiDifficulty = "easy"
	configStore.Update(cfg)
	assert.Equal(t, "easy", GetConfig().AiDifficulty)
}
