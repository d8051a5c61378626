package main

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

type ttSnapshot struct {
	Size    int
	Buckets int
	Entries []TTEntry
}

func countValidTTEntries(entries []TTEntry) int {
	count := 0
	for _, entry := range entries {
		if entry.Valid {
			count++
		}
	}
	return count
}

// LoadTranspositionTable restores the shared search table from disk. A
// snapshot whose geometry does not match the current config is skipped
// rather than reshaped.
func LoadTranspositionTable(cfg Config) {
	if !cfg.TtPersistEnabled || cfg.TtPersistPath == "" {
		return
	}
	path := cfg.TtPersistPath
	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to open tt snapshot")
		}
		return
	}
	defer file.Close()

	var snapshot ttSnapshot
	if err := gob.NewDecoder(file).Decode(&snapshot); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to decode tt snapshot")
		return
	}
	if snapshot.Size != cfg.AiTtSize || snapshot.Buckets != cfg.AiTtBuckets {
		log.Info().
			Int("snapshot_size", snapshot.Size).
			Int("snapshot_buckets", snapshot.Buckets).
			Int("config_size", cfg.AiTtSize).
			Int("config_buckets", cfg.AiTtBuckets).
			Msg("tt snapshot geometry mismatch, skipping")
		return
	}

	tt := NewTranspositionTable(uint64(snapshot.Size), snapshot.Buckets)
	tt.loadEntries(snapshot.Entries)
	searchTTMu.Lock()
	searchTT = tt
	searchTTMu.Unlock()
	log.Info().
		Str("path", path).
		Int("valid", countValidTTEntries(snapshot.Entries)).
		Int("total", len(snapshot.Entries)).
		Msg("restored tt snapshot")
}

// SaveTranspositionTable writes the shared search table to disk. The write
// goes through a temp file and rename so a crash mid-write never leaves a
// truncated snapshot behind.
func SaveTranspositionTable(cfg Config) error {
	if !cfg.TtPersistEnabled || cfg.TtPersistPath == "" {
		return nil
	}
	searchTTMu.Lock()
	tt := searchTT
	searchTTMu.Unlock()
	if tt == nil {
		return nil
	}

	path := cfg.TtPersistPath
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	snapshot := ttSnapshot{
		Size:    cfg.AiTtSize,
		Buckets: cfg.AiTtBuckets,
		Entries: tt.snapshotEntries(),
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create tt snapshot: %w", err)
	}
	if err := gob.NewEncoder(file).Encode(snapshot); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode tt snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close tt snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename tt snapshot: %w", err)
	}
	log.Info().
		Str("path", path).
		Int("valid", countValidTTEntries(snapshot.Entries)).
		Msg("stored tt snapshot")
	return nil
}
