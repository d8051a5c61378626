package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadTranspositionTable(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TtPersistEnabled = true
	cfg.TtPersistPath = filepath.Join(dir, "tt.gob")
	cfg.AiTtSize = 1 << 8
	cfg.AiTtBuckets = 2

	FlushSearchTT()
	t.Cleanup(FlushSearchTT)

	tt := ensureSearchTT(cfg)
	key := mixKey(77)
	best := Move{X: 1, Y: 2, Z: 3}
	tt.Store(key, 5, 4321, TTExact, best, true)

	require.NoError(t, SaveTranspositionTable(cfg))

	FlushSearchTT()
	LoadTranspositionTable(cfg)

	restored := ensureSearchTT(cfg)
	entry, ok := restored.Probe(key)
	require.True(t, ok, "entry must survive a save/load cycle")
	require.Equal(t, 5, entry.Depth)
	require.Equal(t, int32(4321), entry.Score)
	require.True(t, entry.BestMove.Equals(best))
}

func TestLoadSkipsMismatchedGeometry(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TtPersistEnabled = true
	cfg.TtPersistPath = filepath.Join(dir, "tt.gob")
	cfg.AiTtSize = 1 << 8
	cfg.AiTtBuckets = 2

	FlushSearchTT()
	t.Cleanup(FlushSearchTT)

	tt := ensureSearchTT(cfg)
	key := mixKey(88)
	tt.Store(key, 3, 1, TTExact, Move{}, false)
	require.NoError(t, SaveTranspositionTable(cfg))

	FlushSearchTT()
	cfg.AiTtSize = 1 << 9
	LoadTranspositionTable(cfg)

	restored := ensureSearchTT(cfg)
	_, ok := restored.Probe(key)
	require.False(t, ok, "mismatched snapshot must not be loaded")
}

func TestSaveDisabledIsNoOp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TtPersistEnabled = false
	require.NoError(t, SaveTranspositionTable(cfg))
}

func TestLoadMissingFileIsSilent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TtPersistEnabled = true
	cfg.TtPersistPath = filepath.Join(t.TempDir(), "absent.gob")
	FlushSearchTT()
	t.Cleanup(FlushSearchTT)
	LoadTranspositionTable(cfg)
}

func TestPersistedEntriesSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TtPersistEnabled = true
	cfg.TtPersistPath = filepath.Join(dir, "tt.gob")
	cfg.AiTtSize = 1 << 8
	cfg.AiTtBuckets = 2

	FlushSearchTT()
	t.Cleanup(FlushSearchTT)

	board := NewBoard(8)
	board.Set(3, 3, 3, CellBlack)
	board.Set(4, 4, 4, CellWhite)
	key := ComputeBoardHash(board, PlayerBlack)
	best := Move{X: 5, Y: 5, Z: 5}
	ensureSearchTT(cfg).Store(key, 4, 120, TTExact, best, true)
	require.NoError(t, SaveTranspositionTable(cfg))

	// Simulate a restart: empty search table, regenerated zobrist tables.
	FlushSearchTT()
	zobristTables = &zobristStore{tables: make(map[int]*ZobristTable)}

	LoadTranspositionTable(cfg)
	entry, ok := ensureSearchTT(cfg).Probe(ComputeBoardHash(board, PlayerBlack))
	require.True(t, ok, "restored entry must be reachable with fresh tables")
	require.Equal(t, 4, entry.Depth)
	require.True(t, entry.BestMove.Equals(best))
}
