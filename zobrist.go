package main

import (
	"encoding/binary"
	"math"
	"sync"

	"lukechampine.com/frand"
)

type ZobristTable struct {
	size  int
	cells []uint64
	side  uint64
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[int]*ZobristTable
}

var zobristTables = &zobristStore{tables: make(map[int]*ZobristTable)}

const bignum = uint64(math.MaxUint64 - 2)

const zobristSeed = uint64(0x9e3779b97f4a7c15)

// zobristRNG is seeded from a fixed constant and the board size, so a
// table for a given size holds the same keys in every process. Persisted
// search entries stay probeable across restarts.
func zobristRNG(size int) *frand.RNG {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[0:8], zobristSeed)
	binary.LittleEndian.PutUint64(seed[8:16], uint64(size))
	return frand.NewCustom(seed[:], 1024, 12)
}

func GetZobrist(size int) *ZobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	if table, ok := zobristTables.tables[size]; ok {
		return table
	}
	rng := zobristRNG(size)
	table := &ZobristTable{size: size, cells: make([]uint64, size*size*size*2)}
	for i := range table.cells {
		table.cells[i] = rng.Uint64n(bignum) + 1
	}
	table.side = rng.Uint64n(bignum) + 1
	zobristTables.tables[size] = table
	return table
}

func (z *ZobristTable) stone(x, y, z3 int, player PlayerColor) uint64 {
	idx := ((z3*z.size+y)*z.size + x) * 2
	if player == PlayerWhite {
		idx++
	}
	return z.cells[idx]
}

func ComputeHash(state GameState) uint64 {
	return ComputeBoardHash(state.Board, state.ToMove)
}

func ComputeBoardHash(board Board, toMove PlayerColor) uint64 {
	z := GetZobrist(board.Size())
	var hash uint64
	size := board.Size()
	for zc := 0; zc < size; zc++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				cell := board.At(x, y, zc)
				if cell == CellEmpty {
					continue
				}
				player := PlayerBlack
				if cell == CellWhite {
					player = PlayerWhite
				}
				hash ^= z.stone(x, y, zc, player)
			}
		}
	}
	if toMove == PlayerWhite {
		hash ^= z.side
	}
	return hash
}

// UpdateHashAfterMove applies the incremental stone and side-to-move keys.
// It must produce the same value ComputeBoardHash would on the new board.
func UpdateHashAfterMove(hash uint64, boardSize int, move Move, player PlayerColor) uint64 {
	z := GetZobrist(boardSize)
	hash ^= z.stone(move.X, move.Y, move.Z, player)
	hash ^= z.side
	return hash
}
