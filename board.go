package main

import "fmt"

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

const DefaultBoardSize = 8

type Board struct {
	size  int
	cells []Cell
}

func NewBoard(boardSize int) Board {
	b := Board{}
	b.Reset(boardSize)
	return b
}

func (b *Board) Reset(boardSize int) {
	b.size = boardSize
	b.cells = make([]Cell, boardSize*boardSize*boardSize)
}

func (b Board) At(x, y, z int) Cell {
	return b.cells[b.index(x, y, z)]
}

func (b *Board) Set(x, y, z int, value Cell) {
	b.cells[b.index(x, y, z)] = value
}

func (b *Board) Remove(x, y, z int) {
	b.cells[b.index(x, y, z)] = CellEmpty
}

func (b Board) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < b.size && y < b.size && z < b.size
}

func (b Board) IsEmpty(x, y, z int) bool {
	return b.InBounds(x, y, z) && b.At(x, y, z) == CellEmpty
}

func (b Board) CountEmpty() int {
	count := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) CountStones() int {
	count := 0
	for _, cell := range b.cells {
		if cell != CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) Size() int {
	return b.size
}

func (b Board) Clone() Board {
	clone := Board{size: b.size}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

func (b Board) index(x, y, z int) int {
	return (z*b.size+y)*b.size + x
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

func CellFromPlayer(player PlayerColor) Cell {
	if player == PlayerBlack {
		return CellBlack
	}
	return CellWhite
}

func PlayerFromCell(cell Cell) (PlayerColor, error) {
	switch cell {
	case CellBlack:
		return PlayerBlack, nil
	case CellWhite:
		return PlayerWhite, nil
	default:
		return PlayerBlack, fmt.Errorf("empty cell has no player")
	}
}
