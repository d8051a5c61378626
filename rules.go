package main

import "fmt"

const (
	winRunLength      = 5
	overlineRunLength = 6
)

type Rules struct {
	boardSize int
}

func NewRules(boardSize int) Rules {
	return Rules{boardSize: boardSize}
}

func (r Rules) IsLegal(board Board, move Move, player PlayerColor) (bool, string) {
	if !move.IsValid(r.boardSize) {
		return false, "out of bounds"
	}
	if !board.IsEmpty(move.X, move.Y, move.Z) {
		return false, "occupied"
	}
	// IsForbiddenOverline mutates the board only transiently (set/remove move),
	// so we can run it directly without cloning the whole board.
	if r.IsForbiddenOverline(board, move, player) {
		return false, "forbidden overline"
	}
	return true, ""
}

// IsForbiddenOverline reports whether placing player's stone at move would
// create a run of six or more of their stones along any axis. The stone
// itself counts as one, so positive run + negative run + 1 is the total.
func (r Rules) IsForbiddenOverline(board Board, move Move, player PlayerColor) bool {
	cell := CellFromPlayer(player)
	board.Set(move.X, move.Y, move.Z, cell)
	forbidden := false
	for _, axis := range uniqueAxes {
		count := 1
		count += r.countDirection(board, move, axis)
		count += r.countDirection(board, move, axis.Opposite())
		if count >= overlineRunLength {
			forbidden = true
			break
		}
	}
	board.Remove(move.X, move.Y, move.Z)
	return forbidden
}

func (r Rules) IsWin(board Board, lastMove Move) bool {
	if !lastMove.IsValid(r.boardSize) {
		return false
	}
	if board.At(lastMove.X, lastMove.Y, lastMove.Z) == CellEmpty {
		return false
	}
	for _, axis := range uniqueAxes {
		count := 1
		count += r.countDirection(board, lastMove, axis)
		count += r.countDirection(board, lastMove, axis.Opposite())
		if count >= winRunLength {
			return true
		}
	}
	return false
}

// CheckWinner scans every occupied cell for a run of five or more along
// any axis. A run longer than five (only reachable on hand-built boards,
// since extending to six trips the overline rule) still counts for its
// owner.
func (r Rules) CheckWinner(board Board) (PlayerColor, bool) {
	size := board.Size()
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				cell := board.At(x, y, z)
				if cell == CellEmpty {
					continue
				}
				start := Move{X: x, Y: y, Z: z}
				for _, axis := range uniqueAxes {
					// Only count runs from their first stone, so each run is
					// inspected once.
					opp := axis.Opposite()
					px := x + opp.Dx
					py := y + opp.Dy
					pz := z + opp.Dz
					if board.InBounds(px, py, pz) && board.At(px, py, pz) == cell {
						continue
					}
					count := 1 + r.countDirection(board, start, axis)
					if count >= winRunLength {
						player, err := PlayerFromCell(cell)
						if err != nil {
							continue
						}
						return player, true
					}
				}
			}
		}
	}
	return PlayerBlack, false
}

func (r Rules) IsDraw(board Board) bool {
	if _, won := r.CheckWinner(board); won {
		return false
	}
	return board.CountEmpty() == 0
}

// WouldWin reports whether placing player's stone at move completes a run
// of five or more. The placement is transient.
func (r Rules) WouldWin(board Board, move Move, player PlayerColor) bool {
	if !board.IsEmpty(move.X, move.Y, move.Z) {
		return false
	}
	cell := CellFromPlayer(player)
	board.Set(move.X, move.Y, move.Z, cell)
	won := r.IsWin(board, move)
	board.Remove(move.X, move.Y, move.Z)
	return won
}

func (r Rules) LegalMoves(board Board, player PlayerColor) []Move {
	moves := []Move{}
	size := board.Size()
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				move := Move{X: x, Y: y, Z: z}
				if ok, _ := r.IsLegal(board, move, player); ok {
					moves = append(moves, move)
				}
			}
		}
	}
	return moves
}

func (r Rules) FindAlignmentLine(board Board, lastMove Move) ([]Move, bool) {
	line := []Move{}
	if !lastMove.IsValid(r.boardSize) {
		return line, false
	}
	if board.At(lastMove.X, lastMove.Y, lastMove.Z) == CellEmpty {
		return line, false
	}
	for _, axis := range uniqueAxes {
		line = r.collectLine(board, lastMove, axis)
		if len(line) >= winRunLength {
			return line, true
		}
	}
	return []Move{}, false
}

func (r Rules) WinLength() int {
	return winRunLength
}

func (r Rules) countDirection(board Board, start Move, dir Direction) int {
	target := board.At(start.X, start.Y, start.Z)
	x := start.X + dir.Dx
	y := start.Y + dir.Dy
	z := start.Z + dir.Dz
	count := 0
	for board.InBounds(x, y, z) && board.At(x, y, z) == target {
		count++
		x += dir.Dx
		y += dir.Dy
		z += dir.Dz
	}
	return count
}

func (r Rules) collectLine(board Board, start Move, axis Direction) []Move {
	line := []Move{}
	target := board.At(start.X, start.Y, start.Z)
	x := start.X
	y := start.Y
	z := start.Z
	opp := axis.Opposite()
	for board.InBounds(x+opp.Dx, y+opp.Dy, z+opp.Dz) && board.At(x+opp.Dx, y+opp.Dy, z+opp.Dz) == target {
		x += opp.Dx
		y += opp.Dy
		z += opp.Dz
	}
	for board.InBounds(x, y, z) && board.At(x, y, z) == target {
		line = append(line, Move{X: x, Y: y, Z: z})
		x += axis.Dx
		y += axis.Dy
		z += axis.Dz
	}
	return line
}

func (r Rules) String() string {
	return fmt.Sprintf("Rules{size=%d, win=%d}", r.boardSize, winRunLength)
}
