package main

import "math"

// EvaluatePosition statically scores the board from player's perspective.
// Five terms: own patterns, opponent patterns (weighted above offense),
// opponent one-ply threats, blocking opportunities, and center control.
func EvaluatePosition(board Board, player PlayerColor) int {
	w := GetConfig().Weights
	playerCell := CellFromPlayer(player)
	opponentCell := CellFromPlayer(otherPlayer(player))

	own := patternScore(board, playerCell, w)
	theirs := patternScore(board, opponentCell, w)
	threats := threatScore(board, opponentCell, w)
	blocks := blockingBonus(board, playerCell, opponentCell, w)
	center := positionalScore(board, playerCell) - positionalScore(board, opponentCell)

	total := own - w.OpponentScale*theirs + w.ThreatScale*threats + w.BlockScale*blocks + w.CenterScale*center
	return int(math.Round(total))
}

// patternScore sums the directional run value of every stone of cell.
// Each stone visits each axis once (a direction and its opposite are the
// same line).
func patternScore(board Board, cell Cell, w EvalWeights) float64 {
	score := 0.0
	size := board.Size()
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if board.At(x, y, z) != cell {
					continue
				}
				stone := Move{X: x, Y: y, Z: z}
				for _, axis := range uniqueAxes {
					run, openEnds := lineThrough(board, stone, axis, cell)
					score += patternValue(run, openEnds, w) * axis.Weight()
				}
			}
		}
	}
	return score
}

// lineThrough returns the consecutive run of cell through stone along
// axis and how many of the two run ends are open (in bounds and empty).
func lineThrough(board Board, stone Move, axis Direction, cell Cell) (int, int) {
	forward := countCells(board, stone, axis, cell)
	backward := countCells(board, stone, axis.Opposite(), cell)
	run := 1 + forward + backward

	openEnds := 0
	fx := stone.X + (forward+1)*axis.Dx
	fy := stone.Y + (forward+1)*axis.Dy
	fz := stone.Z + (forward+1)*axis.Dz
	if board.IsEmpty(fx, fy, fz) {
		openEnds++
	}
	bx := stone.X - (backward+1)*axis.Dx
	by := stone.Y - (backward+1)*axis.Dy
	bz := stone.Z - (backward+1)*axis.Dz
	if board.IsEmpty(bx, by, bz) {
		openEnds++
	}
	return run, openEnds
}

func countCells(board Board, start Move, dir Direction, cell Cell) int {
	x := start.X + dir.Dx
	y := start.Y + dir.Dy
	z := start.Z + dir.Dz
	count := 0
	for board.InBounds(x, y, z) && board.At(x, y, z) == cell {
		count++
		x += dir.Dx
		y += dir.Dy
		z += dir.Dz
	}
	return count
}

func patternValue(run, openEnds int, w EvalWeights) float64 {
	switch {
	case run >= 5:
		return w.Win
	case run == 4:
		if openEnds == 2 {
			return w.FourOpen
		}
		return w.FourBlocked
	case run == 3:
		if openEnds == 2 {
			return w.ThreeOpen
		}
		return w.ThreeBlocked
	case run == 2:
		if openEnds == 2 {
			return w.TwoOpen
		}
		return w.TwoBlocked
	default:
		return w.One
	}
}

// threatScore probes every empty cell with a hypothetical opponent stone.
// A resulting run of five or more costs the win constant, a run of
// exactly four costs 1.5x the open-four constant. One ply of static
// lookahead, no recursion. The placement is transient.
func threatScore(board Board, opponentCell Cell, w EvalWeights) float64 {
	score := 0.0
	size := board.Size()
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if board.At(x, y, z) != CellEmpty {
					continue
				}
				board.Set(x, y, z, opponentCell)
				probe := Move{X: x, Y: y, Z: z}
				for _, axis := range uniqueAxes {
					run := 1 + countCells(board, probe, axis, opponentCell) + countCells(board, probe, axis.Opposite(), opponentCell)
					if run >= winRunLength {
						score -= w.Win
					} else if run == 4 {
						score -= 1.5 * w.FourOpen
					}
				}
				board.Remove(x, y, z)
			}
		}
	}
	return score
}

// blockingBonus rewards empty cells next to opponent stones in proportion
// to the opponent run a stone there would cap.
func blockingBonus(board Board, playerCell, opponentCell Cell, w EvalWeights) float64 {
	bonus := 0.0
	size := board.Size()
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if board.At(x, y, z) != opponentCell {
					continue
				}
				stone := Move{X: x, Y: y, Z: z}
				for _, dir := range allDirections {
					nx := x + dir.Dx
					ny := y + dir.Dy
					nz := z + dir.Dz
					if !board.IsEmpty(nx, ny, nz) {
						continue
					}
					interrupted := 1 + countCells(board, stone, dir.Opposite(), opponentCell)
					bonus += float64(interrupted) * dir.Weight() * w.BlockPerStone
				}
			}
		}
	}
	return bonus
}

func positionalScore(board Board, cell Cell) float64 {
	score := 0.0
	size := board.Size()
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if board.At(x, y, z) != cell {
					continue
				}
				dist := centerDistance(board, Move{X: x, Y: y, Z: z})
				if v := 10.0 - 2.0*dist; v > 0 {
					score += v
				}
			}
		}
	}
	return score
}

func centerDistance(board Board, move Move) float64 {
	c := float64(board.Size()-1) / 2.0
	dx := float64(move.X) - c
	dy := float64(move.Y) - c
	dz := float64(move.Z) - c
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// QuickEvaluateMove is the cheap ordering proxy: center pull plus a
// capped neighbor-occupancy bonus. Never used for leaf evaluation.
func QuickEvaluateMove(board Board, move Move, player PlayerColor) int {
	score := 20.0 - 3.0*centerDistance(board, move)
	if score < 0 {
		score = 0
	}
	neighbors := 0
	for _, dir := range allDirections {
		nx := move.X + dir.Dx
		ny := move.Y + dir.Dy
		nz := move.Z + dir.Dz
		if board.InBounds(nx, ny, nz) && board.At(nx, ny, nz) != CellEmpty {
			neighbors++
		}
	}
	occupancy := 5 * neighbors
	if occupancy > 30 {
		occupancy = 30
	}
	return int(score) + occupancy
}
