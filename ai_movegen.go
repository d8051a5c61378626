package main

import "sort"

const (
	blockRunOneScore   = 1000
	blockRunTwoScore   = 10000
	blockRunThreeScore = 100000
	blockRunFourScore  = 1000000
)

type candidateMove struct {
	move  Move
	score int
}

// GenerateAllMoves enumerates every legal move for player.
func GenerateAllMoves(rules Rules, board Board, player PlayerColor) []Move {
	return rules.LegalMoves(board, player)
}

// GenerateOrderedMoves scores every legal move and returns the best
// maxMoves of them. The first few stones use a dedicated opening order
// (defense near opponent chains, then center, then proximity); afterwards
// the score is quick eval + critical blocking + defense.
func GenerateOrderedMoves(rules Rules, board Board, player PlayerColor, maxMoves int) []Move {
	legal := rules.LegalMoves(board, player)
	if len(legal) == 0 {
		return nil
	}
	if board.CountStones() <= 4 {
		return orderOpeningMoves(board, player, legal, maxMoves)
	}
	candidates := make([]candidateMove, 0, len(legal))
	for _, move := range legal {
		score := QuickEvaluateMove(board, move, player)
		score += criticalBlockingScore(board, move, player)
		score += defenseBonus(board, move, player)
		candidates = append(candidates, candidateMove{move: move, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if maxMoves > 0 && len(candidates) > maxMoves {
		candidates = candidates[:maxMoves]
	}
	moves := make([]Move, len(candidates))
	for i, c := range candidates {
		moves[i] = c.move
	}
	return moves
}

func orderOpeningMoves(board Board, player PlayerColor, legal []Move, maxMoves int) []Move {
	type openingMove struct {
		move      Move
		defense   int
		center    float64
		proximity int
	}
	scored := make([]openingMove, 0, len(legal))
	for _, move := range legal {
		scored = append(scored, openingMove{
			move:      move,
			defense:   defenseBonus(board, move, player),
			center:    centerDistance(board, move),
			proximity: stoneProximity(board, move),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].defense != scored[j].defense {
			return scored[i].defense > scored[j].defense
		}
		if scored[i].center != scored[j].center {
			return scored[i].center < scored[j].center
		}
		return scored[i].proximity < scored[j].proximity
	})
	if maxMoves > 0 && len(scored) > maxMoves {
		scored = scored[:maxMoves]
	}
	moves := make([]Move, len(scored))
	for i, s := range scored {
		moves[i] = s.move
	}
	return moves
}

// GenerateLocalMoves keeps the branching factor bounded once the board is
// populated: only legal cells within Chebyshev distance radius of an
// existing stone qualify.
func GenerateLocalMoves(rules Rules, board Board, player PlayerColor, radius int) []Move {
	size := board.Size()
	seen := make([]bool, size*size*size)
	moves := []Move{}
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if board.At(x, y, z) == CellEmpty {
					continue
				}
				for dz := -radius; dz <= radius; dz++ {
					for dy := -radius; dy <= radius; dy++ {
						for dx := -radius; dx <= radius; dx++ {
							nx := x + dx
							ny := y + dy
							nz := z + dz
							if !board.IsEmpty(nx, ny, nz) {
								continue
							}
							idx := board.index(nx, ny, nz)
							if seen[idx] {
								continue
							}
							seen[idx] = true
							move := Move{X: nx, Y: ny, Z: nz}
							if ok, _ := rules.IsLegal(board, move, player); ok {
								moves = append(moves, move)
							}
						}
					}
				}
			}
		}
	}
	return moves
}

// criticalBlockingScore awards tiered bonuses per direction for the
// opponent run a stone here would interrupt: 1k/10k/100k/1M for runs of
// length 1/2/3/4+.
func criticalBlockingScore(board Board, move Move, player PlayerColor) int {
	opponentCell := CellFromPlayer(otherPlayer(player))
	score := 0
	for _, dir := range allDirections {
		run := countCells(board, move, dir, opponentCell)
		switch {
		case run >= 4:
			score += blockRunFourScore
		case run == 3:
			score += blockRunThreeScore
		case run == 2:
			score += blockRunTwoScore
		case run == 1:
			score += blockRunOneScore
		}
	}
	return score
}

// defenseBonus is a softer directional pull toward opponent chains, used
// both by the opening order and as an ordering tiebreaker later on.
func defenseBonus(board Board, move Move, player PlayerColor) int {
	opponentCell := CellFromPlayer(otherPlayer(player))
	bonus := 0.0
	for _, dir := range allDirections {
		run := countCells(board, move, dir, opponentCell)
		bonus += float64(run) * dir.Weight() * 20.0
	}
	return int(bonus)
}

func stoneProximity(board Board, move Move) int {
	size := board.Size()
	best := size * 3
	found := false
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if board.At(x, y, z) == CellEmpty {
					continue
				}
				found = true
				if d := move.ChebyshevDistance(Move{X: x, Y: y, Z: z}); d < best {
					best = d
				}
			}
		}
	}
	if !found {
		return 0
	}
	return best
}
