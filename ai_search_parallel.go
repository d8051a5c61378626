package main

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// searchRootParallel distributes the root candidates over a worker group.
// Every branch searches a full (-inf, +inf) window on its own clone with
// its own killer and history tables; only the transposition table is
// shared. The merge after Wait picks the same move the sequential loop
// would.
func (ctx *searchContext) searchRootParallel(board Board, hash uint64, depth int) (Move, bool, int, bool) {
	candidates := ctx.candidatesForNode(board, ctx.aiPlayer)
	if len(candidates) == 0 {
		return Move{}, false, 0, false
	}
	moverCell := CellFromPlayer(ctx.aiPlayer)

	type rootScore struct {
		score   int
		aborted bool
	}
	scores := make([]rootScore, len(candidates))
	branchStats := make([]SearchStats, len(candidates))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	var mu sync.Mutex
	stopped := false
	for i, move := range candidates {
		i, move := i, move
		g.Go(func() error {
			mu.Lock()
			if stopped {
				mu.Unlock()
				scores[i] = rootScore{aborted: true}
				return nil
			}
			mu.Unlock()
			branch := &searchContext{
				rules:       ctx.rules,
				config:      ctx.config,
				aiPlayer:    ctx.aiPlayer,
				killers:     NewKillerMoveTable(depth + 1),
				history:     make([]int, len(ctx.history)),
				tt:          ctx.tt,
				start:       ctx.start,
				deadline:    ctx.deadline,
				hasDeadline: ctx.hasDeadline,
				shouldStop:  ctx.shouldStop,
				stats:       &branchStats[i],
			}
			next := board.Clone()
			next.Set(move.X, move.Y, move.Z, moverCell)
			childHash := UpdateHashAfterMove(hash, board.Size(), move, ctx.aiPlayer)
			_, _, score, aborted := branch.minimax(next, childHash, depth-1, -scoreInfinity, scoreInfinity, false, 1)
			scores[i] = rootScore{score: score, aborted: aborted}
			if aborted {
				mu.Lock()
				stopped = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range branchStats {
		ctx.stats.Nodes += branchStats[i].Nodes
		ctx.stats.Cutoffs += branchStats[i].Cutoffs
		ctx.stats.TTProbes += branchStats[i].TTProbes
		ctx.stats.TTHits += branchStats[i].TTHits
		ctx.stats.TTStores += branchStats[i].TTStores
		ctx.stats.TTOverwrites += branchStats[i].TTOverwrites
	}

	var best Move
	hasBest := false
	bestScore := 0
	for i, move := range candidates {
		if scores[i].aborted {
			return Move{}, false, 0, true
		}
		if !hasBest || scores[i].score > bestScore {
			best = move
			bestScore = scores[i].score
			hasBest = true
		}
	}
	return best, hasBest, bestScore, false
}
