package main

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	winScore       = 1000000
	forcedWinScore = 900000
	scoreInfinity  = 1 << 30
)

type SearchResult struct {
	Move           Move
	HasMove        bool
	Score          int
	NodesEvaluated int64
	DepthReached   int
}

type SearchStats struct {
	Nodes           int64
	TTProbes        int64
	TTHits          int64
	TTStores        int64
	TTOverwrites    int64
	Cutoffs         int64
	Start           time.Time
	DepthDurations  []time.Duration
	CompletedDepths int
}

type searchContext struct {
	rules       Rules
	config      Config
	aiPlayer    PlayerColor
	killers     *KillerMoveTable
	history     []int
	tt          *TranspositionTable
	start       time.Time
	deadline    time.Time
	hasDeadline bool
	shouldStop  func() bool
	stats       *SearchStats
}

var (
	searchTTMu sync.Mutex
	searchTT   *TranspositionTable
)

func ensureSearchTT(cfg Config) *TranspositionTable {
	searchTTMu.Lock()
	defer searchTTMu.Unlock()
	if searchTT == nil || searchTT.Capacity() != int(nextPowerOfTwo(uint64(cfg.AiTtSize)))*cfg.AiTtBuckets {
		searchTT = NewTranspositionTable(uint64(cfg.AiTtSize), cfg.AiTtBuckets)
	}
	return searchTT
}

// FlushSearchTT drops the shared table. Tests use it to isolate searches.
func FlushSearchTT() {
	searchTTMu.Lock()
	defer searchTTMu.Unlock()
	searchTT = nil
}

// FindBestMove runs iterative deepening to maxDepth under timeLimit and
// returns the best completed result. A depth that times out is discarded;
// the last fully completed depth stands. onDepth, when non-nil, is called
// after every completed depth with the result so far.
func FindBestMove(board Board, aiPlayer PlayerColor, maxDepth int, timeLimit time.Duration, shouldStop func() bool, onDepth func(SearchResult)) SearchResult {
	cfg := GetConfig()
	rules := NewRules(board.Size())
	stats := &SearchStats{Start: time.Now()}
	ctx := &searchContext{
		rules:      rules,
		config:     cfg,
		aiPlayer:   aiPlayer,
		killers:    NewKillerMoveTable(maxDepth + 1),
		history:    make([]int, board.Size()*board.Size()*board.Size()),
		start:      stats.Start,
		shouldStop: shouldStop,
		stats:      stats,
	}
	if timeLimit > 0 {
		ctx.deadline = stats.Start.Add(timeLimit)
		ctx.hasDeadline = true
	}
	if cfg.AiEnableTT {
		ctx.tt = ensureSearchTT(cfg)
		ctx.tt.NextGeneration()
	}

	hash := ComputeBoardHash(board, aiPlayer)
	result := SearchResult{}
	for depth := 1; depth <= maxDepth; depth++ {
		depthStart := time.Now()
		var move Move
		var has bool
		var score int
		var aborted bool
		if cfg.AiEnableParallelRoot && depth >= 2 {
			move, has, score, aborted = ctx.searchRootParallel(board, hash, depth)
		} else {
			move, has, score, aborted = ctx.minimax(board, hash, depth, -scoreInfinity, scoreInfinity, true, 0)
		}
		if aborted {
			break
		}
		stats.DepthDurations = append(stats.DepthDurations, time.Since(depthStart))
		stats.CompletedDepths = depth
		if has {
			result.Move = move
			result.HasMove = true
			result.Score = score
			result.DepthReached = depth
			result.NodesEvaluated = stats.Nodes
			if onDepth != nil {
				onDepth(result)
			}
		}
		if score >= forcedWinScore {
			break
		}
	}
	result.NodesEvaluated = stats.Nodes
	if !result.HasMove {
		// Budget too small for even depth 1: fall back to quick ordering
		// rather than passing while legal moves exist.
		fallback := GenerateOrderedMoves(rules, board, aiPlayer, 10)
		if len(fallback) > 0 {
			result.Move = fallback[0]
			result.HasMove = true
			result.Score = EvaluatePosition(board, aiPlayer)
		}
	}
	if cfg.AiLogSearchStats {
		logSearchStats(stats, result, aiPlayer)
	}
	return result
}

func (ctx *searchContext) timedOut() bool {
	if ctx.shouldStop != nil && ctx.shouldStop() {
		return true
	}
	return ctx.hasDeadline && time.Now().After(ctx.deadline)
}

// minimax is the recursive alpha-beta search. The fourth return value
// signals a timeout abort: the caller must discard the partial score.
// Each branch works on its own clone, so there is nothing to undo on the
// abort path.
func (ctx *searchContext) minimax(board Board, hash uint64, depth, alpha, beta int, maximizing bool, ply int) (Move, bool, int, bool) {
	if ctx.timedOut() {
		return Move{}, false, 0, true
	}
	ctx.stats.Nodes++
	if winner, won := ctx.rules.CheckWinner(board); won {
		if winner == ctx.aiPlayer {
			return Move{}, false, winScore - ply, false
		}
		return Move{}, false, -(winScore - ply), false
	}
	if depth == 0 {
		return Move{}, false, EvaluatePosition(board, ctx.aiPlayer), false
	}

	alphaOrig := alpha
	betaOrig := beta
	var ttMove Move
	hasTTMove := false
	if ctx.tt != nil {
		ctx.stats.TTProbes++
		if entry, ok := ctx.tt.Probe(hash); ok {
			ctx.stats.TTHits++
			if entry.HasBestMove {
				ttMove = entry.BestMove
				hasTTMove = true
			}
			if entry.Depth >= depth {
				score := scoreFromTT(int(entry.Score), ply)
				switch entry.Flag {
				case TTExact:
					return entry.BestMove, entry.HasBestMove, score, false
				case TTLower:
					if score > alpha {
						alpha = score
					}
				case TTUpper:
					if score < beta {
						beta = score
					}
				}
				if alpha >= beta {
					return entry.BestMove, entry.HasBestMove, score, false
				}
			}
		}
	}

	mover := ctx.aiPlayer
	if !maximizing {
		mover = otherPlayer(ctx.aiPlayer)
	}
	candidates := ctx.candidatesForNode(board, mover)
	if len(candidates) == 0 {
		return Move{}, false, EvaluatePosition(board, ctx.aiPlayer), false
	}
	if ctx.config.AiEnableHistoryMoves {
		ctx.applyHistoryOrdering(board, candidates)
	}
	if ctx.config.AiEnableKillerMoves {
		candidates = ctx.killers.Reorder(ply, candidates)
	}
	if hasTTMove {
		candidates = moveToFront(candidates, ttMove)
	}

	moverCell := CellFromPlayer(mover)
	var best Move
	hasBest := false
	bestScore := 0
	for _, move := range candidates {
		next := board.Clone()
		next.Set(move.X, move.Y, move.Z, moverCell)
		childHash := UpdateHashAfterMove(hash, board.Size(), move, mover)
		_, _, score, aborted := ctx.minimax(next, childHash, depth-1, alpha, beta, !maximizing, ply+1)
		if aborted {
			return Move{}, false, 0, true
		}
		if !hasBest || (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			bestScore = score
			best = move
			hasBest = true
		}
		if maximizing {
			if bestScore > alpha {
				alpha = bestScore
			}
		} else {
			if bestScore < beta {
				beta = bestScore
			}
		}
		if beta <= alpha {
			ctx.stats.Cutoffs++
			if ctx.config.AiEnableKillerMoves {
				ctx.killers.Record(ply, move)
			}
			if ctx.config.AiEnableHistoryMoves {
				ctx.recordHistory(board, move, depth)
			}
			break
		}
	}

	if ctx.tt != nil && hasBest {
		flag := TTExact
		if bestScore <= alphaOrig {
			flag = TTUpper
		} else if bestScore >= betaOrig {
			flag = TTLower
		}
		ctx.stats.TTStores++
		if _, overwrote := ctx.tt.Store(hash, depth, scoreToTTValue(bestScore, ply), flag, best, hasBest); overwrote {
			ctx.stats.TTOverwrites++
		}
	}
	return best, hasBest, bestScore, false
}

// candidatesForNode adapts the candidate set to the game phase: wide and
// ordered while the board is sparse, merged local+global in the midgame,
// tight local moves late.
func (ctx *searchContext) candidatesForNode(board Board, mover PlayerColor) []Move {
	stones := board.CountStones()
	cfg := ctx.config
	switch {
	case stones <= cfg.AiOpeningStones:
		return GenerateOrderedMoves(ctx.rules, board, mover, cfg.AiMaxCandidatesRoot)
	case stones <= cfg.AiMidgameStones:
		global := GenerateOrderedMoves(ctx.rules, board, mover, cfg.AiMaxCandidatesMid)
		local := GenerateLocalMoves(ctx.rules, board, mover, cfg.AiLocalRadiusMid)
		return mergeCandidates(global, local, cfg.AiMaxCandidatesMid)
	default:
		local := GenerateLocalMoves(ctx.rules, board, mover, cfg.AiLocalRadiusEndgame)
		if len(local) == 0 {
			return GenerateOrderedMoves(ctx.rules, board, mover, cfg.AiMaxCandidatesLocal)
		}
		return local
	}
}

func mergeCandidates(primary, secondary []Move, limit int) []Move {
	merged := make([]Move, 0, limit)
	seen := make(map[Move]bool, limit)
	appendUnique := func(moves []Move) {
		for _, move := range moves {
			if len(merged) >= limit {
				return
			}
			if seen[move] {
				continue
			}
			seen[move] = true
			merged = append(merged, move)
		}
	}
	appendUnique(primary)
	appendUnique(secondary)
	return merged
}

func moveToFront(moves []Move, target Move) []Move {
	for i, move := range moves {
		if move.Equals(target) {
			if i == 0 {
				return moves
			}
			copy(moves[1:i+1], moves[:i])
			moves[0] = target
			return moves
		}
	}
	return moves
}

func (ctx *searchContext) applyHistoryOrdering(board Board, moves []Move) {
	// Stable insertion by history count keeps the generator's order for
	// untouched moves.
	for i := 1; i < len(moves); i++ {
		j := i
		for j > 0 && ctx.historyValue(board, moves[j]) > ctx.historyValue(board, moves[j-1]) {
			moves[j], moves[j-1] = moves[j-1], moves[j]
			j--
		}
	}
}

func (ctx *searchContext) historyValue(board Board, move Move) int {
	return ctx.history[board.index(move.X, move.Y, move.Z)]
}

func (ctx *searchContext) recordHistory(board Board, move Move, depth int) {
	ctx.history[board.index(move.X, move.Y, move.Z)] += depth * depth
}

// Terminal scores carry a ply offset so nearer wins rank higher; strip it
// before storing in the TT and re-apply on probe, keeping entries valid
// at any distance from the root.
func scoreToTTValue(score, ply int) int {
	if score >= forcedWinScore {
		return score + ply
	}
	if score <= -forcedWinScore {
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	if score >= forcedWinScore {
		return score - ply
	}
	if score <= -forcedWinScore {
		return score + ply
	}
	return score
}

func logSearchStats(stats *SearchStats, result SearchResult, aiPlayer PlayerColor) {
	evt := log.Info().
		Str("player", aiPlayer.String()).
		Int64("nodes", stats.Nodes).
		Int64("cutoffs", stats.Cutoffs).
		Int64("tt_probes", stats.TTProbes).
		Int64("tt_hits", stats.TTHits).
		Int64("tt_stores", stats.TTStores).
		Int("completed_depths", stats.CompletedDepths).
		Int("score", result.Score).
		Dur("elapsed", time.Since(stats.Start))
	for i, d := range stats.DepthDurations {
		evt = evt.Dur("depth_"+strconv.Itoa(i+1), d)
	}
	evt.Msg("search finished")
}
