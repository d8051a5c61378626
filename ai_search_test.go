package main

import (
	"testing"
	"time"
)

// withConfig swaps the active config for the duration of a test and
// drops the shared search table afterwards so tests stay isolated.
func withConfig(t *testing.T, mutate func(*Config)) {
	t.Helper()
	saved := GetConfig()
	cfg := saved
	mutate(&cfg)
	configStore.Update(cfg)
	FlushSearchTT()
	t.Cleanup(func() {
		configStore.Update(saved)
		FlushSearchTT()
	})
}

func TestSearchFindsImmediateWin(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = false
		cfg.AiEnableParallelRoot = false
		cfg.AiMaxCandidatesRoot = 512
	})
	board := NewBoard(8)
	placeRun(&board, Move{X: 2, Y: 3, Z: 3}, Direction{1, 0, 0}, 4, CellBlack)

	result := FindBestMove(board, PlayerBlack, 1, 0, nil, nil)
	if !result.HasMove {
		t.Fatalf("no move returned")
	}
	capLeft := Move{X: 1, Y: 3, Z: 3}
	capRight := Move{X: 6, Y: 3, Z: 3}
	if !result.Move.Equals(capLeft) && !result.Move.Equals(capRight) {
		t.Fatalf("winning completion not chosen, got %v", result.Move)
	}
	if result.Score != winScore-1 {
		t.Fatalf("win at ply 1 must score %d, got %d", winScore-1, result.Score)
	}
}

func TestSearchBlocksSimpleFour(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = false
		cfg.AiEnableParallelRoot = false
		cfg.AiMaxCandidatesRoot = 256
		cfg.AiMaxCandidatesMid = 256
	})
	board := NewBoard(6)
	// White four with the left end already capped: the only white win is
	// at the right end, black has to take it.
	board.Set(0, 2, 2, CellBlack)
	placeRun(&board, Move{X: 1, Y: 2, Z: 2}, Direction{1, 0, 0}, 4, CellWhite)

	result := FindBestMove(board, PlayerBlack, 2, 0, nil, nil)
	if !result.HasMove {
		t.Fatalf("no move returned")
	}
	block := Move{X: 5, Y: 2, Z: 2}
	if !result.Move.Equals(block) {
		t.Fatalf("expected block at %v, got %v", block, result.Move)
	}
}

func TestSearchIsDeterministicWithoutTT(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = false
		cfg.AiEnableParallelRoot = false
		cfg.AiMaxCandidatesRoot = 20
		cfg.AiMaxCandidatesMid = 12
	})
	board := NewBoard(8)
	board.Set(3, 3, 3, CellBlack)
	board.Set(4, 3, 3, CellWhite)
	board.Set(3, 4, 3, CellBlack)
	board.Set(4, 4, 3, CellWhite)

	first := FindBestMove(board, PlayerBlack, 2, 0, nil, nil)
	second := FindBestMove(board, PlayerBlack, 2, 0, nil, nil)
	if !first.Move.Equals(second.Move) || first.Score != second.Score {
		t.Fatalf("search is not deterministic: %v/%d vs %v/%d",
			first.Move, first.Score, second.Move, second.Score)
	}
}

func TestSearchStopSignalFallsBackToOrderedMove(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = false
		cfg.AiEnableParallelRoot = false
	})
	board := NewBoard(8)
	board.Set(3, 3, 3, CellWhite)

	result := FindBestMove(board, PlayerBlack, 4, 0, func() bool { return true }, nil)
	if !result.HasMove {
		t.Fatalf("fallback must still produce a move while legal moves exist")
	}
	if result.DepthReached != 0 {
		t.Fatalf("aborted search must not claim a completed depth, got %d", result.DepthReached)
	}
}

func TestSearchHonorsTimeBudget(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = false
		cfg.AiEnableParallelRoot = false
	})
	board := NewBoard(8)
	board.Set(3, 3, 3, CellBlack)
	board.Set(4, 4, 4, CellWhite)

	start := time.Now()
	result := FindBestMove(board, PlayerBlack, 12, 50*time.Millisecond, nil, nil)
	elapsed := time.Since(start)
	if !result.HasMove {
		t.Fatalf("expected a move even under a tight budget")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("search ran far past its budget: %v", elapsed)
	}
}

func TestSearchReportsDepthProgress(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = false
		cfg.AiEnableParallelRoot = false
		cfg.AiMaxCandidatesRoot = 10
		cfg.AiMaxCandidatesMid = 8
	})
	board := NewBoard(8)
	board.Set(3, 3, 3, CellWhite)

	depths := []int{}
	result := FindBestMove(board, PlayerBlack, 2, 0, nil, func(sr SearchResult) {
		depths = append(depths, sr.DepthReached)
	})
	if !result.HasMove {
		t.Fatalf("no move returned")
	}
	if len(depths) == 0 {
		t.Fatalf("depth callback never fired")
	}
	for i := 1; i < len(depths); i++ {
		if depths[i] <= depths[i-1] {
			t.Fatalf("depth progress not monotonic: %v", depths)
		}
	}
}

func TestTTDoesNotChangeChosenScoreClass(t *testing.T) {
	board := NewBoard(8)
	placeRun(&board, Move{X: 2, Y: 3, Z: 3}, Direction{1, 0, 0}, 4, CellBlack)

	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = false
		cfg.AiEnableParallelRoot = false
		cfg.AiMaxCandidatesRoot = 512
	})
	plain := FindBestMove(board, PlayerBlack, 2, 0, nil, nil)

	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = true
		cfg.AiEnableParallelRoot = false
		cfg.AiMaxCandidatesRoot = 512
	})
	cached := FindBestMove(board, PlayerBlack, 2, 0, nil, nil)

	if (plain.Score >= forcedWinScore) != (cached.Score >= forcedWinScore) {
		t.Fatalf("TT changed the outcome class: %d vs %d", plain.Score, cached.Score)
	}
}

func TestMateScorePlyAdjustmentRoundtrip(t *testing.T) {
	cases := []struct {
		score, ply int
	}{
		{winScore - 3, 3},
		{-(winScore - 5), 5},
		{1234, 7},
	}
	for _, c := range cases {
		stored := scoreToTTValue(c.score, c.ply)
		if got := scoreFromTT(stored, c.ply); got != c.score {
			t.Fatalf("roundtrip(%d, ply %d) = %d", c.score, c.ply, got)
		}
	}
	// A mate stored at one ply must read deeper from a greater ply.
	stored := scoreToTTValue(winScore-2, 2)
	if got := scoreFromTT(stored, 4); got != winScore-4 {
		t.Fatalf("mate score must shift with probe ply, got %d", got)
	}
}

func TestMergeCandidatesDedupAndLimit(t *testing.T) {
	a := []Move{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	b := []Move{{X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0}}
	merged := mergeCandidates(a, b, 3)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged moves, got %d", len(merged))
	}
	if !merged[0].Equals(a[0]) || !merged[1].Equals(a[1]) || !merged[2].Equals(b[1]) {
		t.Fatalf("unexpected merge order: %v", merged)
	}
}

func TestMoveToFront(t *testing.T) {
	moves := []Move{{X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0}}
	target := Move{X: 3, Y: 0, Z: 0}
	moves = moveToFront(moves, target)
	if !moves[0].Equals(target) {
		t.Fatalf("target not moved to front: %v", moves)
	}
	if !moves[1].Equals(Move{X: 1, Y: 0, Z: 0}) || !moves[2].Equals(Move{X: 2, Y: 0, Z: 0}) {
		t.Fatalf("relative order broken: %v", moves)
	}
}

// plainMinimax is a reference search with no pruning, no table and no
// reordering. It walks the same candidate sets as the real search.
func plainMinimax(ctx *searchContext, board Board, depth int, maximizing bool, ply int) (Move, bool, int) {
	if winner, won := ctx.rules.CheckWinner(board); won {
		if winner == ctx.aiPlayer {
			return Move{}, false, winScore - ply
		}
		return Move{}, false, -(winScore - ply)
	}
	if depth == 0 {
		return Move{}, false, EvaluatePosition(board, ctx.aiPlayer)
	}
	mover := ctx.aiPlayer
	if !maximizing {
		mover = otherPlayer(ctx.aiPlayer)
	}
	candidates := ctx.candidatesForNode(board, mover)
	if len(candidates) == 0 {
		return Move{}, false, EvaluatePosition(board, ctx.aiPlayer)
	}
	moverCell := CellFromPlayer(mover)
	var best Move
	hasBest := false
	bestScore := 0
	for _, move := range candidates {
		next := board.Clone()
		next.Set(move.X, move.Y, move.Z, moverCell)
		_, _, score := plainMinimax(ctx, next, depth-1, !maximizing, ply+1)
		if !hasBest || (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			bestScore = score
			best = move
			hasBest = true
		}
	}
	return best, hasBest, bestScore
}

func TestPrunedSearchMatchesPlainMinimax(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.AiEnableTT = false
		cfg.AiEnableParallelRoot = false
		cfg.AiEnableKillerMoves = false
		cfg.AiEnableHistoryMoves = false
		cfg.AiMaxCandidatesRoot = 12
		cfg.AiMaxCandidatesMid = 12
		cfg.AiMaxCandidatesLocal = 12
	})
	board := NewBoard(8)
	board.Set(3, 3, 3, CellBlack)
	board.Set(4, 3, 3, CellWhite)
	board.Set(3, 4, 3, CellBlack)
	board.Set(4, 4, 3, CellWhite)

	for depth := 2; depth <= 3; depth++ {
		ctx := &searchContext{
			rules:    NewRules(board.Size()),
			config:   GetConfig(),
			aiPlayer: PlayerBlack,
			stats:    &SearchStats{Start: time.Now()},
		}
		wantMove, wantHas, wantScore := plainMinimax(ctx, board, depth, true, 0)
		if !wantHas {
			t.Fatalf("depth %d: reference search found no move", depth)
		}

		got := FindBestMove(board, PlayerBlack, depth, 0, nil, nil)
		if !got.HasMove {
			t.Fatalf("depth %d: pruned search found no move", depth)
		}
		if !got.Move.Equals(wantMove) {
			t.Fatalf("depth %d: pruned search chose %v, reference chose %v", depth, got.Move, wantMove)
		}
		if got.Score != wantScore {
			t.Fatalf("depth %d: pruned score %d != reference score %d", depth, got.Score, wantScore)
		}
	}
}
