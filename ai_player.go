package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyPreset returns the (maxDepth, timeBudget) pair for a named
// difficulty. Explicit ai_depth/ai_time_budget_ms overrides in config win
// over the preset.
func DifficultyPreset(d Difficulty) (int, time.Duration) {
	switch d {
	case DifficultyEasy:
		return 2, 200 * time.Millisecond
	case DifficultyHard:
		return 6, 600 * time.Millisecond
	default:
		return 4, 400 * time.Millisecond
	}
}

func activeSearchBudget(cfg Config) (int, time.Duration) {
	depth, budget := DifficultyPreset(Difficulty(cfg.AiDifficulty))
	if cfg.AiDepth > 0 {
		depth = cfg.AiDepth
	}
	if cfg.AiTimeBudgetMs > 0 {
		budget = time.Duration(cfg.AiTimeBudgetMs) * time.Millisecond
	}
	return depth, budget
}

type AIMoveResult struct {
	Move           Move  `json:"move"`
	HasMove        bool  `json:"has_move"`
	Evaluation     int   `json:"evaluation"`
	Confidence     int   `json:"confidence"`
	SearchDepth    int   `json:"search_depth"`
	NodesEvaluated int64 `json:"nodes_evaluated"`
	ThinkingTimeMs int64 `json:"thinking_time_ms"`
}

type SuggestedMove struct {
	Move  Move `json:"move"`
	Score int  `json:"score"`
}

// GhostUpdate is a search-progress snapshot streamed while the AI thinks.
type GhostUpdate struct {
	Move  Move  `json:"move"`
	Score int   `json:"score"`
	Depth int   `json:"depth"`
	Nodes int64 `json:"nodes"`
}

// GetBestMove is the decision entry point. Two fast paths run before the
// deep search: take an immediate five, then block the opponent's
// immediate five. Only when neither applies does iterative deepening run
// under the active difficulty budget.
func GetBestMove(board Board, aiPlayer PlayerColor, shouldStop func() bool, onGhost func(GhostUpdate)) AIMoveResult {
	start := time.Now()
	cfg := GetConfig()
	rules := NewRules(board.Size())

	if win, ok := findImmediateWinMove(rules, board, aiPlayer); ok {
		return AIMoveResult{
			Move:           win,
			HasMove:        true,
			Evaluation:     winScore,
			Confidence:     100,
			ThinkingTimeMs: time.Since(start).Milliseconds(),
		}
	}
	if block, ok := findImmediateWinMove(rules, board, otherPlayer(aiPlayer)); ok {
		// The winning cell itself can be an overline for us; then the
		// block is not playable and the search has to cope instead.
		if legal, _ := rules.IsLegal(board, block, aiPlayer); legal {
			return AIMoveResult{
				Move:           block,
				HasMove:        true,
				Evaluation:     EvaluatePosition(board, aiPlayer),
				Confidence:     95,
				ThinkingTimeMs: time.Since(start).Milliseconds(),
			}
		}
	}

	depth, budget := activeSearchBudget(cfg)
	var onDepth func(SearchResult)
	if onGhost != nil {
		onDepth = func(sr SearchResult) {
			onGhost(GhostUpdate{Move: sr.Move, Score: sr.Score, Depth: sr.DepthReached, Nodes: sr.NodesEvaluated})
		}
	}
	sr := FindBestMove(board, aiPlayer, depth, budget, shouldStop, onDepth)
	return AIMoveResult{
		Move:           sr.Move,
		HasMove:        sr.HasMove,
		Evaluation:     sr.Score,
		Confidence:     confidenceFor(sr),
		SearchDepth:    sr.DepthReached,
		NodesEvaluated: sr.NodesEvaluated,
		ThinkingTimeMs: time.Since(start).Milliseconds(),
	}
}

func findImmediateWinMove(rules Rules, board Board, player PlayerColor) (Move, bool) {
	size := board.Size()
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				move := Move{X: x, Y: y, Z: z}
				if !board.IsEmpty(x, y, z) {
					continue
				}
				if ok, _ := rules.IsLegal(board, move, player); !ok {
					continue
				}
				if rules.WouldWin(board, move, player) {
					return move, true
				}
			}
		}
	}
	return Move{}, false
}

func confidenceFor(sr SearchResult) int {
	if !sr.HasMove {
		return 0
	}
	confidence := 50 + 8*sr.DepthReached
	nodeBonus := int(sr.NodesEvaluated / 1000)
	if nodeBonus > 20 {
		nodeBonus = 20
	}
	confidence += nodeBonus
	abs := sr.Score
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > 100000:
		confidence += 30
	case abs > 10000:
		confidence += 20
	case abs > 1000:
		confidence += 10
	}
	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

// GetSuggestedMoves is the hint/analysis helper: the top ordered
// candidates, each scored by a static evaluation of the position after
// playing it. No search.
func GetSuggestedMoves(board Board, player PlayerColor, count int) []SuggestedMove {
	rules := NewRules(board.Size())
	ordered := GenerateOrderedMoves(rules, board, player, count)
	cell := CellFromPlayer(player)
	suggestions := make([]SuggestedMove, 0, len(ordered))
	for _, move := range ordered {
		probe := board.Clone()
		probe.Set(move.X, move.Y, move.Z, cell)
		suggestions = append(suggestions, SuggestedMove{Move: move, Score: EvaluatePosition(probe, player)})
	}
	return suggestions
}

// AIPlayer drives GetBestMove on a background goroutine for the game
// loop, publishing ghost progress while it thinks.
type AIPlayer struct {
	moveMutex  sync.Mutex
	ghostMutex sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	stopSignal atomic.Bool
	readyMove  Move
	hasMove    bool
	lastResult AIMoveResult
	lastGhost  GhostUpdate
	hasGhost   bool
}

func NewAIPlayer() *AIPlayer {
	return &AIPlayer{}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) StartThinking(state GameState, ghostSink func(GhostUpdate)) {
	if a.thinking.Load() {
		return
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)
	a.stopSignal.Store(false)

	boardCopy := state.Board.Clone()
	aiPlayer := state.ToMove
	done := make(chan struct{})
	a.workerDone = done
	config := GetConfig()
	go func() {
		defer close(done)
		start := time.Now()
		var onGhost func(GhostUpdate)
		if config.GhostMode && ghostSink != nil {
			throttle := time.Duration(config.AiGhostThrottleMs) * time.Millisecond
			var lastPublish time.Time
			onGhost = func(update GhostUpdate) {
				now := time.Now()
				if throttle > 0 && !lastPublish.IsZero() && now.Sub(lastPublish) < throttle {
					return
				}
				lastPublish = now
				a.ghostMutex.Lock()
				a.lastGhost = update
				a.hasGhost = true
				a.ghostMutex.Unlock()
				ghostSink(update)
			}
		}
		result := GetBestMove(boardCopy, aiPlayer, func() bool { return a.stopSignal.Load() }, onGhost)
		if a.stopSignal.Load() {
			a.moveReady.Store(false)
			a.thinking.Store(false)
			return
		}
		if minThink := time.Duration(config.AiMinThinkTimeMs) * time.Millisecond; minThink > 0 {
			if elapsed := time.Since(start); elapsed < minThink {
				time.Sleep(minThink - elapsed)
			}
		}
		a.moveMutex.Lock()
		a.readyMove = result.Move
		a.hasMove = result.HasMove
		a.lastResult = result
		a.moveMutex.Unlock()
		a.moveReady.Store(true)
		a.thinking.Store(false)
		log.Debug().
			Bool("has_move", result.HasMove).
			Int("confidence", result.Confidence).
			Int("depth", result.SearchDepth).
			Int64("think_ms", result.ThinkingTimeMs).
			Msg("ai move ready")
	}()
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

func (a *AIPlayer) TakeMove() (Move, bool) {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove, a.hasMove
}

func (a *AIPlayer) LastResult() AIMoveResult {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	return a.lastResult
}

func (a *AIPlayer) LastGhost() (GhostUpdate, bool) {
	a.ghostMutex.Lock()
	defer a.ghostMutex.Unlock()
	return a.lastGhost, a.hasGhost
}

func (a *AIPlayer) Stop() {
	a.stopSignal.Store(true)
}

func (a *AIPlayer) ResetForConfigChange() {
	a.stopSignal.Store(true)
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.stopSignal.Store(false)
}
