package main

import (
	"time"

	"github.com/rs/zerolog/log"
)

type GameSettings struct {
	BoardSize int        `json:"board_size"`
	BlackType PlayerType `json:"-"`
	WhiteType PlayerType `json:"-"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		BoardSize: DefaultBoardSize,
		BlackType: PlayerHuman,
		WhiteType: PlayerAI,
	}
}

type Game struct {
	settings    GameSettings
	rules       Rules
	state       GameState
	blackPlayer IPlayer
	whitePlayer IPlayer
	turnStart   time.Time
}

func NewGame(settings GameSettings) Game {
	g := Game{}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.settings = settings
	g.rules = NewRules(settings.BoardSize)
	g.state.Reset(settings.BoardSize)
	g.createPlayers()
	g.turnStart = time.Now()
	g.logMatchup()
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
	}
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

func (g *Game) TryApplyMove(move Move) (bool, string) {
	if g.state.Status != StatusRunning {
		return false, "game not running"
	}
	player := g.state.ToMove
	ok, reason := g.rules.IsLegal(g.state.Board, move, player)
	if !ok {
		g.state.LastMessage = "Illegal move: " + reason
		return false, g.state.LastMessage
	}
	g.state.LastMessage = ""
	elapsed := time.Since(g.turnStart)
	g.state.Board.Set(move.X, move.Y, move.Z, CellFromPlayer(player))
	g.state.Hash = UpdateHashAfterMove(g.state.Hash, g.state.Board.Size(), move, player)
	g.state.LastMove = move
	g.state.HasLastMove = true
	g.state.WinningLine = nil
	g.logMovePlayed(move, player, elapsed)

	if g.rules.IsWin(g.state.Board, move) {
		if line, found := g.rules.FindAlignmentLine(g.state.Board, move); found {
			g.state.WinningLine = line
		}
		if player == PlayerBlack {
			g.state.Status = StatusBlackWon
		} else {
			g.state.Status = StatusWhiteWon
		}
		log.Info().Str("player", player.String()).Msg("game won by alignment")
		return true, ""
	}
	if g.state.Board.CountEmpty() == 0 {
		g.state.Status = StatusDraw
		log.Info().Msg("game drawn, board full")
		return true, ""
	}

	g.state.ToMove = otherPlayer(player)
	g.turnStart = time.Now()
	return true, ""
}

// Tick advances the game by at most one committed move. Humans commit
// their pending move; the AI commits once its background search is done,
// starting one if none is running.
func (g *Game) Tick(ghostEnabled bool, ghostSink func(GhostUpdate)) bool {
	if g.state.Status != StatusRunning {
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		return false
	}
	if player.IsHuman() {
		human, ok := player.(*HumanPlayer)
		if ok && human.HasPendingMove() {
			move := human.TakePendingMove()
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		return false
	}
	ai, ok := player.(*AIPlayer)
	if !ok {
		return false
	}
	if ai.HasMoveReady() {
		move, hasMove := ai.TakeMove()
		if !hasMove {
			// Full board: the AI has no move, which is a draw upstream.
			return false
		}
		applied, _ := g.TryApplyMove(move)
		return applied
	}
	if !ai.IsThinking() {
		var sink func(GhostUpdate)
		if ghostEnabled && ghostSink != nil {
			sink = ghostSink
		}
		ai.StartThinking(g.state.Clone(), sink)
	}
	return false
}

func (g *Game) SubmitHumanMove(move Move) bool {
	player := g.currentPlayer()
	if player == nil || !player.IsHuman() {
		return false
	}
	human, ok := player.(*HumanPlayer)
	if !ok {
		return false
	}
	human.SetPendingMove(move)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

func (g *Game) AiThinking() bool {
	ai, ok := g.currentPlayer().(*AIPlayer)
	return ok && ai.IsThinking()
}

// LastAIResult exposes the facade result of the most recent AI move for
// the status endpoint (confidence, depth, node count).
func (g *Game) LastAIResult() (AIMoveResult, bool) {
	for _, p := range []IPlayer{g.blackPlayer, g.whitePlayer} {
		if ai, ok := p.(*AIPlayer); ok {
			result := ai.LastResult()
			if result.ThinkingTimeMs > 0 || result.HasMove {
				return result, true
			}
		}
	}
	return AIMoveResult{}, false
}

func (g *Game) ResetForConfigChange() {
	if aiBlack, ok := g.blackPlayer.(*AIPlayer); ok {
		aiBlack.ResetForConfigChange()
	}
	if aiWhite, ok := g.whitePlayer.(*AIPlayer); ok {
		aiWhite.ResetForConfigChange()
	}
}

func (g *Game) currentPlayer() IPlayer {
	return g.playerForColor(g.state.ToMove)
}

func (g *Game) playerForColor(color PlayerColor) IPlayer {
	if color == PlayerBlack {
		return g.blackPlayer
	}
	return g.whitePlayer
}

func (g *Game) createPlayers() {
	if g.settings.BlackType == PlayerHuman {
		g.blackPlayer = NewHumanPlayer()
	} else {
		g.blackPlayer = NewAIPlayer()
	}
	if g.settings.WhiteType == PlayerHuman {
		g.whitePlayer = NewHumanPlayer()
	} else {
		g.whitePlayer = NewAIPlayer()
	}
}

func (g *Game) logMatchup() {
	label := func(t PlayerType) string {
		if t == PlayerAI {
			return "AI"
		}
		return "Human"
	}
	log.Info().
		Str("black", label(g.settings.BlackType)).
		Str("white", label(g.settings.WhiteType)).
		Int("board", g.settings.BoardSize).
		Msg("new game")
}

func (g *Game) logMovePlayed(move Move, player PlayerColor, elapsed time.Duration) {
	log.Debug().
		Int("x", move.X).
		Int("y", move.Y).
		Int("z", move.Z).
		Str("player", player.String()).
		Dur("turn", elapsed).
		Msg("move played")
}
