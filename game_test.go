package main

import "testing"

func humanVsHumanGame(boardSize int) Game {
	settings := GameSettings{BoardSize: boardSize, BlackType: PlayerHuman, WhiteType: PlayerHuman}
	game := NewGame(settings)
	game.Start()
	return game
}

func TestGameRejectsMoveBeforeStart(t *testing.T) {
	game := NewGame(GameSettings{BoardSize: 8, BlackType: PlayerHuman, WhiteType: PlayerHuman})
	applied, reason := game.TryApplyMove(Move{X: 0, Y: 0, Z: 0})
	if applied || reason != "game not running" {
		t.Fatalf("move before start must fail, got (%v, %q)", applied, reason)
	}
}

func TestGameAlternatesTurnsAndTracksHash(t *testing.T) {
	game := humanVsHumanGame(8)
	if game.State().ToMove != PlayerBlack {
		t.Fatalf("black moves first")
	}
	if applied, _ := game.TryApplyMove(Move{X: 3, Y: 3, Z: 3}); !applied {
		t.Fatalf("legal move rejected")
	}
	state := game.State()
	if state.ToMove != PlayerWhite {
		t.Fatalf("turn did not pass to white")
	}
	if want := ComputeBoardHash(state.Board, state.ToMove); state.Hash != want {
		t.Fatalf("incremental hash out of sync: %x != %x", state.Hash, want)
	}
	if applied, _ := game.TryApplyMove(Move{X: 3, Y: 3, Z: 3}); applied {
		t.Fatalf("occupied cell accepted")
	}
}

func TestGameDetectsWinAndRecordsLine(t *testing.T) {
	game := humanVsHumanGame(8)
	blackMoves := []Move{{X: 1, Y: 1, Z: 1}, {X: 2, Y: 1, Z: 1}, {X: 3, Y: 1, Z: 1}, {X: 4, Y: 1, Z: 1}, {X: 5, Y: 1, Z: 1}}
	whiteMoves := []Move{{X: 0, Y: 7, Z: 0}, {X: 1, Y: 7, Z: 0}, {X: 2, Y: 7, Z: 0}, {X: 3, Y: 7, Z: 0}}
	for i, black := range blackMoves {
		if applied, reason := game.TryApplyMove(black); !applied {
			t.Fatalf("black move %v rejected: %s", black, reason)
		}
		if i < len(whiteMoves) {
			if applied, reason := game.TryApplyMove(whiteMoves[i]); !applied {
				t.Fatalf("white move %v rejected: %s", whiteMoves[i], reason)
			}
		}
	}
	state := game.State()
	if state.Status != StatusBlackWon {
		t.Fatalf("expected black win, got status %v", state.Status)
	}
	if len(state.WinningLine) != 5 {
		t.Fatalf("expected winning line of 5, got %d", len(state.WinningLine))
	}
	if applied, _ := game.TryApplyMove(Move{X: 7, Y: 0, Z: 0}); applied {
		t.Fatalf("moves after the game ended must be rejected")
	}
}

func TestGameTickAppliesPendingHumanMove(t *testing.T) {
	game := humanVsHumanGame(8)
	if !game.SubmitHumanMove(Move{X: 2, Y: 2, Z: 2}) {
		t.Fatalf("submit failed on human turn")
	}
	if !game.Tick(false, nil) {
		t.Fatalf("tick did not apply the pending move")
	}
	state := game.State()
	if state.Board.At(2, 2, 2) != CellBlack {
		t.Fatalf("pending move not on the board")
	}
	if state.ToMove != PlayerWhite {
		t.Fatalf("turn did not advance")
	}
	if game.Tick(false, nil) {
		t.Fatalf("tick without a pending move must do nothing")
	}
}

func TestGameStateCloneIsDeep(t *testing.T) {
	game := humanVsHumanGame(8)
	game.TryApplyMove(Move{X: 0, Y: 0, Z: 0})
	snapshot := game.State()
	game.TryApplyMove(Move{X: 1, Y: 0, Z: 0})
	if snapshot.Board.At(1, 0, 0) != CellEmpty {
		t.Fatalf("snapshot mutated by later moves")
	}
}

func TestGameControllerHumanMoveGuard(t *testing.T) {
	controller := NewGameController(GameSettings{BoardSize: 8, BlackType: PlayerAI, WhiteType: PlayerHuman})
	controller.StartGame(GameSettings{BoardSize: 8, BlackType: PlayerAI, WhiteType: PlayerHuman})
	applied, reason := controller.ApplyHumanMove(Move{X: 0, Y: 0, Z: 0})
	if applied || reason != "not human turn" {
		t.Fatalf("human move on AI turn must be rejected, got (%v, %q)", applied, reason)
	}
}
