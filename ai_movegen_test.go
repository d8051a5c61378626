package main

import "testing"

func TestOrderedMovesPutCriticalBlockFirst(t *testing.T) {
	board := NewBoard(8)
	rules := NewRules(8)
	placeRun(&board, Move{X: 2, Y: 4, Z: 4}, Direction{1, 0, 0}, 4, CellWhite)
	board.Set(0, 0, 0, CellBlack)
	board.Set(7, 7, 7, CellBlack)

	moves := GenerateOrderedMoves(rules, board, PlayerBlack, 10)
	if len(moves) == 0 {
		t.Fatalf("no moves generated")
	}
	capLeft := Move{X: 1, Y: 4, Z: 4}
	capRight := Move{X: 6, Y: 4, Z: 4}
	if !moves[0].Equals(capLeft) && !moves[0].Equals(capRight) {
		t.Fatalf("first ordered move %v does not cap the open four", moves[0])
	}
}

func TestGenerateOrderedMovesRespectsCap(t *testing.T) {
	board := NewBoard(8)
	rules := NewRules(8)
	board.Set(3, 3, 3, CellBlack)
	moves := GenerateOrderedMoves(rules, board, PlayerWhite, 15)
	if len(moves) != 15 {
		t.Fatalf("expected 15 moves, got %d", len(moves))
	}
}

func TestGenerateLocalMovesRadius(t *testing.T) {
	board := NewBoard(8)
	rules := NewRules(8)
	board.Set(3, 3, 3, CellBlack)

	radiusOne := GenerateLocalMoves(rules, board, PlayerWhite, 1)
	if len(radiusOne) != 26 {
		t.Fatalf("radius 1 around one stone must yield 26 moves, got %d", len(radiusOne))
	}
	radiusTwo := GenerateLocalMoves(rules, board, PlayerWhite, 2)
	if len(radiusTwo) != 124 {
		t.Fatalf("radius 2 around one stone must yield 124 moves, got %d", len(radiusTwo))
	}
}

func TestGenerateLocalMovesDeduplicates(t *testing.T) {
	board := NewBoard(8)
	rules := NewRules(8)
	board.Set(3, 3, 3, CellBlack)
	board.Set(4, 3, 3, CellWhite)

	moves := GenerateLocalMoves(rules, board, PlayerBlack, 1)
	seen := make(map[Move]bool, len(moves))
	for _, move := range moves {
		if seen[move] {
			t.Fatalf("duplicate move %v", move)
		}
		seen[move] = true
	}
}

func TestCriticalBlockingScoreTiers(t *testing.T) {
	board := NewBoard(8)
	placeRun(&board, Move{X: 2, Y: 4, Z: 4}, Direction{1, 0, 0}, 3, CellWhite)
	capCell := Move{X: 1, Y: 4, Z: 4}
	if got := criticalBlockingScore(board, capCell, PlayerBlack); got != blockRunThreeScore {
		t.Fatalf("capping a run of three scored %d, want %d", got, blockRunThreeScore)
	}
	board.Set(5, 4, 4, CellWhite)
	if got := criticalBlockingScore(board, capCell, PlayerBlack); got != blockRunFourScore {
		t.Fatalf("capping a run of four scored %d, want %d", got, blockRunFourScore)
	}
}

func TestGenerateAllMovesMatchesLegalMoves(t *testing.T) {
	board := NewBoard(4)
	rules := NewRules(4)
	board.Set(0, 0, 0, CellBlack)
	all := GenerateAllMoves(rules, board, PlayerWhite)
	if len(all) != 63 {
		t.Fatalf("expected 63 moves, got %d", len(all))
	}
}
