package main

const killerSlots = 2

// KillerMoveTable remembers, per ply, the last moves that caused a
// cutoff. It belongs to a single search invocation: construct it fresh
// (or Clear it) before every top-level call, never share it across
// searches.
type KillerMoveTable struct {
	slots [][]Move
}

func NewKillerMoveTable(maxPly int) *KillerMoveTable {
	if maxPly < 1 {
		maxPly = 1
	}
	return &KillerMoveTable{slots: make([][]Move, maxPly)}
}

func (k *KillerMoveTable) Clear() {
	for i := range k.slots {
		k.slots[i] = k.slots[i][:0]
	}
}

func (k *KillerMoveTable) Record(ply int, move Move) {
	if ply < 0 || ply >= len(k.slots) {
		return
	}
	for _, existing := range k.slots[ply] {
		if existing.Equals(move) {
			return
		}
	}
	slot := k.slots[ply]
	slot = append(slot, Move{})
	copy(slot[1:], slot)
	slot[0] = move
	if len(slot) > killerSlots {
		slot = slot[:killerSlots]
	}
	k.slots[ply] = slot
}

func (k *KillerMoveTable) At(ply int) []Move {
	if ply < 0 || ply >= len(k.slots) {
		return nil
	}
	return k.slots[ply]
}

// Reorder moves matching this ply's killers to the front of moves,
// keeping the relative order of everything else.
func (k *KillerMoveTable) Reorder(ply int, moves []Move) []Move {
	killers := k.At(ply)
	if len(killers) == 0 || len(moves) == 0 {
		return moves
	}
	front := make([]Move, 0, killerSlots)
	rest := make([]Move, 0, len(moves))
	for _, move := range moves {
		matched := false
		for _, killer := range killers {
			if move.Equals(killer) {
				matched = true
				break
			}
		}
		if matched {
			front = append(front, move)
		} else {
			rest = append(rest, move)
		}
	}
	if len(front) == 0 {
		return moves
	}
	return append(front, rest...)
}
