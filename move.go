package main

type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func NewMove(x, y, z int) Move {
	return Move{X: x, Y: y, Z: z}
}

func (m Move) IsValid(boardSize int) bool {
	return m.X >= 0 && m.Y >= 0 && m.Z >= 0 && m.X < boardSize && m.Y < boardSize && m.Z < boardSize
}

func (m Move) Equals(other Move) bool {
	return m.X == other.X && m.Y == other.Y && m.Z == other.Z
}

// ChebyshevDistance is the number of king-steps between two cells.
func (m Move) ChebyshevDistance(other Move) int {
	dx := absInt(m.X - other.X)
	dy := absInt(m.Y - other.Y)
	dz := absInt(m.Z - other.Z)
	max := dx
	if dy > max {
		max = dy
	}
	if dz > max {
		max = dz
	}
	return max
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
