package main

// Direction is one of the 26 unit vectors of the cubic lattice.
type Direction struct {
	Dx int
	Dy int
	Dz int
}

const (
	weightMainAxis      = 1.0
	weightFaceDiagonal  = 0.8
	weightSpaceDiagonal = 1.2
)

// allDirections holds every (dx,dy,dz) in {-1,0,1}^3 except the zero vector.
var allDirections = buildDirections()

// uniqueAxes keeps one representative per direction/opposite pair, so a
// line is visited once instead of twice.
var uniqueAxes = buildUniqueAxes()

func buildDirections() []Direction {
	dirs := make([]Direction, 0, 26)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				dirs = append(dirs, Direction{Dx: dx, Dy: dy, Dz: dz})
			}
		}
	}
	return dirs
}

func buildUniqueAxes() []Direction {
	axes := make([]Direction, 0, 13)
	for _, d := range allDirections {
		if d.Dx > 0 || (d.Dx == 0 && d.Dy > 0) || (d.Dx == 0 && d.Dy == 0 && d.Dz > 0) {
			axes = append(axes, d)
		}
	}
	return axes
}

func (d Direction) Opposite() Direction {
	return Direction{Dx: -d.Dx, Dy: -d.Dy, Dz: -d.Dz}
}

// Weight classes: main axis 1.0, face diagonal 0.8, space diagonal 1.2.
func (d Direction) Weight() float64 {
	nonzero := 0
	if d.Dx != 0 {
		nonzero++
	}
	if d.Dy != 0 {
		nonzero++
	}
	if d.Dz != 0 {
		nonzero++
	}
	switch nonzero {
	case 1:
		return weightMainAxis
	case 2:
		return weightFaceDiagonal
	default:
		return weightSpaceDiagonal
	}
}
