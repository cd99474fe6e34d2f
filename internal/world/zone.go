package world

// Zone is one rectangular clearing of the overworld. Zone index doubles as
// the location id: higher-indexed zones are deeper in and more dangerous.
type Zone struct {
	X, Y          int // Top-left corner position
	Width, Height int
}

// Center returns the center coordinates of the zone.
func (z Zone) Center() (int, int) {
	return z.X + z.Width/2, z.Y + z.Height/2
}

// Contains returns true if the given point is inside the zone.
func (z Zone) Contains(x, y int) bool {
	return x >= z.X && x < z.X+z.Width && y >= z.Y && y < z.Y+z.Height
}
