package icon

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is one of the eight compass facings a state can hold frames
// for, numbered the way the icon format numbers them.
type Direction int

const (
	South Direction = iota
	North
	East
	West
	SouthEast
	SouthWest
	NorthEast
	NorthWest

	numDirections
)

var directionNames = [numDirections]string{
	"south",
	"north",
	"east",
	"west",
	"southeast",
	"southwest",
	"northeast",
	"northwest",
}

// DirectionOf maps a direction ordinal to its Direction. Anything
// outside 0 through 7 maps to South.
func DirectionOf(i int) Direction {
	if i < 0 || i >= int(numDirections) {
		return South
	}
	return Direction(i)
}

func (d Direction) String() string {
	return directionNames[DirectionOf(int(d))]
}

// ParseDirection maps a compass name or a bare ordinal to its Direction.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < int(numDirections) {
		return Direction(n), nil
	}
	return South, fmt.Errorf("icon: unknown direction %q", s)
}
