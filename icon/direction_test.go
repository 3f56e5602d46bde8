package icon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionOfRoundTrip(t *testing.T) {
	for i := 0; i < int(numDirections); i++ {
		assert.Equal(t, i, int(DirectionOf(i)))
	}
}

func TestDirectionOfOutOfRange(t *testing.T) {
	assert.Equal(t, South, DirectionOf(-1))
	assert.Equal(t, South, DirectionOf(8))
	assert.Equal(t, South, DirectionOf(1000))
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "south", South.String())
	assert.Equal(t, "west", West.String())
	assert.Equal(t, "northwest", NorthWest.String())
	assert.Equal(t, "south", Direction(77).String())
}

func TestParseDirection(t *testing.T) {
	for i, name := range directionNames {
		d, err := ParseDirection(name)
		require.NoError(t, err)
		assert.Equal(t, Direction(i), d)
	}

	d, err := ParseDirection("NorthEast")
	require.NoError(t, err)
	assert.Equal(t, NorthEast, d)

	d, err = ParseDirection("3")
	require.NoError(t, err)
	assert.Equal(t, West, d)

	_, err = ParseDirection("up")
	assert.Error(t, err)
	_, err = ParseDirection("8")
	assert.Error(t, err)
}
