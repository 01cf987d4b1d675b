package xlsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	pos, err := ParsePosition("A1")
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 0, Col: 0}, pos)

	pos, err = ParsePosition("B7")
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 6, Col: 1}, pos)

	pos, err = ParsePosition("AA10")
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 9, Col: 26}, pos)

	// Lowercase and absolute markers are accepted
	pos, err = ParsePosition("$c$3")
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 2, Col: 2}, pos)
}

func TestParsePositionErrors(t *testing.T) {
	for _, bad := range []string{"", "A", "7", "A0", "1A", "A-1", "A1B"} {
		_, err := ParsePosition(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParsePositionBounds(t *testing.T) {
	// Last valid cell of the grid
	pos, err := ParsePosition("XFD16384")
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 16383, Col: 16383}, pos)
	assert.True(t, pos.IsValid())

	_, err = ParsePosition("XFD16385")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = ParsePosition("XFE1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "A1", Position{Row: 0, Col: 0}.String())
	assert.Equal(t, "B7", Position{Row: 6, Col: 1}.String())
	assert.Equal(t, "AA10", Position{Row: 9, Col: 26}.String())
	assert.Equal(t, "XFD16384", Position{Row: 16383, Col: 16383}.String())
	assert.Equal(t, "(-1, 0)", Position{Row: -1, Col: 0}.String())
}

func TestPositionRoundTrip(t *testing.T) {
	for _, name := range []string{"A1", "Z99", "AA1", "AZ52", "BA1", "XFD16384"} {
		pos, err := ParsePosition(name)
		require.NoError(t, err)
		assert.Equal(t, name, pos.String())
	}
}

func TestColNameConversion(t *testing.T) {
	assert.Equal(t, "A", ColToName(0))
	assert.Equal(t, "Z", ColToName(25))
	assert.Equal(t, "AA", ColToName(26))
	assert.Equal(t, "AZ", ColToName(51))
	assert.Equal(t, "BA", ColToName(52))

	col, err := NameToCol("A")
	require.NoError(t, err)
	assert.Equal(t, 0, col)

	col, err = NameToCol("AA")
	require.NoError(t, err)
	assert.Equal(t, 26, col)

	_, err = NameToCol("")
	assert.Error(t, err)
	_, err = NameToCol("A1")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	assert.True(t, Position{Row: 0, Col: 0}.IsValid())
	assert.True(t, Position{Row: MaxRows - 1, Col: MaxCols - 1}.IsValid())
	assert.False(t, Position{Row: -1, Col: 0}.IsValid())
	assert.False(t, Position{Row: 0, Col: -1}.IsValid())
	assert.False(t, Position{Row: MaxRows, Col: 0}.IsValid())
	assert.False(t, Position{Row: 0, Col: MaxCols}.IsValid())
}
