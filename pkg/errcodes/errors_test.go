package errcodes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Corrupt("/library/vol1.cbz", errors.New("bad header"))
	assert.True(t, errors.Is(err, Corrupt("", nil)))
	assert.False(t, errors.Is(err, Io("", nil)))
}

func TestAsAndUnwrap(t *testing.T) {
	cause := errors.New("bad header")
	err := Corrupt("/library/vol1.cbz", cause)

	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, KindCorrupt, te.Kind)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRangeOutOfBounds, KindOf(RangeOutOfBounds("requested 0-9 of 3 pages")))
	assert.Empty(t, KindOf(errors.New("plain")))
	assert.Empty(t, KindOf(nil))
}
