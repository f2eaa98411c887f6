package tcp_client

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramerCarriesPartialLines(t *testing.T) {
	f := newLineFramer(MaxLineLength)

	lines, err := f.Feed([]byte("MSG FROM Bob IS hel"))
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 19, f.Pending())

	lines, err = f.Feed([]byte("lo\r\nBYE\r\nREP"))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "MSG FROM Bob IS hello\r", string(lines[0]))
	assert.Equal(t, "BYE\r", string(lines[1]))
	assert.Equal(t, 3, f.Pending())
}

func TestFramerLinesAreIndependentCopies(t *testing.T) {
	f := newLineFramer(MaxLineLength)

	lines, err := f.Feed([]byte("A\nB\n"))
	require.NoError(t, err)
	_, err = f.Feed([]byte("CCCCCCCC\n"))
	require.NoError(t, err)

	assert.Equal(t, "A", string(lines[0]))
	assert.Equal(t, "B", string(lines[1]))
}

func TestFramerRejectsOverlongLine(t *testing.T) {
	f := newLineFramer(16)

	_, err := f.Feed([]byte(strings.Repeat("x", 17)))
	assert.True(t, errors.Is(err, ErrLineTooLong))
	assert.Equal(t, 0, f.Pending())
}
