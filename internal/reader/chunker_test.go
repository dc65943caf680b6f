package reader

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectChunks(t *testing.T, input string, size, overlap int) []Chunk {
	t.Helper()

	c, err := NewChunker(strings.NewReader(input), size, overlap)
	require.NoError(t, err)

	var chunks []Chunk

	for {
		chunk, err := c.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		chunks = append(chunks, chunk)
	}

	// EOF is sticky.
	_, err = c.Next()
	assert.ErrorIs(t, err, io.EOF)

	return chunks
}

func texts(chunks []Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Text)
	}

	return out
}

func TestChunkerWithoutOverlap(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		size     int
		expected []string
	}{
		{
			name:     "partial last chunk",
			input:    "abcdefghij",
			size:     4,
			expected: []string{"abcd", "efgh", "ij"},
		},
		{
			name:     "exact multiple",
			input:    "abcdefgh",
			size:     4,
			expected: []string{"abcd", "efgh"},
		},
		{
			name:     "single chunk",
			input:    "abc",
			size:     10,
			expected: []string{"abc"},
		},
		{
			name:     "empty input",
			input:    "",
			size:     4,
			expected: []string{},
		},
		{
			name:     "size counts characters",
			input:    "ééééé",
			size:     2,
			expected: []string{"éé", "éé", "é"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := collectChunks(t, tt.input, tt.size, 0)
			assert.Equal(t, tt.expected, texts(chunks))

			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				assert.Equal(t, int64(i*tt.size), c.Offset)
				assert.Zero(t, c.Carry)
				assert.Zero(t, c.CarryBytes)
			}
		})
	}
}

func TestChunkerOverlap(t *testing.T) {
	chunks := collectChunks(t, "abcdefghij", 4, 2)
	require.Len(t, chunks, 3)

	assert.Equal(t, []string{"abcd", "cdefgh", "ghij"}, texts(chunks))

	assert.Equal(t, int64(0), chunks[0].Offset)
	assert.Equal(t, 0, chunks[0].Carry)

	assert.Equal(t, int64(2), chunks[1].Offset)
	assert.Equal(t, 2, chunks[1].Carry)
	assert.Equal(t, 2, chunks[1].CarryBytes)

	assert.Equal(t, int64(6), chunks[2].Offset)
	assert.Equal(t, 2, chunks[2].Carry)
}

func TestChunkerOverlapMultibyte(t *testing.T) {
	chunks := collectChunks(t, "abécdüx", 3, 1)
	require.Len(t, chunks, 3)

	assert.Equal(t, []string{"abé", "écdü", "üx"}, texts(chunks))
	assert.Equal(t, 1, chunks[1].Carry)
	assert.Equal(t, 2, chunks[1].CarryBytes)
	assert.Equal(t, int64(2), chunks[1].Offset)
	assert.Equal(t, int64(5), chunks[2].Offset)
}

func TestNewChunkerValidation(t *testing.T) {
	_, err := NewChunker(strings.NewReader(""), 0, 0)
	assert.Error(t, err)

	_, err = NewChunker(strings.NewReader(""), 4, -1)
	assert.Error(t, err)

	_, err = NewChunker(strings.NewReader(""), 4, 4)
	assert.Error(t, err)

	_, err = NewChunker(strings.NewReader(""), 4, 3)
	assert.NoError(t, err)
}

func TestChunkerReadError(t *testing.T) {
	boom := errors.New("disk on fire")

	c, err := NewChunker(io.MultiReader(strings.NewReader("ab"), errReader{boom}), 10, 0)
	require.NoError(t, err)

	_, err = c.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestLastRunes(t *testing.T) {
	s, n := lastRunes("abcé", 2)
	assert.Equal(t, "cé", s)
	assert.Equal(t, 2, n)

	s, n = lastRunes("ab", 5)
	assert.Equal(t, "ab", s)
	assert.Equal(t, 2, n)
}
