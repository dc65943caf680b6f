package reader

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, r io.Reader, encoding string) string {
	t.Helper()

	dr, err := NewDecodingReader(r, encoding)
	require.NoError(t, err)

	out, err := io.ReadAll(dr)
	require.NoError(t, err)

	return string(out)
}

func TestDecodingReaderDropsInvalidBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid text passes through",
			input:    "Watched https://youtu.be/abc",
			expected: "Watched https://youtu.be/abc",
		},
		{
			name:     "stray continuation byte",
			input:    "abc\xffdef",
			expected: "abcdef",
		},
		{
			name:     "invalid byte inside a url",
			input:    "https://youtu.be/a\xc0b",
			expected: "https://youtu.be/ab",
		},
		{
			name:     "truncated sequence at end of input",
			input:    "caf\xc3",
			expected: "caf",
		},
		{
			name:     "literal replacement character is kept",
			input:    "x�y",
			expected: "x�y",
		},
		{
			name:     "multibyte characters",
			input:    "日本語 é ü",
			expected: "日本語 é ü",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeAll(t, strings.NewReader(tt.input), ""))
		})
	}
}

func TestDecodingReaderSplitRunes(t *testing.T) {
	// One byte per read forces every multibyte rune to straddle reads.
	input := "é日本\xffü"
	got := decodeAll(t, iotest.OneByteReader(strings.NewReader(input)), DefaultEncoding)
	assert.Equal(t, "é日本ü", got)
}

func TestDecodingReaderNormalizesNewlines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "crlf", input: "a\r\nb\r\n", expected: "a\nb\n"},
		{name: "lone cr", input: "a\rb\r", expected: "a\nb\n"},
		{name: "cr before crlf", input: "a\r\r\nb", expected: "a\n\nb"},
		{name: "lf untouched", input: "a\n\nb", expected: "a\n\nb"},
		{name: "after dropped byte", input: "a\r\xff\nb", expected: "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeAll(t, strings.NewReader(tt.input), ""))
			assert.Equal(t, tt.expected, decodeAll(t, iotest.OneByteReader(strings.NewReader(tt.input)), ""))
		})
	}

	assert.Equal(t, "café\n", decodeAll(t, strings.NewReader("caf\xe9\r\n"), "windows-1252"))
}

func TestDecodingReaderEncodings(t *testing.T) {
	assert.Equal(t, "café", decodeAll(t, strings.NewReader("caf\xe9"), "iso-8859-1"))
	assert.Equal(t, "café", decodeAll(t, strings.NewReader("caf\xe9"), "Windows-1252"))
	assert.Equal(t, "plain", decodeAll(t, strings.NewReader("plain"), "UTF8"))

	_, err := NewDecodingReader(strings.NewReader(""), "klingon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
	assert.Contains(t, err.Error(), "klingon")
}
