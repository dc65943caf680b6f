// Package reader streams large text exports as bounded-size chunks of decoded
// characters, transparently handling compressed and document inputs.
package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the number of characters read per chunk (10 Mi).
const DefaultChunkSize = 10 * 1024 * 1024

// Chunk is a block of decoded text read from the input.
type Chunk struct {
	Text string
	// Index is the zero-based sequence number of the chunk.
	Index int
	// Offset is the absolute character offset of Text[0] in the input.
	Offset int64
	// Carry is the number of leading characters repeated from the previous chunk.
	Carry int
	// CarryBytes is the byte length of the carried prefix.
	CarryBytes int
}

// Chunker splits a decoded character stream into chunks. It is not restartable.
type Chunker struct {
	r         *bufio.Reader
	tail      string
	offset    int64
	size      int
	overlap   int
	index     int
	tailRunes int
	done      bool
}

// NewChunker creates a chunker reading size characters per chunk, carrying
// the last overlap characters of each chunk into the next one.
// r must yield valid UTF-8, see NewDecodingReader.
func NewChunker(r io.Reader, size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}

	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", size, overlap)
	}

	return &Chunker{
		r:       bufio.NewReaderSize(r, 64*1024),
		size:    size,
		overlap: overlap,
	}, nil
}

// Next returns the next chunk, or io.EOF once a read returns no data.
func (c *Chunker) Next() (Chunk, error) {
	if c.done {
		return Chunk{}, io.EOF
	}

	var b strings.Builder

	b.Grow(len(c.tail) + min(c.size, 1<<20))
	b.WriteString(c.tail)

	n := 0
	for n < c.size {
		r, _, err := c.r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.done = true
				break
			}

			return Chunk{}, fmt.Errorf("failed to read chunk %d: %w", c.index, err)
		}

		b.WriteRune(r)
		n++
	}

	if n == 0 {
		c.done = true
		return Chunk{}, io.EOF
	}

	text := b.String()
	chunk := Chunk{
		Text:       text,
		Index:      c.index,
		Offset:     c.offset - int64(c.tailRunes),
		Carry:      c.tailRunes,
		CarryBytes: len(c.tail),
	}

	c.index++
	c.offset += int64(n)

	if c.overlap > 0 {
		c.tail, c.tailRunes = lastRunes(text, c.overlap)
	}

	return chunk, nil
}

// lastRunes returns the suffix of s holding at most n characters and its length in characters.
func lastRunes(s string, n int) (string, int) {
	start, count := len(s), 0
	for count < n && start > 0 {
		_, size := utf8.DecodeLastRuneInString(s[:start])
		start -= size
		count++
	}

	return s[start:], count
}
