package reader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// documentExtensions are converted to plain text before scanning.
var documentExtensions = map[string]bool{
	".pdf":   true,
	".doc":   true,
	".docx":  true,
	".odt":   true,
	".rtf":   true,
	".pages": true,
}

// OpenOptions configures how an input file is opened.
type OpenOptions struct {
	// Encoding of the raw text, DefaultEncoding when empty.
	Encoding string
	// Progress receives progress lines while the file is read; nil disables them.
	Progress io.Writer
}

// Source is an opened input yielding decoded UTF-8 text.
type Source struct {
	io.Reader
	progress    *ProgressReader
	Name        string
	Compression string
	closers     []io.Closer
	Size        int64
	Converted   bool
}

// Open opens path for scanning. Gzip and zstd compressed files are detected
// by their magic bytes and document formats by their extension.
// The caller must Close the source.
func Open(path string, options OpenOptions) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file '%s': %w", path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("input path '%s' is a directory", path)
	}

	src := &Source{
		Name: path,
		Size: info.Size(),
	}

	if documentExtensions[strings.ToLower(filepath.Ext(path))] {
		if err := src.openDocument(path, options); err != nil {
			return nil, err
		}

		return src, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file '%s': %w", path, err)
	}

	src.closers = append(src.closers, file)

	var raw io.Reader = file
	if options.Progress != nil {
		src.progress = NewProgressReader(file, info.Size(), filepath.Base(path), options.Progress)
		raw = src.progress
	}

	plain, err := src.decompress(bufio.NewReader(raw))
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	decoded, err := NewDecodingReader(plain, options.Encoding)
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	src.Reader = decoded

	return src, nil
}

// openDocument converts a document to text with docconv.
func (s *Source) openDocument(path string, options OpenOptions) error {
	response, err := docconv.ConvertPath(path)
	if err != nil {
		return fmt.Errorf("failed to convert document '%s': %w", path, err)
	}

	if options.Progress != nil {
		fmt.Fprintf(options.Progress, "📄 Converted %s to %d characters of text\n", filepath.Base(path), len(response.Body))
	}

	s.Converted = true
	s.Reader = transformString(response.Body)

	return nil
}

// decompress inspects the leading bytes of br and unwraps known compression formats.
func (s *Source) decompress(br *bufio.Reader) (io.Reader, error) {
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read input header: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}

		s.Compression = "gzip"
		s.closers = append(s.closers, gz)

		return gz, nil

	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}

		rc := dec.IOReadCloser()
		s.Compression = "zstd"
		s.closers = append(s.closers, rc)

		return rc, nil

	default:
		return br, nil
	}
}

// BytesRead returns the number of raw bytes consumed from disk so far, or -1
// when progress tracking is disabled.
func (s *Source) BytesRead() int64 {
	if s.progress == nil {
		return -1
	}

	return s.progress.Current()
}

// Close finishes progress output and releases all underlying readers.
func (s *Source) Close() error {
	if s.progress != nil {
		s.progress.Finish()
	}

	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.closers = nil

	return errors.Join(errs...)
}

// transformString returns a reader over body with ill-formed UTF-8 removed.
func transformString(body string) io.Reader {
	r, _ := NewDecodingReader(strings.NewReader(body), DefaultEncoding)
	return r
}
