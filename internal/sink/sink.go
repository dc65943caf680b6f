// Package sink deduplicates extracted records and persists them to a file.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/btraven00/tubelinks/internal/extractor"
)

// Format names an output file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// ErrUnknownFormat is returned for unsupported output format names.
var ErrUnknownFormat = errors.New("unknown output format")

// Encoder serializes records to a stream.
type Encoder interface {
	Encode(w io.Writer, records []extractor.Record) error
}

// Result describes what Finalize did.
type Result struct {
	Path    string
	Format  Format
	Total   int
	Unique  int
	Written bool
}

// Sink writes the deduplicated result set of a run to a single file.
type Sink struct {
	path   string
	format Format
}

// ResolveFormat returns the format named by name, or the one implied by the
// extension of path when name is empty. Unknown extensions default to CSV.
func ResolveFormat(name, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: csv, json, sqlite)", ErrUnknownFormat, name)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return FormatCSV, nil
	}
}

// New creates a sink writing to path. format may be empty to infer it from
// the file extension.
func New(path, format string) (*Sink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("output path is required")
	}

	f, err := ResolveFormat(format, path)
	if err != nil {
		return nil, err
	}

	return &Sink{path: path, format: f}, nil
}

// Path returns the output path.
func (s *Sink) Path() string {
	return s.path
}

// Format returns the resolved output format.
func (s *Sink) Format() Format {
	return s.format
}

// Finalize deduplicates the result set and writes it. An empty result set is
// not an error and leaves the filesystem untouched.
func (s *Sink) Finalize(ctx context.Context, rs *extractor.ResultSet) (Result, error) {
	result := Result{
		Path:   s.path,
		Format: s.format,
	}

	if rs == nil || rs.Len() == 0 {
		return result, nil
	}

	unique := Dedup(rs.Records)
	result.Total = rs.Len()
	result.Unique = len(unique)

	if err := s.write(ctx, unique); err != nil {
		return result, err
	}

	result.Written = true

	return result, nil
}

// write replaces the output file atomically: records go to a temporary file
// in the same directory which is then renamed over the target.
func (s *Sink) write(ctx context.Context, records []extractor.Record) (err error) {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file in %s: %w", dir, err)
	}

	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	switch s.format {
	case FormatSQLite:
		if err = tmp.Close(); err != nil {
			return fmt.Errorf("failed to prepare database file: %w", err)
		}

		if err = writeSQLite(ctx, tmpPath, records); err != nil {
			return err
		}
	default:
		if err = encoderFor(s.format).Encode(tmp, records); err != nil {
			return fmt.Errorf("failed to write %s output: %w", s.format, err)
		}

		if err = tmp.Sync(); err != nil {
			return fmt.Errorf("failed to sync output file: %w", err)
		}

		if err = tmp.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
	}

	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}

	if err = os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to save output to %s: %w", s.path, err)
	}

	return nil
}

func encoderFor(format Format) Encoder {
	if format == FormatJSON {
		return JSONEncoder{}
	}

	return CSVEncoder{}
}
