// Package pipeline runs the extraction: it reads every input in chunks,
// classifies the links found in each chunk and writes the deduplicated
// result once at the end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/btraven00/tubelinks/internal/extractor"
	"github.com/btraven00/tubelinks/internal/reader"
	"github.com/btraven00/tubelinks/internal/sink"
)

// Config configures a pipeline run.
type Config struct {
	// Progress receives per-file progress bars; nil disables them.
	Progress io.Writer
	// Log receives status lines; nil discards them.
	Log      io.Writer
	Output   string
	Format   string
	Profile  string
	Encoding string
	Inputs   []string
	// ChunkSize is the number of characters per chunk, reader.DefaultChunkSize when zero.
	ChunkSize int
	// Overlap is the number of characters carried between chunks.
	Overlap  int
	Lookback int
	// LegacyLookback anchors the lookback window at the first occurrence of a URL.
	LegacyLookback bool
	Verbose        bool
}

// Summary reports the outcome of a run.
type Summary struct {
	Output   string
	Format   sink.Format
	Total    int
	Unique   int
	Chunks   int
	Bytes    int64
	Duration time.Duration
	Written  bool
}

// ScanStats describes a single scanned stream.
type ScanStats struct {
	Chunks  int
	Chars   int64
	Records int
}

// Run executes the pipeline. Nothing is written unless every input was read
// successfully; an empty result writes nothing and is not an error.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	start := time.Now()

	if len(cfg.Inputs) == 0 {
		return Summary{}, errors.New("no input files given")
	}

	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = reader.DefaultChunkSize
	}

	if cfg.ChunkSize < 0 {
		return Summary{}, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}

	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return Summary{}, fmt.Errorf("overlap must be in [0, %d), got %d", cfg.ChunkSize, cfg.Overlap)
	}

	if cfg.Profile == "" {
		cfg.Profile = extractor.DefaultProfile
	}

	profile, err := extractor.Lookup(cfg.Profile)
	if err != nil {
		return Summary{}, err
	}

	options := extractor.Options{Lookback: cfg.Lookback, LookbackMode: extractor.LookbackMatchOffset}
	if cfg.LegacyLookback {
		options.LookbackMode = extractor.LookbackFirstOccurrence
	}

	matcher, err := extractor.NewMatcher(profile, options)
	if err != nil {
		return Summary{}, err
	}

	output := cfg.Output
	if output == "" {
		output = profile.DefaultOutput
	}

	snk, err := sink.New(output, cfg.Format)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Output: snk.Path(),
		Format: snk.Format(),
	}

	rs := &extractor.ResultSet{}

	for i, input := range cfg.Inputs {
		announce := ""
		if i == 0 {
			announce = summary.Output
		}

		stats, size, err := scanFile(ctx, input, announce, matcher, rs, cfg)
		if err != nil {
			return summary, err
		}

		summary.Chunks += stats.Chunks
		summary.Bytes += size
	}

	result, err := snk.Finalize(ctx, rs)
	if err != nil {
		return summary, err
	}

	summary.Total = rs.Len()
	summary.Unique = result.Unique
	summary.Written = result.Written
	summary.Duration = time.Since(start)

	return summary, nil
}

// scanFile scans one input. A non-empty output is announced after the input.
func scanFile(ctx context.Context, path, output string, matcher *extractor.Matcher, rs *extractor.ResultSet, cfg Config) (ScanStats, int64, error) {
	logf(cfg.Log, "Reading HTML file from: %s\n", path)

	if output != "" {
		logf(cfg.Log, "Results will be saved to: %s\n", output)
	}

	src, err := reader.Open(path, reader.OpenOptions{
		Encoding: cfg.Encoding,
		Progress: cfg.Progress,
	})
	if err != nil {
		return ScanStats{}, 0, err
	}
	defer src.Close()

	if cfg.Verbose {
		kind := "plain text"
		switch {
		case src.Converted:
			kind = "converted document"
		case src.Compression != "":
			kind = src.Compression + " compressed"
		}

		logf(cfg.Log, "📂 %s (%s, %s)\n", path, humanize.Bytes(uint64(src.Size)), kind)
	}

	var onChunk func(reader.Chunk, int)
	if cfg.Verbose {
		onChunk = func(chunk reader.Chunk, found int) {
			logf(cfg.Log, "   chunk %d at character %s: %d links\n", chunk.Index, humanize.Comma(chunk.Offset), found)
		}
	}

	stats, err := scan(ctx, src, matcher, cfg.ChunkSize, cfg.Overlap, rs, onChunk)
	if err != nil {
		return stats, src.Size, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	return stats, src.Size, nil
}

// Scan reads r in chunks of size characters and appends the records found to rs.
// With overlap > 0 the last overlap characters of each chunk are scanned again
// as the prefix of the next one, so links shorter than overlap that straddle a
// chunk boundary are found whole.
func Scan(ctx context.Context, r io.Reader, matcher *extractor.Matcher, size, overlap int, rs *extractor.ResultSet) (ScanStats, error) {
	return scan(ctx, r, matcher, size, overlap, rs, nil)
}

func scan(ctx context.Context, r io.Reader, matcher *extractor.Matcher, size, overlap int, rs *extractor.ResultSet, onChunk func(reader.Chunk, int)) (ScanStats, error) {
	var stats ScanStats

	initial := rs.Len()

	chunker, err := reader.NewChunker(r, size, overlap)
	if err != nil {
		return stats, err
	}

	// A match touching the end of a chunk may continue in the next one.
	// It is held back until the next chunk shows whether it is found whole.
	var pending *heldMatch

	for {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("extraction cancelled: %w", err)
		}

		chunk, err := chunker.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return stats, err
		}

		stats.Chunks++
		stats.Chars += int64(utf8.RuneCountInString(chunk.Text) - chunk.Carry)

		matches := matcher.FindMatches(chunk.Text)
		before := rs.Len()

		var carried *heldMatch
		if pending != nil {
			if refound(matches, chunk, pending.record.Offset) {
				carried = pending
			} else {
				rs.Add(pending.record)
			}

			pending = nil
		}

		for _, match := range matches {
			// Already reported from the previous chunk.
			if match.End < chunk.CarryBytes {
				continue
			}

			record := match.Record(chunk.Offset)

			// The held window starts before the carried text, so it labels the whole link.
			if carried != nil && record.Offset == carried.record.Offset {
				match.Window = carried.window
				record.Name = matcher.Classify(match.URL, match.Window)
			}

			if overlap > 0 && match.End == len(chunk.Text) {
				pending = &heldMatch{record: record, window: match.Window}
				continue
			}

			rs.Add(record)
		}

		if onChunk != nil {
			onChunk(chunk, rs.Len()-before)
		}
	}

	if pending != nil {
		rs.Add(pending.record)
	}

	stats.Records = rs.Len() - initial

	return stats, nil
}

// heldMatch is a record whose link may continue in the next chunk, with the
// lookback window it was labeled from.
type heldMatch struct {
	record extractor.Record
	window string
}

// refound reports whether a match in chunk starts at the absolute offset.
func refound(matches []extractor.Match, chunk reader.Chunk, offset int64) bool {
	for _, match := range matches {
		if chunk.Offset+int64(match.Pos) == offset {
			return true
		}
	}

	return false
}

func logf(w io.Writer, format string, args ...any) {
	if w != nil {
		fmt.Fprintf(w, format, args...)
	}
}
