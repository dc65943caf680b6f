package reader

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ProgressReader wraps an io.Reader to report read progress.
type ProgressReader struct {
	start      time.Time
	lastUpdate time.Time
	reader     io.Reader
	out        io.Writer
	name       string
	total      int64
	current    int64
	updateFreq time.Duration
	finished   bool
}

// NewProgressReader creates a progress reporter writing to out. total is the
// expected number of bytes; zero or less disables the percentage display.
func NewProgressReader(reader io.Reader, total int64, name string, out io.Writer) *ProgressReader {
	now := time.Now()

	return &ProgressReader{
		reader:     reader,
		out:        out,
		name:       name,
		total:      total,
		start:      now,
		lastUpdate: now,
		updateFreq: 500 * time.Millisecond,
	}
}

// Read implements io.Reader with progress tracking.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)

	if time.Since(pr.lastUpdate) >= pr.updateFreq {
		pr.render()
		pr.lastUpdate = time.Now()
	}

	return n, err
}

// Current returns the number of bytes read so far.
func (pr *ProgressReader) Current() int64 {
	return pr.current
}

// Finish prints the final progress line. Calling it more than once is a no-op.
func (pr *ProgressReader) Finish() {
	if pr.finished {
		return
	}

	pr.finished = true
	pr.render()
	fmt.Fprintln(pr.out)
}

// render overwrites the current terminal line with the progress state.
func (pr *ProgressReader) render() {
	displayName := pr.name
	if len(displayName) > 25 {
		displayName = displayName[:22] + "..."
	}

	speed := ""
	if elapsed := time.Since(pr.start).Seconds(); elapsed > 0 {
		speed = humanize.Bytes(uint64(float64(pr.current)/elapsed)) + "/s"
	}

	if pr.total <= 0 {
		fmt.Fprintf(pr.out, "\r📖 %-25s %s %s\033[K", displayName, humanize.Bytes(uint64(pr.current)), speed)
		return
	}

	percentage := float64(pr.current) / float64(pr.total) * 100
	if percentage > 100 {
		percentage = 100
	}

	const barWidth = 30

	filled := int(percentage / 100 * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(pr.out, "\r📖 %-25s [%s] %6.1f%% %s/%s %s\033[K",
		displayName,
		bar,
		percentage,
		humanize.Bytes(uint64(pr.current)),
		humanize.Bytes(uint64(pr.total)),
		speed,
	)
}
