package sink

import (
	"bufio"
	"io"
	"strings"

	"github.com/btraven00/tubelinks/internal/extractor"
)

var csvHeader = []string{"name", "url"}

// CSVEncoder writes comma-separated rows with every field quoted, including
// the header, and "\n" line endings. encoding/csv only quotes when needed.
type CSVEncoder struct{}

// Encode writes the header followed by one row per record.
func (CSVEncoder) Encode(w io.Writer, records []extractor.Record) error {
	bw := bufio.NewWriter(w)

	writeCSVRow(bw, csvHeader...)

	for _, record := range records {
		writeCSVRow(bw, string(record.Name), record.URL)
	}

	return bw.Flush()
}

// writeCSVRow buffers a quoted row; errors surface on Flush.
func writeCSVRow(w *bufio.Writer, fields ...string) {
	for i, field := range fields {
		if i > 0 {
			w.WriteByte(',')
		}

		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}

	w.WriteByte('\n')
}
