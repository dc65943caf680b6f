package sink

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/btraven00/tubelinks/internal/extractor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONEncoder writes records as an indented JSON array of {"name","url"} objects.
type JSONEncoder struct{}

// Encode writes the array followed by a newline.
func (JSONEncoder) Encode(w io.Writer, records []extractor.Record) error {
	if records == nil {
		records = []extractor.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(records)
}
