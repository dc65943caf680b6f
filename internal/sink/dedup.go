package sink

import (
	farm "github.com/dgryski/go-farm"

	"github.com/btraven00/tubelinks/internal/extractor"
)

// Index is a set of URLs keyed by fingerprint. Colliding fingerprints fall
// back to exact string comparison, so membership is exact.
type Index struct {
	buckets map[uint64][]string
	hash    func(string) uint64
	size    int
}

// NewIndex creates an index sized for about hint URLs.
func NewIndex(hint int) *Index {
	return &Index{
		buckets: make(map[uint64][]string, hint),
		hash:    fingerprint,
	}
}

// Add inserts url and reports whether it was not already present.
func (ix *Index) Add(url string) bool {
	key := ix.hash(url)

	for _, seen := range ix.buckets[key] {
		if seen == url {
			return false
		}
	}

	ix.buckets[key] = append(ix.buckets[key], url)
	ix.size++

	return true
}

// Len returns the number of distinct URLs in the index.
func (ix *Index) Len() int {
	return ix.size
}

func fingerprint(url string) uint64 {
	return farm.Fingerprint64([]byte(url))
}

// Dedup removes records whose URL was already seen, keeping the first
// occurrence and its label. Order is preserved.
func Dedup(records []extractor.Record) []extractor.Record {
	index := NewIndex(len(records))
	unique := make([]extractor.Record, 0, len(records))

	for _, record := range records {
		if index.Add(record.URL) {
			unique = append(unique, record)
		}
	}

	return unique
}
