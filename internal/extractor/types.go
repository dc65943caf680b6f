package extractor

import (
	"errors"
	"regexp"
)

// Label is the service name a record is classified under.
type Label string

const (
	LabelYouTube      Label = "YouTube"
	LabelYouTubeMusic Label = "YouTube Music"
)

// Record represents a single link found in the input.
type Record struct {
	Name Label  `json:"name"`
	URL  string `json:"url"`

	// Offset is the absolute character position of the match in the input.
	Offset int64 `json:"-"`
}

// ResultSet is the ordered accumulation of records for one run.
type ResultSet struct {
	Records []Record
}

// Add appends records in scan order.
func (rs *ResultSet) Add(records ...Record) {
	rs.Records = append(rs.Records, records...)
}

// Len returns the number of records collected so far, duplicates included.
func (rs *ResultSet) Len() int {
	return len(rs.Records)
}

// Strategy selects how a matched URL is labeled.
type Strategy int

const (
	// StrategyNone labels every match with the profile's default label.
	StrategyNone Strategy = iota
	// StrategyKeywordLookback searches the text preceding a match for a service keyword.
	StrategyKeywordLookback
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyKeywordLookback:
		return "keyword-lookback"
	default:
		return "unknown"
	}
}

// LookbackMode controls where the lookback window is anchored.
type LookbackMode int

const (
	// LookbackMatchOffset anchors the window at the start of the current match.
	LookbackMatchOffset LookbackMode = iota
	// LookbackFirstOccurrence anchors the window at the first occurrence of the
	// URL string in the chunk, which misattributes context when a URL repeats.
	LookbackFirstOccurrence
)

// DefaultLookback is the lookback window size in characters.
const DefaultLookback = 200

// ErrUnknownProfile is returned by Lookup for unregistered profile names.
var ErrUnknownProfile = errors.New("unknown extraction profile")

// Profile parameterizes the scan: which URLs match and how they are labeled.
type Profile struct {
	Pattern        *regexp.Regexp `json:"-"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	DefaultLabel   Label          `json:"default_label"`
	SubserviceHost string         `json:"subservice_host,omitempty"`
	DefaultOutput  string         `json:"default_output"`
	Examples       []string       `json:"examples"`
	Strategy       Strategy       `json:"-"`
}

// Options configures a Matcher.
type Options struct {
	Lookback     int
	LookbackMode LookbackMode
}

// DefaultOptions returns default matcher options.
func DefaultOptions() Options {
	return Options{
		Lookback:     DefaultLookback,
		LookbackMode: LookbackMatchOffset,
	}
}
