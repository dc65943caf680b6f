package extractor

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Matcher finds profile URLs in text and labels them.
type Matcher struct {
	profile *Profile
	options Options
}

// Match is a single pattern match within a chunk of text.
type Match struct {
	URL    string
	Window string
	Label  Label
	// Start and End are byte offsets into the scanned text.
	Start int
	End   int
	// Pos is the character offset of Start within the scanned text.
	Pos int
}

// NewMatcher creates a matcher for the given profile.
func NewMatcher(profile *Profile, options Options) (*Matcher, error) {
	if profile == nil || profile.Pattern == nil {
		return nil, errors.New("extractor: profile with a pattern is required")
	}

	if options.Lookback <= 0 {
		options.Lookback = DefaultLookback
	}

	return &Matcher{
		profile: profile,
		options: options,
	}, nil
}

// Profile returns the profile the matcher scans for.
func (m *Matcher) Profile() *Profile {
	return m.profile
}

// FindMatches returns every match in text in order of appearance, each with
// its lookback window and label.
func (m *Matcher) FindMatches(text string) []Match {
	locs := m.profile.Pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(locs))

	// Character positions are counted incrementally between matches.
	pos, last := 0, 0

	for _, loc := range locs {
		start, end := loc[0], loc[1]
		pos += utf8.RuneCountInString(text[last:start])
		last = start

		url := text[start:end]

		window := ""
		if m.profile.Strategy == StrategyKeywordLookback {
			window = lookbackWindow(text, m.anchor(text, url, start), m.options.Lookback)
		}

		matches = append(matches, Match{
			URL:    url,
			Window: window,
			Label:  m.Classify(url, window),
			Start:  start,
			End:    end,
			Pos:    pos,
		})
	}

	return matches
}

// Extract scans text and returns its records. base is the absolute character
// offset of text[0] in the input.
func (m *Matcher) Extract(text string, base int64) []Record {
	matches := m.FindMatches(text)
	if len(matches) == 0 {
		return nil
	}

	records := make([]Record, 0, len(matches))
	for _, match := range matches {
		records = append(records, match.Record(base))
	}

	return records
}

// Record converts a match into a record. base is the absolute character
// offset of the scanned text.
func (match Match) Record(base int64) Record {
	return Record{
		Name:   match.Label,
		URL:    match.URL,
		Offset: base + int64(match.Pos),
	}
}

// anchor returns the byte offset the lookback window ends at.
func (m *Matcher) anchor(text, url string, start int) int {
	if m.options.LookbackMode == LookbackFirstOccurrence {
		if idx := strings.Index(text, url); idx != -1 {
			return idx
		}
	}

	return start
}

// Classify labels a matched URL given the text preceding it.
func (m *Matcher) Classify(url, window string) Label {
	if m.profile.Strategy != StrategyKeywordLookback {
		return m.profile.DefaultLabel
	}

	if m.profile.SubserviceHost != "" && hostOf(url) == m.profile.SubserviceHost {
		return LabelYouTubeMusic
	}

	keyword := serviceKeyword.FindString(window)
	if keyword == "" {
		return m.profile.DefaultLabel
	}

	if strings.Contains(strings.ToLower(keyword), "music") {
		return LabelYouTubeMusic
	}

	return LabelYouTube
}

// lookbackWindow returns up to n characters of text ending at byte offset anchor.
func lookbackWindow(text string, anchor, n int) string {
	start := anchor
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}

	return text[start:anchor]
}

// hostOf returns the lowercased host of a matched URL without a leading "www.".
// Matched URLs always carry a scheme and a path, so plain string slicing is enough.
func hostOf(url string) string {
	rest := url
	if idx := strings.Index(rest, "://"); idx != -1 {
		rest = rest[idx+3:]
	}

	if idx := strings.IndexByte(rest, '/'); idx != -1 {
		rest = rest[:idx]
	}

	return strings.TrimPrefix(strings.ToLower(rest), "www.")
}
