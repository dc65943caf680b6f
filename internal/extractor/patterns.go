package extractor

import (
	"fmt"
	"regexp"
	"sort"
)

// urlPathClass is the character class of a URL path segment. It stops at
// whitespace, quotes, backslashes, slashes and angle brackets so the match
// does not run into surrounding markup or escaped JSON.
const urlPathClass = `[^\s\v\x1c-\x1f\x{85}\p{Z}"'\\/<>]+`

const hostYouTubeMusic = "music.youtube.com"

// serviceKeyword finds service names in the lookback window. The longer
// alternative comes first so "YouTube Music" is preferred at the same position.
var serviceKeyword = regexp.MustCompile(`(?i)youtube music|youtube`)

var profiles = map[string]*Profile{
	"youtube": {
		Name:           "youtube",
		Description:    "All YouTube links, labeled by host or by service keywords in the preceding text",
		Pattern:        regexp.MustCompile(`https?://(?:www\.)?(?:music\.youtube\.com|youtube\.com|youtu\.be)/` + urlPathClass),
		Strategy:       StrategyKeywordLookback,
		DefaultLabel:   LabelYouTube,
		SubserviceHost: hostYouTubeMusic,
		DefaultOutput:  "youtube_links.csv",
		Examples: []string{
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			"https://youtu.be/dQw4w9WgXcQ",
			"https://music.youtube.com/watch?v=dQw4w9WgXcQ",
		},
	},
	"music": {
		Name:          "music",
		Description:   "YouTube Music links only, matched by host",
		Pattern:       regexp.MustCompile(`https?://music\.youtube\.com/` + urlPathClass),
		Strategy:      StrategyNone,
		DefaultLabel:  LabelYouTubeMusic,
		DefaultOutput: "youtube_music_links.csv",
		Examples: []string{
			"https://music.youtube.com/watch?v=dQw4w9WgXcQ",
		},
	},
}

// DefaultProfile is the profile used when none is configured.
const DefaultProfile = "youtube"

// Lookup returns the registered profile with the given name.
func Lookup(name string) (*Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProfile, name, ProfileNames())
	}

	return p, nil
}

// Profiles returns all registered profiles sorted by name.
func Profiles() []*Profile {
	out := make([]*Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// ProfileNames returns the sorted names of all registered profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
