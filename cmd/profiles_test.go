package cmd

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesCommandTable(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "profiles", "--patterns")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Available Profiles (2):")
	assert.Contains(t, stdout, "youtube (default)")
	assert.Contains(t, stdout, "keyword-lookback")
	assert.Contains(t, stdout, "youtube_music_links.csv")
	assert.Contains(t, stdout, `music\.youtube\.com`)
}

func TestProfilesCommandJSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "profiles", "--json")
	require.NoError(t, err)

	var got struct {
		Profiles []struct {
			Name          string   `json:"name"`
			Strategy      string   `json:"strategy"`
			Pattern       string   `json:"pattern"`
			DefaultLabel  string   `json:"default_label"`
			DefaultOutput string   `json:"default_output"`
			Examples      []string `json:"examples"`
			Default       bool     `json:"default"`
		} `json:"profiles"`
		Count int `json:"count"`
	}

	require.NoError(t, jsoniter.Unmarshal([]byte(stdout), &got))
	require.Equal(t, 2, got.Count)

	music := got.Profiles[0]
	assert.Equal(t, "music", music.Name)
	assert.Equal(t, "none", music.Strategy)
	assert.Equal(t, "YouTube Music", music.DefaultLabel)
	assert.False(t, music.Default)

	youtube := got.Profiles[1]
	assert.Equal(t, "youtube", youtube.Name)
	assert.Equal(t, "keyword-lookback", youtube.Strategy)
	assert.True(t, youtube.Default)
	assert.NotEmpty(t, youtube.Pattern)
	assert.Len(t, youtube.Examples, 3)
}

func TestDebugCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "debug", "--test-pattern",
		"...Youtube Music history... http://www.youtube.com/watch?v=abc")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Found 1 match(es) with profile youtube")
	assert.Contains(t, stdout, "http://www.youtube.com/watch?v=abc")
	assert.Contains(t, stdout, "Label:    YouTube Music")
	assert.Contains(t, stdout, `Window:   "...Youtube Music history... "`)
}

func TestDebugCommandProfileOverview(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "debug", "--profile", "music")
	require.NoError(t, err)

	assert.Contains(t, stdout, "=== Profile: music ===")
	assert.Contains(t, stdout, "https://music.youtube.com/watch?v=dQw4w9WgXcQ: ✅ YouTube Music")
}

func TestDebugCommandNoMatch(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "debug", "-t", "https://vimeo.com/1", "-p", "music")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No links found")
}
