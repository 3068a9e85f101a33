package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTime(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Time
	}{
		{"2025-01-02T03:04:05Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02T03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02 03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"unknown", time.Time{}},
		{"yesterday", time.Time{}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.True(t, tc.expected.Equal(parseTime(tc.input)))
		})
	}
}

func TestLdflagsWin(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = oldVersion, oldCommit })

	Version = "v1.2.3"
	GitCommit = "abcdef0123456"

	info := Get()
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "v1.2.3 (abcdef0)", info.Short())
	assert.True(t, info.IsRelease())
	assert.Contains(t, info.Detailed(), "Commit: abcdef0123456")
}

func TestShortAndRelease(t *testing.T) {
	testCases := []struct {
		name    string
		info    BuildInfo
		short   string
		release bool
	}{
		{"dev", BuildInfo{Version: "dev", GitCommit: "unknown"}, "dev", false},
		{"dev revision", BuildInfo{Version: "dev-abcdef0", GitCommit: "abcdef0123"}, "dev-abcdef0", false},
		{"short commit", BuildInfo{Version: "v1.0.0", GitCommit: "abc"}, "v1.0.0", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.short, tc.info.Short())
			assert.Equal(t, tc.release, tc.info.IsRelease())
		})
	}
}
