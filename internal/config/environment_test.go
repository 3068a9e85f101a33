package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range append(append([]string{}, EnvVars...), DebugVars...) {
		t.Setenv(name, "")
	}
}

func TestEnvironmentCurrent(t *testing.T) {
	testCases := []struct {
		name     string
		env      map[string]string
		expected string
	}{
		{"default is production", nil, EnvProduction},
		{"explicit name", map[string]string{"APP_ENV": "Staging"}, "staging"},
		{"priority order", map[string]string{"QUILL_ENV": "testing", "APP_ENV": "staging"}, "testing"},
		{"debug flag", map[string]string{"APP_DEBUG": "true"}, EnvDevelopment},
		{"falsy debug flag", map[string]string{"QUILL_DEBUG": "0"}, EnvProduction},
		{"name beats debug", map[string]string{"GO_ENV": "production", "QUILL_DEBUG": "1"}, EnvProduction},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnvVars(t)
			assert.Equal(t, tc.expected, NewEnvironment(tc.env).Current())
		})
	}
}

func TestEnvironmentReadsProcessEnv(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("ENVIRONMENT", "qa")

	assert.Equal(t, "qa", NewEnvironment(nil).Current())
}

func TestApplyOverrides(t *testing.T) {
	clearEnvVars(t)
	base := NewSnapshot(map[string]any{
		"debug": true,
		"environments": map[string]any{
			"production": map[string]any{"debug": false},
			"broken":     "not a mapping",
		},
	})

	prod := NewEnvironment(nil).ApplyOverrides(base)
	assert.False(t, prod.Bool("debug"))

	broken := NewEnvironment(map[string]string{"QUILL_ENV": "broken"}).ApplyOverrides(base)
	assert.True(t, broken.Bool("debug"))

	none := NewEnvironment(map[string]string{"QUILL_ENV": "missing"}).ApplyOverrides(base)
	assert.Same(t, base, none)
}

func TestApplyEnvironmentMatchesWholeKey(t *testing.T) {
	base := NewSnapshot(map[string]any{
		"locale": "en",
		"environments": map[string]any{
			"eu.staging": map[string]any{"locale": "de"},
			"QA":         map[string]any{"locale": "nl"},
		},
	})

	testCases := []struct {
		name     string
		env      string
		expected string
	}{
		{"dotted name", "eu.staging", "de"},
		{"case-insensitive", "qa", "nl"},
		{"prefix is not a match", "eu", "en"},
		{"unknown", "production", "en"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ApplyEnvironment(base, tc.env).String("locale"))
		})
	}
}
