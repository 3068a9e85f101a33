package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDeepMerge(t *testing.T) {
	testCases := []struct {
		name     string
		base     map[string]any
		override map[string]any
		expected map[string]any
	}{
		{
			name:     "nested maps merge key-wise",
			base:     map[string]any{"errorHandling": map[string]any{"showErrors": true, "logErrors": true}},
			override: map[string]any{"errorHandling": map[string]any{"showErrors": false}},
			expected: map[string]any{"errorHandling": map[string]any{"showErrors": false, "logErrors": true}},
		},
		{
			name:     "lists are replaced",
			base:     map[string]any{"extensions": []any{"quill.html", "html"}},
			override: map[string]any{"extensions": []any{"tpl"}},
			expected: map[string]any{"extensions": []any{"tpl"}},
		},
		{
			name:     "scalar replaces mapping",
			base:     map[string]any{"routes": map[string]any{"home": "/"}},
			override: map[string]any{"routes": "none"},
			expected: map[string]any{"routes": "none"},
		},
		{
			name:     "nil override is kept",
			base:     map[string]any{"errorView": "errors.500"},
			override: map[string]any{"errorView": nil},
			expected: map[string]any{"errorView": nil},
		},
		{
			name:     "new keys are added",
			base:     map[string]any{"debug": true},
			override: map[string]any{"locale": "fr"},
			expected: map[string]any{"debug": true, "locale": "fr"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeepMerge(tc.base, tc.override)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("DeepMerge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"security": map[string]any{"csrfToken": true}}
	override := map[string]any{"security": map[string]any{"csrfToken": false}}

	merged := DeepMerge(base, override)
	merged["security"].(map[string]any)["extra"] = 1

	assert.Equal(t, true, base["security"].(map[string]any)["csrfToken"])
	assert.NotContains(t, base["security"], "extra")
	assert.NotContains(t, override["security"], "extra")
}

func TestNormalizeConvertsAnyKeyedMaps(t *testing.T) {
	in := map[string]any{
		"namespaces": map[any]any{"admin": "views/admin"},
		"routes":     map[string]string{"home": "/"},
	}

	got := Normalize(in)

	assert.Equal(t, map[string]any{"admin": "views/admin"}, got["namespaces"])
	assert.Equal(t, map[string]any{"home": "/"}, got["routes"])
}
