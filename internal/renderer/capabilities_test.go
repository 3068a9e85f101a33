package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/quill/internal/session"
)

func TestErrorBagShapes(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		has   bool
	}{
		{"nil", nil, false},
		{"bag", session.NewErrorBag(map[string][]string{"email": {"Required"}}), true},
		{"lists", map[string][]string{"email": {"Required"}}, true},
		{"strings", map[string]string{"email": "Required"}, true},
		{"generic", map[string]any{"email": []any{"Required"}}, true},
		{"unsupported", 42, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bag := errorBag(tc.value)
			assert.Equal(t, tc.has, bag.Has("email"))
			if tc.has {
				assert.Equal(t, "Required", bag.First("email"))
			}
		})
	}
}

func TestNamedRoute(t *testing.T) {
	routes := map[string]string{"user": "/users/{id}/{tab}"}

	assert.Equal(t, "/users/7/posts", namedRoute(routes, "user", []any{map[string]any{"id": 7, "tab": "posts"}}))
	assert.Equal(t, "/users/{id}/{tab}", namedRoute(routes, "user", []any{"ignored"}))
	assert.Equal(t, "unknown", namedRoute(routes, "unknown", nil))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "/app.css", joinURL("", "app.css"))
	assert.Equal(t, "https://a.test/x", joinURL("https://a.test//", "//x"))
}

func TestFlattenNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "1"}, flattenNames([]any{"a", []string{"b"}, []any{"c", nil}, 1}))
}
