// Package session defines the session boundary the render pipeline reads
// transient validation errors and the CSRF token from.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// Well-known session keys.
const (
	ErrorsKey = "errors"
	TokenKey  = "_token"
)

// TokenBytes is the amount of randomness in a CSRF token.
const TokenBytes = 32

// Session is the slice of a host session store quill needs.
type Session interface {
	// Errors returns the flashed validation errors, field to messages.
	Errors() map[string][]string
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Memory is a goroutine-safe in-memory Session.
type Memory struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemory creates an empty in-memory session.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key.
func (m *Memory) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Flash stores validation errors for the next render.
func (m *Memory) Flash(errors map[string][]string) {
	m.Set(ErrorsKey, errors)
}

// Errors returns the errors stored under ErrorsKey. Both map[string][]string
// and map[string]string values are accepted.
func (m *Memory) Errors() map[string][]string {
	raw, ok := m.Get(ErrorsKey)
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case map[string][]string:
		return v
	case map[string]string:
		out := make(map[string][]string, len(v))
		for field, message := range v {
			out[field] = []string{message}
		}
		return out
	default:
		return nil
	}
}

// CSRFToken returns the session's token, creating and storing one on
// first use.
func CSRFToken(s Session) (string, error) {
	if s == nil {
		return "", fmt.Errorf("no session available")
	}
	if v, ok := s.Get(TokenKey); ok {
		if token, ok := v.(string); ok && token != "" {
			return token, nil
		}
	}

	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := hex.EncodeToString(buf)
	s.Set(TokenKey, token)
	return token, nil
}
