package session

import "sort"

// ErrorBag is an immutable, key-ordered view of validation errors keeping
// the first message of each field.
type ErrorBag struct {
	keys     []string
	messages map[string]string
}

// NewErrorBag builds a bag from field errors. Fields without a non-empty
// message are dropped.
func NewErrorBag(errors map[string][]string) *ErrorBag {
	bag := &ErrorBag{messages: make(map[string]string, len(errors))}
	for field, messages := range errors {
		for _, message := range messages {
			if message != "" {
				bag.messages[field] = message
				break
			}
		}
	}

	bag.keys = make([]string, 0, len(bag.messages))
	for field := range bag.messages {
		bag.keys = append(bag.keys, field)
	}
	sort.Strings(bag.keys)
	return bag
}

// Has reports whether field has an error.
func (b *ErrorBag) Has(field string) bool {
	if b == nil {
		return false
	}
	_, ok := b.messages[field]
	return ok
}

// First returns the first message for field, or "".
func (b *ErrorBag) First(field string) string {
	if b == nil {
		return ""
	}
	return b.messages[field]
}

// Any reports whether the bag holds at least one error.
func (b *ErrorBag) Any() bool {
	return b.Count() > 0
}

// Count returns the number of fields with errors.
func (b *ErrorBag) Count() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Keys returns the fields in sorted order.
func (b *ErrorBag) Keys() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.keys...)
}

// All returns a copy of the field to message mapping.
func (b *ErrorBag) All() map[string]string {
	out := make(map[string]string, b.Count())
	if b == nil {
		return out
	}
	for field, message := range b.messages {
		out[field] = message
	}
	return out
}
