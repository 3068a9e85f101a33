// Package directive compiles @name(expression) annotations in view source
// into template engine markup before the engine parses it.
//
// Compilation is a pure text transform. Directives that need request state
// (permissions, translations, the CSRF token) compile to calls of
// capability functions that the render pipeline supplies with the data.
package directive

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// CompileFunc turns a directive expression, the text between its
// parentheses, into engine markup. The expression is "" when the directive
// was used without parentheses.
type CompileFunc func(expression string) string

// Registrar is anything directives can be installed into.
type Registrar interface {
	RegisterDirective(name string, fn CompileFunc) error
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Registry maps directive names to compile functions. Registering a name
// twice replaces the earlier function.
type Registry struct {
	mu         sync.RWMutex
	directives map[string]CompileFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{directives: make(map[string]CompileFunc)}
}

// ValidateName reports whether name can be used as a directive name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid directive name %q", name)
	}
	return nil
}

// RegisterDirective adds or replaces a directive.
func (r *Registry) RegisterDirective(name string, fn CompileFunc) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("directive %q has no compile function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.directives[name] = fn
	return nil
}

// Compile runs the named directive on expression.
func (r *Registry) Compile(name, expression string) (string, bool) {
	r.mu.RLock()
	fn, ok := r.directives[name]
	r.mu.RUnlock()

	if !ok {
		return "", false
	}
	return fn(expression), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.directives[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.directives))
	for name := range r.directives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered directives.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.directives)
}

// InstallInto registers every directive of r into target, in name order.
func (r *Registry) InstallInto(target Registrar) error {
	for _, name := range r.Names() {
		r.mu.RLock()
		fn := r.directives[name]
		r.mu.RUnlock()

		if err := target.RegisterDirective(name, fn); err != nil {
			return fmt.Errorf("install directive %s: %w", name, err)
		}
	}
	return nil
}

// CompileSource rewrites source with the registered directives.
func (r *Registry) CompileSource(source string) string {
	return Compile(source, r.Compile)
}
