package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Names of the environments quill treats specially.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// EnvVars are the variables naming the active environment, highest
// priority first.
var EnvVars = []string{"QUILL_ENV", "APP_ENV", "GO_ENV", "ENVIRONMENT"}

// DebugVars are the variables whose truthy value selects the development
// environment when no environment name is set.
var DebugVars = []string{"QUILL_DEBUG", "APP_DEBUG"}

// Environment determines the active named environment and applies its
// override block.
type Environment struct {
	// env is the framework-level variable map consulted before the process
	// environment.
	env map[string]string
	v   *viper.Viper
}

// NewEnvironment creates an Environment. env may be nil.
func NewEnvironment(env map[string]string) *Environment {
	v := viper.New()
	for _, name := range append(append([]string{}, EnvVars...), DebugVars...) {
		_ = v.BindEnv(strings.ToLower(name), name)
	}
	return &Environment{env: env, v: v}
}

// lookup returns the first non-empty value for name, from the explicit
// map first and the process environment second.
func (e *Environment) lookup(name string) string {
	if value := strings.TrimSpace(e.env[name]); value != "" {
		return value
	}
	return strings.TrimSpace(e.v.GetString(strings.ToLower(name)))
}

// Current returns the lower-cased active environment name.
func (e *Environment) Current() string {
	for _, name := range EnvVars {
		if value := e.lookup(name); value != "" {
			return strings.ToLower(value)
		}
	}
	for _, name := range DebugVars {
		if truthy(e.lookup(name)) {
			return EnvDevelopment
		}
	}
	return EnvProduction
}

// ApplyOverrides merges the block of the active environment over base.
func (e *Environment) ApplyOverrides(base *Snapshot) *Snapshot {
	return ApplyEnvironment(base, e.Current())
}

// ApplyEnvironment merges base.environments[name] over base when that
// block is a mapping; otherwise base is returned unchanged. name is matched
// as a whole key, case-insensitively, so names may contain dots.
func ApplyEnvironment(base *Snapshot, name string) *Snapshot {
	block, ok := asMap(environmentBlock(base.Map("environments"), name))
	if !ok || len(block) == 0 {
		return base
	}
	return base.With(block)
}

func environmentBlock(blocks map[string]any, name string) any {
	if block, ok := blocks[name]; ok {
		return block
	}
	for key, block := range blocks {
		if strings.EqualFold(key, name) {
			return block
		}
	}
	return nil
}

func truthy(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
