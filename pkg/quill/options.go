package quill

import "github.com/conneroisu/quill/internal/config"

// Option configures a Renderer.
type Option func(*options)

type options struct {
	projectRoot  string
	configFile   string
	strict       bool
	environment  string
	overrides    map[string]any
	session      Session
	logger       Logger
	capabilities Capabilities
	directives   map[string]CompileFunc
}

// WithProjectRoot sets the project root instead of discovering it from
// the working directory.
func WithProjectRoot(dir string) Option {
	return func(o *options) {
		o.projectRoot = dir
	}
}

// WithConfigFile reads configuration from path, which must exist.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithStrict turns a missing config file, project root or view directory
// into an error.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithEnvironment sets the environment name used to select the
// environments.<name> configuration block.
func WithEnvironment(name string) Option {
	return func(o *options) {
		o.environment = name
	}
}

// WithOverrides merges values over every other configuration source.
// Later calls merge over earlier ones key by key, nested mappings
// included.
func WithOverrides(overrides map[string]any) Option {
	return func(o *options) {
		o.overrides = config.DeepMerge(o.overrides, overrides)
	}
}

// WithSession supplies flashed errors and the CSRF token.
func WithSession(s Session) Option {
	return func(o *options) {
		o.session = s
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCapabilities sets the host functions used by the built-in
// directives.
func WithCapabilities(caps Capabilities) Option {
	return func(o *options) {
		o.capabilities = caps
	}
}

// WithDirective registers a custom directive at construction.
func WithDirective(name string, fn CompileFunc) Option {
	return func(o *options) {
		o.directives[name] = fn
	}
}
