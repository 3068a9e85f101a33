// Package quill renders views written in a Django-style template language
// extended with @directives.
//
// A Renderer owns its configuration, its directive registry and its
// compiled view cache, so several independently configured renderers can
// live in one process.
//
//	r, err := quill.New(quill.WithProjectRoot("."))
//	if err != nil {
//		return err
//	}
//	html, err := r.Render(ctx, "pages.home", map[string]any{"title": "Home"})
//
// Configuration is merged from built-in defaults, the first of
// quill.yaml, quill.json or quill.toml found in the project root or its
// config directory, the environments.<name> block for the active
// environment, and finally the overrides passed to New or LoadConfig.
//
// # Directives
//
// Directives are compiled to template tags before a view is parsed:
//
//	@csrf                              hidden CSRF token field
//	@method('PUT'), @put, @patch       method spoofing fields
//	@can('edit') ... @endcan           permission checks
//	@auth ... @endauth, @guest         authentication checks
//	@error('email') {{ message }}      first validation message for a field
//	@lang('welcome'), @config('key')   translation and configuration output
//	@fragment('name') ... @endfragment('name')
//
// Custom directives registered with Directive take precedence over the
// built-ins of the same name.
//
// # Errors
//
// With errorHandling.showErrors a failed render returns the error. Otherwise
// it is logged (errorHandling.logErrors), the errorHandling.errorView is
// rendered in its place, and when that fails too Placeholder is returned.
package quill

import (
	"context"

	"github.com/conneroisu/quill/internal/config"
	"github.com/conneroisu/quill/internal/directive"
	quillerrors "github.com/conneroisu/quill/internal/errors"
	"github.com/conneroisu/quill/internal/logging"
	"github.com/conneroisu/quill/internal/renderer"
	"github.com/conneroisu/quill/internal/session"
)

// Placeholder is returned in place of a view that failed to render.
const Placeholder = renderer.Placeholder

type (
	// CompileFunc turns a directive's argument expression into template
	// source.
	CompileFunc = directive.CompileFunc
	// Capabilities are host functions behind the built-in directives.
	Capabilities = renderer.Capabilities
	// Session supplies flashed validation errors and the CSRF token.
	Session = session.Session
	// Logger receives render failures.
	Logger = logging.Logger
	// Snapshot is an immutable view of the merged configuration.
	Snapshot = config.Snapshot
	// Settings is the typed form of a Snapshot.
	Settings = config.Settings
	// View is a single render request built fluently.
	View = renderer.View
	// Error is the structured error returned by quill.
	Error = quillerrors.Error
	// MemorySession is an in-memory Session.
	MemorySession = session.Memory
)

// NewMemorySession returns an empty in-memory Session.
func NewMemorySession() *MemorySession {
	return session.NewMemory()
}

// Renderer is the entry point of the package.
type Renderer struct {
	resolver *config.Resolver
	svc      *renderer.Service
}

// New creates a Renderer. The configuration is loaded immediately so
// configuration and path errors surface here rather than on first render.
func New(opts ...Option) (*Renderer, error) {
	cfg := &options{directives: make(map[string]CompileFunc)}
	for _, opt := range opts {
		opt(cfg)
	}

	resolverOpts := config.Options{
		ProjectRoot: cfg.projectRoot,
		ConfigFile:  cfg.configFile,
		Strict:      cfg.strict,
	}
	if cfg.environment != "" {
		resolverOpts.Env = map[string]string{"QUILL_ENV": cfg.environment}
	}
	resolver := config.NewResolver(resolverOpts)

	svc, err := renderer.New(renderer.Options{
		Config:       resolver,
		Overrides:    cfg.overrides,
		Session:      cfg.session,
		Logger:       cfg.logger,
		Capabilities: cfg.capabilities,
		Directives:   cfg.directives,
	})
	if err != nil {
		return nil, err
	}

	return &Renderer{resolver: resolver, svc: svc}, nil
}

// LoadConfig returns the merged configuration. Without overrides the
// memoized snapshot is returned; with overrides it is recomputed and
// replaces the memoized one. The views already served by the Renderer
// keep the configuration they were created with until Reload.
func (r *Renderer) LoadConfig(overrides map[string]any) (*Snapshot, error) {
	return r.resolver.Load(overrides)
}

// GetConfig returns the configuration value at dotPath, or def when any
// segment is missing.
func (r *Renderer) GetConfig(dotPath string, def any) any {
	return r.resolver.Get(dotPath, def)
}

// ResetConfig drops the memoized configuration so the next LoadConfig
// reads everything again.
func (r *Renderer) ResetConfig() {
	r.resolver.Reset()
}

// Reload re-reads the configuration and rebuilds the engine. Custom
// directives and namespaces are kept.
func (r *Renderer) Reload(ctx context.Context) error {
	return r.svc.Reload(ctx)
}

// RegisterDirectives installs the built-in and custom directives now.
// Render does this on first use, so calling it is optional.
func (r *Renderer) RegisterDirectives(ctx context.Context) error {
	return r.svc.RegisterDirectives(ctx)
}

// Render renders view with data.
func (r *Renderer) Render(ctx context.Context, view string, data map[string]any) (string, error) {
	return r.svc.Render(ctx, view, data)
}

// RenderString renders template source that does not live in the views
// directory, with the same directives, data handling and recovery as
// Render.
func (r *Renderer) RenderString(ctx context.Context, source string, data map[string]any) (string, error) {
	return r.svc.RenderString(ctx, source, data)
}

// Exists reports whether view resolves to a file.
func (r *Renderer) Exists(view string) bool {
	return r.svc.Exists(view)
}

// SetData sets defaults merged under the data of the next render only.
func (r *Renderer) SetData(data map[string]any) {
	r.svc.SetData(data)
}

// View starts a fluent render request.
func (r *Renderer) View(name string) *View {
	return r.svc.View(name)
}

// WithFragments returns a renderer whose output is limited to the named
// fragments.
func (r *Renderer) WithFragments(names ...string) *FragmentRenderer {
	return &FragmentRenderer{r: r, names: append([]string(nil), names...)}
}

// Directive registers a custom directive.
func (r *Renderer) Directive(name string, fn CompileFunc) error {
	return r.svc.Directive(name, fn)
}

// Namespace maps name:: view references to dir. Relative directories
// are taken from the project root.
func (r *Renderer) Namespace(name, dir string) error {
	return r.svc.Namespace(name, dir)
}

// Compile returns the template source produced by replacing directives
// in source.
func (r *Renderer) Compile(ctx context.Context, source string) (string, error) {
	if err := r.svc.RegisterDirectives(ctx); err != nil {
		return "", err
	}
	return r.svc.Engine().Compile(source), nil
}

// Settings returns the typed configuration in use.
func (r *Renderer) Settings() Settings {
	return r.svc.Settings()
}

// Watch clears compiled views and reloads configuration on change while
// autoReload is enabled. It blocks until ctx is done.
func (r *Renderer) Watch(ctx context.Context) error {
	return r.svc.Watch(ctx)
}

// ClearCache removes the compiled views this renderer wrote from memory
// and disk.
func (r *Renderer) ClearCache() error {
	return r.svc.Engine().ClearCache()
}

// FragmentRenderer renders views reduced to a fixed set of fragments.
type FragmentRenderer struct {
	r     *Renderer
	names []string
}

// Render renders view and returns the bodies of the selected fragments,
// or the whole output when none of them is present.
func (f *FragmentRenderer) Render(ctx context.Context, view string, data map[string]any) (string, error) {
	return f.r.svc.View(view).With(data).Fragment(f.names...).Render(ctx)
}

// ExtractFragments returns the trimmed bodies of the named fragments in
// order, or text unchanged when none is found.
func ExtractFragments(text string, names []string) string {
	return renderer.ExtractFragments(text, names)
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool { return quillerrors.IsConfigError(err) }

// IsPathError reports whether err came from directory resolution.
func IsPathError(err error) bool { return quillerrors.IsPathError(err) }

// IsRenderError reports whether err is a failed render.
func IsRenderError(err error) bool { return quillerrors.IsRenderError(err) }
