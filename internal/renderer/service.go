// Package renderer is the render pipeline in front of the template engine.
//
// A Service loads its configuration once, installs the built-in and custom
// directives into the engine on first use, merges and pre-processes render
// data, and recovers from render failures according to the errorHandling
// settings: rethrow, log, render an error view, or fall back to a
// placeholder comment. Named fragments can be sliced out of the output
// through the View builder.
package renderer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/conneroisu/quill/internal/config"
	"github.com/conneroisu/quill/internal/directive"
	"github.com/conneroisu/quill/internal/engine"
	quillerrors "github.com/conneroisu/quill/internal/errors"
	"github.com/conneroisu/quill/internal/i18n"
	"github.com/conneroisu/quill/internal/logging"
	"github.com/conneroisu/quill/internal/session"
)

// Placeholder is returned when a render fails and no error view could
// take its place.
const Placeholder = "<!-- View Rendering Error -->"

// Keys the pipeline adds to render data.
const (
	EnvKey  = "__env"
	ViewKey = "__view"
)

// Options configures a Service.
type Options struct {
	// Config is the resolver to load from. A resolver for the working
	// directory is created when nil.
	Config *config.Resolver
	// Overrides are merged over every other configuration layer.
	Overrides map[string]any
	// Session supplies flashed errors and the CSRF token. May be nil.
	Session session.Session
	// Logger receives render failures. Defaults to a no-op logger.
	Logger logging.Logger
	// Capabilities are host functions used by the built-in directives.
	Capabilities Capabilities
	// Directives are installed after the built-ins and may shadow them.
	Directives map[string]directive.CompileFunc
}

// state is everything derived from one configuration load.
type state struct {
	snapshot   *config.Snapshot
	settings   *config.Settings
	engine     *engine.Engine
	translator *i18n.Translator

	installOnce sync.Once
	installErr  error
}

// Service renders views through the engine with directive support and
// failure recovery.
type Service struct {
	config    *config.Resolver
	overrides map[string]any
	session   session.Session
	logger    logging.Logger
	caps      Capabilities

	// custom holds directives from Options and Directive, re-installed
	// after a reload.
	custom *directive.Registry

	stateMu    sync.RWMutex
	st         *state
	namespaces map[string]string

	dataMu   sync.Mutex
	defaults map[string]any
}

// New loads the configuration and prepares the engine. Directives are
// installed on the first render.
func New(opts Options) (*Service, error) {
	resolver := opts.Config
	if resolver == nil {
		resolver = config.NewResolver(config.Options{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Service{
		config:     resolver,
		overrides:  opts.Overrides,
		session:    opts.Session,
		logger:     logger.WithComponent("renderer"),
		caps:       opts.Capabilities,
		custom:     directive.NewRegistry(),
		namespaces: make(map[string]string),
	}

	for name, fn := range opts.Directives {
		if err := s.custom.RegisterDirective(name, fn); err != nil {
			return nil, quillerrors.NewConfigError(quillerrors.ErrCodeConfigInvalid, "invalid custom directive", err)
		}
	}

	st, err := s.build(opts.Overrides)
	if err != nil {
		return nil, err
	}
	s.st = st
	return s, nil
}

// build loads configuration and creates the engine for it.
func (s *Service) build(overrides map[string]any) (*state, error) {
	snap, err := s.config.Load(overrides)
	if err != nil {
		return nil, err
	}
	settings, err := config.Decode(snap)
	if err != nil {
		return nil, quillerrors.NewConfigError(quillerrors.ErrCodeConfigInvalid, "invalid configuration", err)
	}

	eng, err := engine.New(engine.OptionsFromSettings(settings, s.logger))
	if err != nil {
		return nil, quillerrors.NewConfigError(quillerrors.ErrCodeConfigInvalid, "cannot create engine", err)
	}

	translator, err := i18n.Load(settings.LangPath, settings.Locale, settings.FallbackLocale)
	if err != nil {
		s.logger.Warn(context.Background(), err, "translations unavailable", "path", settings.LangPath)
		translator = nil
	}

	return &state{
		snapshot:   snap,
		settings:   settings,
		engine:     eng,
		translator: translator,
	}, nil
}

func (s *Service) current() *state {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.st
}

// install puts the built-ins and then the custom directives into the
// engine, once per engine.
func (s *Service) install(ctx context.Context, st *state) error {
	st.installOnce.Do(func() {
		if err := st.engine.Install(directive.Builtins(), s.custom); err != nil {
			st.installErr = quillerrors.NewConfigError(quillerrors.ErrCodeConfigInvalid, "cannot install directives", err)
			return
		}
		if st.settings.Performance.PrecompileViews {
			count, err := st.engine.Precompile()
			if err != nil {
				s.logger.Warn(ctx, err, "some views failed to precompile")
			}
			s.logger.Debug(ctx, "views precompiled", "count", count)
		}
	})
	return st.installErr
}

// RegisterDirectives installs the directives now instead of on the first
// render.
func (s *Service) RegisterDirectives(ctx context.Context) error {
	return s.install(ctx, s.current())
}

// SetData sets defaults merged under the data of the next render only.
func (s *Service) SetData(data map[string]any) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	s.defaults = make(map[string]any, len(data))
	for key, value := range data {
		s.defaults[key] = value
	}
}

// takeDefaults returns the pending defaults and clears them.
func (s *Service) takeDefaults() map[string]any {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	defaults := s.defaults
	s.defaults = nil
	return defaults
}

// Render renders view with data. Defaults set with SetData are consumed
// whether or not the render succeeds.
func (s *Service) Render(ctx context.Context, view string, data map[string]any) (string, error) {
	defaults := s.takeDefaults()

	if strings.TrimSpace(view) == "" {
		return "", quillerrors.ErrMissingView()
	}
	return s.render(ctx, view, defaults, data, func(st *state, merged map[string]any) (string, error) {
		return st.engine.Render(view, merged)
	})
}

// InlineView is the view name render failures of RenderString are
// reported under.
const InlineView = "<inline>"

// RenderString compiles and renders template source that does not live in
// the views directory. Data handling and failure recovery are the same as
// for Render.
func (s *Service) RenderString(ctx context.Context, source string, data map[string]any) (string, error) {
	defaults := s.takeDefaults()

	return s.render(ctx, InlineView, defaults, data, func(st *state, merged map[string]any) (string, error) {
		return st.engine.RenderString(source, merged)
	})
}

// Exists reports whether view resolves to a file.
func (s *Service) Exists(view string) bool {
	return s.current().engine.Exists(view)
}

func (s *Service) render(
	ctx context.Context,
	view string,
	defaults, data map[string]any,
	execute func(*state, map[string]any) (string, error),
) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	st := s.current()
	if err := s.install(ctx, st); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	merged := make(map[string]any, len(defaults)+len(data)+4)
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range data {
		merged[key] = value
	}
	merged = s.ProcessData(merged)
	s.addHelpers(ctx, st, merged, view)

	out, err := execute(st, merged)
	if err == nil {
		return out, nil
	}
	return s.recover(ctx, st, view, err)
}

// ProcessData adds the session's error bag under "errors" when data has
// no errors entry and the session holds errors.
func (s *Service) ProcessData(data map[string]any) map[string]any {
	if data == nil {
		data = make(map[string]any)
	}
	if _, ok := data[directive.ErrorsKey]; ok || s.session == nil {
		return data
	}
	if errors := s.session.Errors(); len(errors) > 0 {
		data[directive.ErrorsKey] = session.NewErrorBag(errors)
	}
	return data
}

// addHelpers adds the capability functions and the pipeline keys. Values
// already in data win, so a render can override a capability.
func (s *Service) addHelpers(ctx context.Context, st *state, data map[string]any, view string) {
	for name, fn := range s.templateFuncs(ctx, st) {
		if _, ok := data[name]; !ok {
			data[name] = fn
		}
	}
	data[EnvKey] = st.settings.Environment
	data[ViewKey] = view
}

// recover applies the errorHandling settings to a failed render.
func (s *Service) recover(ctx context.Context, st *state, view string, cause error) (string, error) {
	renderErr := quillerrors.NewRenderError(view, cause)
	handling := st.settings.ErrorHandling

	if handling.ShowErrors {
		return "", renderErr
	}
	if handling.LogErrors {
		s.logger.Error(ctx, cause, "view rendering failed", "view", view)
	}
	if handling.ErrorView != "" {
		out, err := s.renderErrorView(ctx, st, handling.ErrorView, renderErr)
		if err == nil {
			return out, nil
		}
		// Never surfaced; visible at debug level only.
		s.logger.Debug(ctx, "error view failed",
			"view", view,
			"error", quillerrors.NewSecondaryRenderError(handling.ErrorView, err),
		)
	}
	return Placeholder, nil
}

// renderErrorView renders the configured error view with the failure under
// "error" and the failed view's name under "view".
func (s *Service) renderErrorView(ctx context.Context, st *state, errorView string, renderErr *quillerrors.Error) (string, error) {
	if !st.engine.Exists(errorView) {
		return "", fmt.Errorf("error view [%s] not found", errorView)
	}

	data := map[string]any{
		"error": renderErr,
		"view":  renderErr.View,
	}
	s.addHelpers(ctx, st, data, errorView)
	return st.engine.Render(errorView, data)
}

// Directive registers a custom directive. It takes effect immediately and
// survives Reload.
func (s *Service) Directive(name string, fn directive.CompileFunc) error {
	if err := s.custom.RegisterDirective(name, fn); err != nil {
		return err
	}
	return s.current().engine.RegisterDirective(name, fn)
}

// Namespace registers a view namespace at runtime. Relative paths are
// taken from the project root.
func (s *Service) Namespace(name, path string) error {
	if !filepath.IsAbs(path) {
		root, err := s.config.ProjectRoot()
		if err != nil {
			return err
		}
		path = filepath.Join(root, path)
	}
	if err := s.current().engine.AddNamespace(name, path); err != nil {
		return err
	}

	s.stateMu.Lock()
	s.namespaces[name] = path
	s.stateMu.Unlock()
	return nil
}

// Config returns the configuration value at dotPath, or def.
func (s *Service) Config(dotPath string, def any) any {
	return s.current().snapshot.Get(dotPath, def)
}

// Snapshot returns the configuration snapshot in use.
func (s *Service) Snapshot() *config.Snapshot {
	return s.current().snapshot
}

// Settings returns a copy of the typed settings in use.
func (s *Service) Settings() config.Settings {
	return *s.current().settings
}

// Engine returns the engine in use.
func (s *Service) Engine() *engine.Engine {
	return s.current().engine
}

// Reload drops the cached configuration, loads it again and swaps in a
// fresh engine. Custom directives and runtime namespaces carry over.
func (s *Service) Reload(ctx context.Context) error {
	s.config.Reset()
	st, err := s.build(s.overrides)
	if err != nil {
		return err
	}

	s.stateMu.Lock()
	for name, path := range s.namespaces {
		if err := st.engine.AddNamespace(name, path); err != nil {
			s.stateMu.Unlock()
			return fmt.Errorf("restore namespace %s: %w", name, err)
		}
	}
	previous := s.st
	s.st = st
	s.stateMu.Unlock()

	if previous != nil {
		if err := previous.engine.ClearCache(); err != nil {
			s.logger.Warn(ctx, err, "previous compiled views not cleared")
		}
	}
	s.logger.Info(ctx, "configuration reloaded", "environment", st.settings.Environment)
	return nil
}
