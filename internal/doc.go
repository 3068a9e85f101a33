// Package internal contains the implementation packages behind pkg/quill
// and the quill command.
//
// # Package Organization
//
//   - config: layered configuration (defaults, file, environment block,
//     overrides) with path discovery and typed Settings
//   - paths: candidate directory resolution, project root discovery and
//     writability checks
//   - directive: the @directive scanner, registry and built-in vocabulary
//   - engine: pongo2 template set, view finder with namespaces and the
//     on-disk compiled view cache
//   - renderer: the render pipeline, failure recovery, capabilities,
//     fragments and auto reload
//   - session: session boundary, CSRF tokens and error bags
//   - i18n: YAML translation catalogs
//   - watcher: debounced fsnotify events
//   - scaffolding: starter projects and views
//   - errors, logging, version: shared error taxonomy, structured logging
//     and build information
//
// # Data Flow
//
// A render loads the configuration once per renderer.Service, installs
// the built-in and then the custom directives into the engine on first
// use, merges the pending defaults with the call data, adds the session
// error bag and the capability functions, and executes the view. The
// engine compiles directives before pongo2 parses a view and keeps the
// result on disk keyed by the source path.
package internal
