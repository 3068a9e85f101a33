package renderer

import (
	"context"
	"path/filepath"

	"github.com/conneroisu/quill/internal/watcher"
)

// Watch follows the view directories and the configuration file while
// autoReload is enabled, blocking until ctx is done. A view change drops
// the compiled cache and a configuration change reloads the Service.
// Without autoReload Watch returns immediately.
func (s *Service) Watch(ctx context.Context) error {
	st := s.current()
	if !st.settings.AutoReload {
		return nil
	}

	fw, err := watcher.NewFileWatcher(watcher.DefaultDelay, s.logger)
	if err != nil {
		return err
	}

	configFile := s.config.ConfigFile()
	if configFile != "" {
		configFile = filepath.Clean(configFile)
		if err := fw.AddPath(filepath.Dir(configFile)); err != nil {
			_ = fw.Stop()
			return err
		}
	}
	for _, dir := range st.engine.ViewDirs() {
		if err := fw.AddRecursive(dir); err != nil {
			_ = fw.Stop()
			return err
		}
	}

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.AnyFilter(
		func(path string) bool { return s.current().engine.IsView(path) },
		watcher.PathFilter(configFile),
	))
	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		return s.applyChanges(ctx, configFile, events)
	})

	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return err
	}
	s.logger.Info(ctx, "watching views", "dirs", len(st.engine.ViewDirs()), "config", configFile)

	<-ctx.Done()
	return fw.Stop()
}

func (s *Service) applyChanges(ctx context.Context, configFile string, events []watcher.ChangeEvent) error {
	for _, event := range events {
		if configFile != "" && filepath.Clean(event.Path) == configFile {
			return s.Reload(ctx)
		}
	}
	s.logger.Debug(ctx, "views changed", "count", len(events))
	return s.current().engine.ClearCache()
}
