package config

// Default configuration values. Critical paths are left nil so they are
// either configured or discovered.
func Defaults() map[string]any {
	return map[string]any{
		"viewsPath":          nil,
		"cachePath":          nil,
		"componentPath":      nil,
		"componentNamespace": "components",
		"namespaces":         map[string]any{},
		"debug":              true,
		"autoReload":         true,
		"extensions":         []any{"quill.html", "html"},
		"errorHandling": map[string]any{
			"showErrors": true,
			"logErrors":  true,
			"errorView":  nil,
		},
		"performance": map[string]any{
			"precompileViews": false,
			"cacheFileChecks": true,
		},
		"security": map[string]any{
			"csrfToken": true,
		},
		"locale":         "en",
		"fallbackLocale": "en",
		"langPath":       nil,
		"appURL":         "",
		"assetURL":       "",
		"routes":         map[string]any{},
		"environments":   map[string]any{},
	}
}
