package scaffolding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/quill/internal/config"
)

func TestValidateViewName(t *testing.T) {
	testCases := []struct {
		name    string
		wantErr bool
	}{
		{"home", false},
		{"user-profile", false},
		{"step_2", false},
		{"", true},
		{"Home", true},
		{"../etc", true},
		{"2fa", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateViewName(tc.name)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	views := t.TempDir()
	g := NewGenerator(views, "Demo", false)

	path, err := g.Generate(GenerateOptions{Template: "page", Name: "about-us"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(views, "pages", "about-us.html"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<h1>About Us</h1>")
	assert.Contains(t, string(content), `{% extends "layouts.base" %}`)

	_, err = g.Generate(GenerateOptions{Template: "page", Name: "about-us"})
	assert.Error(t, err, "existing files are kept without force")

	path, err = NewGenerator(views, "Demo", true).Generate(GenerateOptions{Template: "alert", Name: "about-us", Dir: "pages"})
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "alert-")

	_, err = g.Generate(GenerateOptions{Template: "nope", Name: "x"})
	assert.Error(t, err)
}

func TestTemplatesSorted(t *testing.T) {
	g := NewGenerator(t.TempDir(), "Demo", false)
	g.AddTemplate(ViewTemplate{Name: "aaa", Category: "zzz"})

	templates := g.Templates()
	require.NotEmpty(t, templates)
	assert.Equal(t, "components", templates[0].Category)
	assert.Equal(t, "aaa", templates[len(templates)-1].Name)
}

func TestCreateProjectIsLoadable(t *testing.T) {
	for _, format := range ConfigFormats {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()

			written, err := CreateProject(ProjectOptions{Dir: dir, ProjectName: "Demo", ConfigFormat: format})
			require.NoError(t, err)
			assert.Len(t, written, 8)
			assert.FileExists(t, filepath.Join(dir, "quill."+format))
			assert.FileExists(t, filepath.Join(dir, "views", "layouts", "base.html"))
			assert.FileExists(t, filepath.Join(dir, "views", "errors", "error.html"))

			resolver := config.NewResolver(config.Options{
				ProjectRoot: dir,
				Strict:      true,
				Env:         map[string]string{"QUILL_ENV": "production"},
			})
			settings, err := resolver.Settings()
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "quill."+format), resolver.ConfigFile())
			assert.Equal(t, filepath.Join(dir, "views"), settings.ViewsPath)
			assert.Equal(t, "errors.error", settings.ErrorHandling.ErrorView)
			assert.False(t, settings.AutoReload)
			assert.True(t, settings.Performance.PrecompileViews)

			_, err = CreateProject(ProjectOptions{Dir: dir, ConfigFormat: format})
			assert.Error(t, err)
		})
	}
}

func TestCreateProjectRejectsUnknownFormat(t *testing.T) {
	_, err := CreateProject(ProjectOptions{Dir: t.TempDir(), ConfigFormat: "ini"})
	assert.Error(t, err)
}
