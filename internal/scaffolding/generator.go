// Package scaffolding writes starter quill projects and views.
package scaffolding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ViewExtension is the extension of generated views.
const ViewExtension = ".html"

var viewNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Generator writes views from templates.
type Generator struct {
	templates   map[string]ViewTemplate
	viewsDir    string
	projectName string
	force       bool
}

// NewGenerator creates a generator writing below viewsDir. Existing files
// are only replaced when force is set.
func NewGenerator(viewsDir, projectName string, force bool) *Generator {
	return &Generator{
		templates:   BuiltinTemplates(),
		viewsDir:    viewsDir,
		projectName: projectName,
		force:       force,
	}
}

// GenerateOptions selects the template and the view name.
type GenerateOptions struct {
	Template string
	Name     string
	// Dir overrides the template's directory below the views root.
	Dir string
}

// Generate writes one view and returns its path.
func (g *Generator) Generate(opts GenerateOptions) (string, error) {
	if err := ValidateViewName(opts.Name); err != nil {
		return "", err
	}
	tmpl, ok := g.templates[opts.Template]
	if !ok {
		return "", fmt.Errorf("template '%s' not found", opts.Template)
	}

	dir := tmpl.Dir
	if opts.Dir != "" {
		dir = opts.Dir
	}
	target := filepath.Join(g.viewsDir, filepath.FromSlash(dir), opts.Name+ViewExtension)

	content, err := execute(tmpl.Content, TemplateContext{
		Name:        opts.Name,
		Title:       titleCase(opts.Name),
		ProjectName: g.projectName,
		Date:        time.Now().Format("2006-01-02"),
	})
	if err != nil {
		return "", fmt.Errorf("template %s: %w", opts.Template, err)
	}
	if err := g.write(target, content); err != nil {
		return "", err
	}
	return target, nil
}

// AddTemplate registers or replaces a template.
func (g *Generator) AddTemplate(tmpl ViewTemplate) {
	g.templates[tmpl.Name] = tmpl
}

// Templates returns the templates sorted by category, then name.
func (g *Generator) Templates() []ViewTemplate {
	out := make([]ViewTemplate, 0, len(g.templates))
	for _, tmpl := range g.templates {
		out = append(out, tmpl)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (g *Generator) write(path string, content []byte) error {
	if !g.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, content, 0o644)
}

func execute(content string, ctx TemplateContext) ([]byte, error) {
	tmpl, err := template.New("view").Delims("[[", "]]").Parse(content)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ValidateViewName accepts lower-case names made of letters, digits,
// dashes and underscores.
func ValidateViewName(name string) error {
	if name == "" {
		return fmt.Errorf("view name cannot be empty")
	}
	if !viewNamePattern.MatchString(name) {
		return fmt.Errorf("invalid view name %q: use lower-case letters, digits, '-' and '_'", name)
	}
	return nil
}

func titleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// ConfigFormats lists the formats a scaffolded config file can use.
var ConfigFormats = []string{"yaml", "json", "toml"}

// ProjectOptions configures CreateProject.
type ProjectOptions struct {
	Dir         string
	ProjectName string
	// ConfigFormat is one of ConfigFormats; yaml when empty.
	ConfigFormat string
	Force        bool
}

// ProjectConfig is the configuration written by CreateProject.
func ProjectConfig() map[string]any {
	return map[string]any{
		"viewsPath": "views",
		"cachePath": "storage/cache/views",
		"locale":    "en",
		"errorHandling": map[string]any{
			"showErrors": false,
			"logErrors":  true,
			"errorView":  "errors.error",
		},
		"environments": map[string]any{
			"development": map[string]any{
				"errorHandling": map[string]any{"showErrors": true},
			},
			"production": map[string]any{
				"autoReload":  false,
				"performance": map[string]any{"precompileViews": true, "cacheFileChecks": false},
			},
		},
	}
}

// CreateProject writes a config file, a layout, a home page, the starter
// components, an error view and an English catalog. It returns the
// written paths.
func CreateProject(opts ProjectOptions) ([]string, error) {
	if opts.ProjectName == "" {
		opts.ProjectName = filepath.Base(opts.Dir)
	}
	format := opts.ConfigFormat
	if format == "" {
		format = "yaml"
	}

	configData, err := encodeConfig(format, ProjectConfig())
	if err != nil {
		return nil, err
	}

	g := NewGenerator(filepath.Join(opts.Dir, "views"), opts.ProjectName, opts.Force)
	var written []string

	configPath := filepath.Join(opts.Dir, "quill."+format)
	if err := g.write(configPath, configData); err != nil {
		return written, err
	}
	written = append(written, configPath)

	langPath := filepath.Join(opts.Dir, "lang", "en.yaml")
	if err := g.write(langPath, []byte("welcome: Welcome to "+opts.ProjectName+"\n")); err != nil {
		return written, err
	}
	written = append(written, langPath)

	for _, view := range []GenerateOptions{
		{Template: "layout", Name: "base"},
		{Template: "page", Name: "home"},
		{Template: "form", Name: "form"},
		{Template: "alert", Name: "alert"},
		{Template: "card", Name: "card"},
		{Template: "error", Name: "error"},
	} {
		path, err := g.Generate(view)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func encodeConfig(format string, cfg map[string]any) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(cfg)
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "toml":
		return toml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q (supported: %s)", format, strings.Join(ConfigFormats, ", "))
	}
}
