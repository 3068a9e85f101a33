package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/quill/internal/directive"
)

type fixture struct {
	views string
	cache string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	return fixture{
		views: filepath.Join(root, "views"),
		cache: filepath.Join(root, "cache"),
	}
}

func (f fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.views, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f fixture) engine(t *testing.T, mutate ...func(*Options)) *Engine {
	t.Helper()
	opts := Options{
		ViewsPath:          f.views,
		CachePath:          f.cache,
		ComponentPath:      filepath.Join(f.views, "components"),
		ComponentNamespace: "components",
		Extensions:         []string{"quill.html", "html"},
		AutoReload:         true,
		CacheFileChecks:    true,
	}
	for _, m := range mutate {
		m(&opts)
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func compiledFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*"+compiledExt))
	require.NoError(t, err)
	return matches
}

func TestNewRequiresPaths(t *testing.T) {
	_, err := New(Options{CachePath: t.TempDir()})
	assert.Error(t, err)

	_, err = New(Options{ViewsPath: t.TempDir()})
	assert.Error(t, err)
}

func TestNewCreatesDirectories(t *testing.T) {
	f := newFixture(t)
	f.engine(t)

	assert.DirExists(t, f.views)
	assert.DirExists(t, f.cache)
	assert.DirExists(t, filepath.Join(f.views, "components"))
}

func TestRenderDottedView(t *testing.T) {
	f := newFixture(t)
	f.write(t, "pages/home.quill.html", "Hello {{ name }}")
	e := f.engine(t)

	out, err := e.Render("pages.home", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada", out)
}

func TestExtensionOrder(t *testing.T) {
	f := newFixture(t)
	f.write(t, "home.quill.html", "quill")
	f.write(t, "home.html", "html")
	f.write(t, "about.html", "about")
	e := f.engine(t)

	out, err := e.Render("home", nil)
	require.NoError(t, err)
	assert.Equal(t, "quill", out)

	out, err = e.Render("about", nil)
	require.NoError(t, err)
	assert.Equal(t, "about", out)
}

func TestRenderMissingView(t *testing.T) {
	e := newFixture(t).engine(t)

	_, err := e.Render("nope", nil)
	assert.ErrorContains(t, err, "view [nope] not found")
	assert.False(t, e.Exists("nope"))

	_, err = e.Render("ghost::page", nil)
	assert.ErrorContains(t, err, "no hint path defined for [ghost]")
}

func TestViewCannotEscapeItsDirectory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.views), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(f.views), "secret.html"), []byte("s"), 0o644))
	e := f.engine(t)

	_, err := e.Render("../secret.html", nil)
	assert.Error(t, err)
}

func TestNamespaces(t *testing.T) {
	f := newFixture(t)
	f.write(t, "components/button.html", "<button>{{ label }}</button>")
	adminDir := filepath.Join(t.TempDir(), "admin")
	e := f.engine(t, func(o *Options) {
		o.Namespaces = map[string]string{"admin": adminDir}
	})

	assert.DirExists(t, adminDir, "namespace directories are created")
	require.NoError(t, os.WriteFile(filepath.Join(adminDir, "dash.html"), []byte("admin"), 0o644))

	out, err := e.Render("admin::dash", nil)
	require.NoError(t, err)
	assert.Equal(t, "admin", out)

	out, err = e.Render("components::button", map[string]any{"label": "Go"})
	require.NoError(t, err)
	assert.Equal(t, "<button>Go</button>", out)

	assert.Error(t, e.AddNamespace("", adminDir))
	assert.Error(t, e.AddNamespace("a::b", adminDir))
	assert.Len(t, e.Namespaces(), 2)
}

func TestIncludeResolvesViewNames(t *testing.T) {
	f := newFixture(t)
	f.write(t, "partials/nav.html", "<nav>{{ title }}</nav>")
	f.write(t, "pages/home.html", `{% include "partials.nav" %}|{% include "local.html" %}`)
	f.write(t, "pages/local.html", "local")
	e := f.engine(t)

	out, err := e.Render("pages.home", map[string]any{"title": "T"})
	require.NoError(t, err)
	assert.Equal(t, "<nav>T</nav>|local", out)
}

func TestDirectivesCompileIntoCache(t *testing.T) {
	f := newFixture(t)
	f.write(t, "shout.html", "@shout('hi')")
	e := f.engine(t)
	require.NoError(t, e.RegisterDirective("shout", func(expr string) string {
		return "{{ " + expr + "|upper }}"
	}))

	out, err := e.Render("shout", nil)
	require.NoError(t, err)
	assert.Equal(t, "HI", out)

	files := compiledFiles(t, f.cache)
	require.Len(t, files, 1)
	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "{{ 'hi'|upper }}", string(raw))
}

func TestRegisterDirectiveClearsCache(t *testing.T) {
	f := newFixture(t)
	f.write(t, "v.html", "@tag")
	e := f.engine(t)
	require.NoError(t, e.RegisterDirective("tag", func(string) string { return "one" }))

	out, err := e.Render("v", nil)
	require.NoError(t, err)
	assert.Equal(t, "one", out)

	require.NoError(t, e.RegisterDirective("tag", func(string) string { return "two" }))
	assert.Empty(t, compiledFiles(t, f.cache))

	out, err = e.Render("v", nil)
	require.NoError(t, err)
	assert.Equal(t, "two", out)
}

func TestInstall(t *testing.T) {
	f := newFixture(t)
	f.write(t, "form.html", "<form>@csrf</form>")
	e := f.engine(t)

	custom := directive.NewRegistry()
	require.NoError(t, custom.RegisterDirective("csrf", func(string) string { return "custom" }))
	require.NoError(t, e.Install(directive.Builtins(), nil, custom))

	out, err := e.Render("form", nil)
	require.NoError(t, err)
	assert.Equal(t, "<form>custom</form>", out)
	assert.True(t, e.Directives().Has("auth"))
}

func TestStaleCompiledViewIsRecompiled(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "v.html", "first")
	e := f.engine(t)

	out, err := e.Render("v", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	out, err = e.Render("v", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", out)
}

func TestCompiledViewKeptWithoutFileChecks(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "v.html", "first")
	e := f.engine(t, func(o *Options) { o.CacheFileChecks = false })

	_, err := e.Render("v", nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	out, err := e.Render("v", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	require.NoError(t, e.ClearCache())
	out, err = e.Render("v", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", out)
}

func TestRenderString(t *testing.T) {
	e := newFixture(t).engine(t)
	require.NoError(t, e.RegisterDirective("hello", func(expr string) string { return "Hello " + expr }))

	out, err := e.RenderString("@hello(world)!", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", out)

	_, err = e.RenderString("{% if %}", nil)
	assert.Error(t, err)
}

func TestPrecompile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.html", "a")
	f.write(t, "nested/b.quill.html", "b")
	f.write(t, "notes.txt", "ignored")
	f.write(t, "broken.html", "{% if %}")
	e := f.engine(t, func(o *Options) { o.AutoReload = false })

	count, err := e.Precompile()
	assert.Equal(t, 2, count)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "broken.html"))
	assert.Len(t, compiledFiles(t, f.cache), 3)
}

func TestToContextDropsInvalidKeys(t *testing.T) {
	ctx := toContext(map[string]any{"ok": 1, " padded ": 2, "page-title": 3, "__view": "v"})

	assert.Equal(t, 1, ctx["ok"])
	assert.Equal(t, 2, ctx["padded"])
	assert.Equal(t, "v", ctx["__view"])
	assert.NotContains(t, ctx, "page-title")
}

func TestEnginesSharingCacheDirectory(t *testing.T) {
	f := newFixture(t)
	f.write(t, "v.html", "@shout('hi')")

	plain := f.engine(t)
	require.NoError(t, plain.Install(directive.Builtins()))
	custom := f.engine(t)
	require.NoError(t, custom.RegisterDirective("shout", func(expr string) string {
		return "{{ " + expr + "|upper }}"
	}))

	out, err := plain.Render("v", nil)
	require.NoError(t, err)
	assert.Equal(t, "@shout('hi')", out)

	out, err = custom.Render("v", nil)
	require.NoError(t, err)
	assert.Equal(t, "HI", out)
	assert.Len(t, compiledFiles(t, f.cache), 2)

	require.NoError(t, plain.ClearCache())
	files := compiledFiles(t, f.cache)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(filepath.Base(files[0]), custom.cache.owner+"-"))
}

func TestDirectiveChangeMovesCacheKey(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "v.html", "v")
	e := f.engine(t)

	before := e.cache.pathFor(path)
	require.NoError(t, e.RegisterDirective("tag", func(string) string { return "" }))
	after := e.cache.pathFor(path)

	assert.NotEqual(t, before, after)
	assert.Equal(t, filepath.Dir(before), filepath.Dir(after))
}

func TestNewPrunesStaleForeignViews(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.cache, 0o755))

	stale := filepath.Join(f.cache, "0000-stale"+compiledExt)
	recent := filepath.Join(f.cache, "0000-recent"+compiledExt)
	other := filepath.Join(f.cache, "notes.txt")
	for _, path := range []string{stale, recent, other} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	old := time.Now().Add(-2 * staleAfter)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(other, old, old))

	f.engine(t)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, recent)
	assert.FileExists(t, other)
}
