// Package i18n backs the translate capability with message catalogs read
// from the lang directory. Each <locale>.yaml (or .yml) file holds nested
// mappings whose leaves are messages; nested keys are joined with dots.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Translator resolves message keys for one locale with a fallback locale.
type Translator struct {
	locale   language.Tag
	fallback language.Tag
	builder  *catalog.Builder
	// keys records which keys each loaded locale defines.
	keys map[string]map[string]bool
}

// Load reads every catalog under dir. A missing directory yields a
// translator that returns keys unchanged.
func Load(dir, locale, fallback string) (*Translator, error) {
	localeTag, err := parseTag(locale)
	if err != nil {
		return nil, err
	}
	fallbackTag, err := parseTag(fallback)
	if err != nil {
		return nil, err
	}

	t := &Translator{
		locale:   localeTag,
		fallback: fallbackTag,
		builder:  catalog.NewBuilder(catalog.Fallback(fallbackTag)),
		keys:     make(map[string]map[string]bool),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read lang directory: %w", err)
	}

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		tag, err := parseTag(strings.TrimSuffix(entry.Name(), ext))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", entry.Name(), err)
		}
		if err := t.loadFile(filepath.Join(dir, entry.Name()), tag); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Translator) loadFile(path string, tag language.Tag) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", path, err)
	}

	tree := map[string]any{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parse catalog %s: %w", path, err)
	}

	messages := map[string]string{}
	flatten("", tree, messages)

	name := tag.String()
	if t.keys[name] == nil {
		t.keys[name] = make(map[string]bool, len(messages))
	}
	for key, msg := range messages {
		if err := t.builder.SetString(tag, key, msg); err != nil {
			return fmt.Errorf("catalog %s: key %q: %w", path, key, err)
		}
		t.keys[name][key] = true
	}
	return nil
}

// flatten turns nested mappings into dotted keys. Non-string leaves are
// formatted with fmt.
func flatten(prefix string, tree map[string]any, out map[string]string) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case string:
			out[full] = v
		case nil:
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}

// Translate returns the message for key in the active locale, then the
// fallback locale, formatted with args. Unknown keys come back unchanged.
func (t *Translator) Translate(key string, args ...any) string {
	key = strings.TrimSpace(key)
	for _, tag := range []language.Tag{t.locale, t.fallback} {
		if t.keys[tag.String()][key] {
			return message.NewPrinter(tag, message.Catalog(t.builder)).Sprintf(key, args...)
		}
	}
	return key
}

// Has reports whether key is defined for the active or fallback locale.
func (t *Translator) Has(key string) bool {
	return t.keys[t.locale.String()][key] || t.keys[t.fallback.String()][key]
}

// Locale returns the active locale.
func (t *Translator) Locale() string {
	return t.locale.String()
}

// Locales returns the locales that have a catalog, sorted.
func (t *Translator) Locales() []string {
	out := make([]string, 0, len(t.keys))
	for name := range t.keys {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func parseTag(locale string) (language.Tag, error) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.English, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return tag, nil
}
