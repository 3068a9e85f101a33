package renderer

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/quill/internal/config"
	"github.com/conneroisu/quill/internal/directive"
	"github.com/conneroisu/quill/internal/session"
)

// Capabilities are the host functions the built-in directives call at
// render time. Nil fields fall back to the defaults described on each.
type Capabilities struct {
	// CheckPermission backs @can and @cannot. Defaults to denying.
	CheckPermission func(permission any) bool
	// IsAuthenticated backs @auth and @guest. Defaults to false.
	IsAuthenticated func() bool
	// Translate backs @lang. Defaults to the catalogs under langPath.
	Translate func(key string, args ...any) string
	// Asset prefixes paths with assetURL, or appURL when unset.
	Asset func(path string) string
	// URL prefixes paths with appURL.
	URL func(path string) string
	// Route looks the name up under routes, falling back to the name.
	Route func(name string, params ...any) string
	// CSRFToken defaults to the session token when security.csrfToken is on.
	CSRFToken func() string
	// Environment overrides the resolved environment name.
	Environment func() string
}

// templateFuncs builds the functions exposed to views for one render.
// Parameters are typed any because pongo2 passes template values through
// unconverted.
func (s *Service) templateFuncs(ctx context.Context, st *state) map[string]any {
	caps := s.caps
	settings := st.settings

	environment := func() string {
		if caps.Environment != nil {
			return strings.ToLower(caps.Environment())
		}
		return settings.Environment
	}

	return map[string]any{
		directive.FuncCheckPermission: func(permission any) bool {
			if caps.CheckPermission == nil {
				return false
			}
			return caps.CheckPermission(permission)
		},
		directive.FuncIsAuthenticated: func() bool {
			return caps.IsAuthenticated != nil && caps.IsAuthenticated()
		},
		directive.FuncTranslate: func(key any, args ...any) string {
			if caps.Translate != nil {
				return caps.Translate(toString(key), args...)
			}
			if st.translator == nil {
				return toString(key)
			}
			return st.translator.Translate(toString(key), args...)
		},
		directive.FuncAsset: func(path any) string {
			if caps.Asset != nil {
				return caps.Asset(toString(path))
			}
			base := settings.AssetURL
			if base == "" {
				base = settings.AppURL
			}
			return joinURL(base, toString(path))
		},
		directive.FuncURL: func(path any) string {
			if caps.URL != nil {
				return caps.URL(toString(path))
			}
			return joinURL(settings.AppURL, toString(path))
		},
		directive.FuncRoute: func(name any, params ...any) string {
			if caps.Route != nil {
				return caps.Route(toString(name), params...)
			}
			return namedRoute(settings.Routes, toString(name), params)
		},
		directive.FuncConfig: func(key any, def ...any) any {
			var fallback any = ""
			if len(def) > 0 {
				fallback = def[0]
			}
			value := st.snapshot.Get(toString(key), fallback)
			if value == nil {
				return ""
			}
			return value
		},
		directive.FuncIsProduction: func() bool {
			return environment() == config.EnvProduction
		},
		directive.FuncIsDevelopment: func() bool {
			env := environment()
			return env == config.EnvDevelopment || env == "local"
		},
		directive.FuncCheckEnvironment: func(names ...any) bool {
			env := environment()
			for _, name := range flattenNames(names) {
				if strings.EqualFold(name, env) {
					return true
				}
			}
			return false
		},
		directive.FuncCSRFToken: func() string {
			if caps.CSRFToken != nil {
				return caps.CSRFToken()
			}
			if !settings.Security.CSRFToken || s.session == nil {
				return ""
			}
			token, err := session.CSRFToken(s.session)
			if err != nil {
				s.logger.Warn(ctx, err, "csrf token unavailable")
				return ""
			}
			return token
		},
		directive.FuncHasError: func(bag any, field any) bool {
			return errorBag(bag).Has(toString(field))
		},
		directive.FuncFirstError: func(bag any, field any) string {
			return errorBag(bag).First(toString(field))
		},
	}
}

// errorBag accepts the shapes an errors value can take in view data.
func errorBag(v any) *session.ErrorBag {
	switch bag := v.(type) {
	case *session.ErrorBag:
		return bag
	case map[string][]string:
		return session.NewErrorBag(bag)
	case map[string]string:
		out := make(map[string][]string, len(bag))
		for field, message := range bag {
			out[field] = []string{message}
		}
		return session.NewErrorBag(out)
	case map[string]any:
		out := make(map[string][]string, len(bag))
		for field, messages := range bag {
			out[field] = flattenNames([]any{messages})
		}
		return session.NewErrorBag(out)
	default:
		return nil
	}
}

// flattenNames turns strings and lists of strings into one list.
func flattenNames(values []any) []string {
	var out []string
	for _, value := range values {
		switch v := value.(type) {
		case nil:
		case []string:
			out = append(out, v...)
		case []any:
			out = append(out, flattenNames(v)...)
		default:
			out = append(out, toString(v))
		}
	}
	return out
}

func namedRoute(routes map[string]string, name string, params []any) string {
	path, ok := routes[name]
	if !ok {
		return name
	}
	for _, param := range params {
		values, ok := param.(map[string]any)
		if !ok {
			continue
		}
		for key, value := range values {
			path = strings.ReplaceAll(path, "{"+key+"}", toString(value))
		}
	}
	return path
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
