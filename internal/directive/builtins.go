package directive

import (
	"fmt"
	"strings"
)

// Capability function names the built-in directives compile to calls of.
const (
	FuncCSRFToken        = "csrfToken"
	FuncCheckPermission  = "checkPermission"
	FuncIsAuthenticated  = "isAuthenticated"
	FuncHasError         = "hasError"
	FuncFirstError       = "firstError"
	FuncTranslate        = "translate"
	FuncAsset            = "asset"
	FuncURL              = "url"
	FuncRoute            = "route"
	FuncConfig           = "config"
	FuncIsProduction     = "isProduction"
	FuncIsDevelopment    = "isDevelopment"
	FuncCheckEnvironment = "checkEnvironment"
)

// ErrorsKey is the data key the error bag is exposed under.
const ErrorsKey = "errors"

const endIf = "{% endif %}"

// Builtins returns a registry holding the built-in vocabulary.
func Builtins() *Registry {
	r := NewRegistry()
	for name, fn := range builtinDirectives() {
		// Built-in names are valid identifiers.
		_ = r.RegisterDirective(name, fn)
	}
	return r
}

func builtinDirectives() map[string]CompileFunc {
	return map[string]CompileFunc{
		"method": func(expr string) string {
			return methodField(strings.ToUpper(stripQuotes(expr)))
		},
		"put":    fixed(methodField("PUT")),
		"patch":  fixed(methodField("PATCH")),
		"delete": fixed(methodField("DELETE")),

		"csrf": fixed(`<input type="hidden" name="_token" value="{{ ` + FuncCSRFToken + `() }}">`),

		"can": func(expr string) string {
			return "{% if " + call(FuncCheckPermission, expr) + " %}"
		},
		"endcan": fixed(endIf),
		"cannot": func(expr string) string {
			return "{% if not " + call(FuncCheckPermission, expr) + " %}"
		},
		"endcannot": fixed(endIf),

		"auth":     fixed("{% if " + call(FuncIsAuthenticated, "") + " %}"),
		"endauth":  fixed(endIf),
		"guest":    fixed("{% if not " + call(FuncIsAuthenticated, "") + " %}"),
		"endguest": fixed(endIf),

		"error": func(expr string) string {
			args := ErrorsKey + ", " + expr
			return "{% if " + call(FuncHasError, args) + " %}" +
				"{% with message=" + call(FuncFirstError, args) + " %}"
		},
		"enderror": fixed("{% endwith %}" + endIf),

		"lang": output(FuncTranslate),

		"fragment": func(expr string) string {
			return fmt.Sprintf("<!-- fragment: %s -->", stripQuotes(expr))
		},
		"endfragment": func(expr string) string {
			return fmt.Sprintf("<!-- endfragment: %s -->", stripQuotes(expr))
		},

		"asset":  output(FuncAsset),
		"url":    output(FuncURL),
		"route":  output(FuncRoute),
		"config": output(FuncConfig),

		"production":     fixed("{% if " + call(FuncIsProduction, "") + " %}"),
		"endproduction":  fixed(endIf),
		"development":    fixed("{% if " + call(FuncIsDevelopment, "") + " %}"),
		"enddevelopment": fixed(endIf),
		"env": func(expr string) string {
			return "{% if " + call(FuncCheckEnvironment, expr) + " %}"
		},
		"endenv": fixed(endIf),
	}
}

func fixed(markup string) CompileFunc {
	return func(string) string { return markup }
}

func output(fn string) CompileFunc {
	return func(expr string) string {
		return "{{ " + call(fn, expr) + " }}"
	}
}

func call(fn, args string) string {
	return fn + "(" + args + ")"
}

func methodField(verb string) string {
	return `<input type="hidden" name="_method" value="` + verb + `">`
}

// stripQuotes drops surrounding whitespace, parentheses and quotes.
func stripQuotes(expr string) string {
	return strings.Trim(strings.TrimSpace(expr), `()'" `)
}
