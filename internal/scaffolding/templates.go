package scaffolding

// ViewTemplate is a starter view that Generate can write.
type ViewTemplate struct {
	Name        string
	Description string
	Category    string
	// Dir is the directory below the views root the view is written to.
	Dir     string
	Content string
}

// TemplateContext is the data the templates are executed with. Templates
// use [[ ]] delimiters so the {{ }} of the views pass through untouched.
type TemplateContext struct {
	Name        string
	Title       string
	ProjectName string
	Date        string
}

// BuiltinTemplates returns the built-in view templates by name.
func BuiltinTemplates() map[string]ViewTemplate {
	return map[string]ViewTemplate{
		"page": {
			Name:        "page",
			Description: "Page extending the base layout with a content fragment",
			Category:    "pages",
			Dir:         "pages",
			Content: `{% extends "layouts.base" %}

{% block title %}[[ .Title ]]{% endblock %}

{% block content %}
@fragment('content')
<section class="[[ .Name ]]">
  <h1>[[ .Title ]]</h1>
</section>
@endfragment('content')
{% endblock %}
`,
		},
		"layout": {
			Name:        "layout",
			Description: "HTML document layout with title and content blocks",
			Category:    "layouts",
			Dir:         "layouts",
			Content: `<!DOCTYPE html>
<html lang="{{ config('locale') }}">
<head>
  <meta charset="utf-8">
  <title>{% block title %}[[ .ProjectName ]]{% endblock %}</title>
  <link rel="stylesheet" href="@asset('css/app.css')">
</head>
<body>
  @development <div class="env-banner">{{ __env }}</div> @enddevelopment
  <main>{% block content %}{% endblock %}</main>
</body>
</html>
`,
		},
		"form": {
			Name:        "form",
			Description: "Form with CSRF field and per-field validation messages",
			Category:    "components",
			Dir:         "components",
			Content: `<form method="POST" action="{{ action }}" class="[[ .Name ]]">
  @csrf
  <label for="email">Email</label>
  <input id="email" name="email" type="email" value="{{ old.email }}">
  <p>@error('email') <span class="error">{{ message }}</span> @enderror</p>
  <button type="submit">{{ submit|default:"Send" }}</button>
</form>
`,
		},
		"alert": {
			Name:        "alert",
			Description: "Dismissible alert box",
			Category:    "components",
			Dir:         "components",
			Content: `<div class="alert alert-{{ type|default:"info" }}" role="alert">
  {{ message }}
</div>
`,
		},
		"card": {
			Name:        "card",
			Description: "Card with optional image, title and body",
			Category:    "components",
			Dir:         "components",
			Content: `<article class="card">
  {% if image %}<img src="@asset(image)" alt="{{ title }}">{% endif %}
  <h2>{{ title }}</h2>
  <div class="card-body">{{ body }}</div>
</article>
`,
		},
		"error": {
			Name:        "error",
			Description: "Error view rendered in place of a failed view",
			Category:    "errors",
			Dir:         "errors",
			Content: `<div class="render-error">
  @development <pre>{{ view }}: {{ error }}</pre> @enddevelopment
  @production <p>This part of the page could not be displayed.</p> @endproduction
</div>
`,
		},
	}
}
