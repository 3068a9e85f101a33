package renderer

import (
	"context"
	"strings"

	quillerrors "github.com/conneroisu/quill/internal/errors"
)

// View is a single-use render request built fluently:
//
//	out, err := svc.View("pages.home").With(data).Fragment("content").Render(ctx)
type View struct {
	service   *Service
	name      string
	data      map[string]any
	fragments []string
}

// View starts a render request for the named view.
func (s *Service) View(name string) *View {
	return &View{service: s, name: name, data: make(map[string]any)}
}

// With merges data into the request. Later calls win.
func (v *View) With(data map[string]any) *View {
	for key, value := range data {
		v.data[key] = value
	}
	return v
}

// Fragment limits the output to the named fragments.
func (v *View) Fragment(names ...string) *View {
	v.fragments = append([]string(nil), names...)
	return v
}

// FragmentIf selects names when cond holds and fallback otherwise. An
// empty fallback leaves the selection unchanged.
func (v *View) FragmentIf(cond bool, names []string, fallback ...string) *View {
	switch {
	case cond:
		v.fragments = append([]string(nil), names...)
	case len(fallback) > 0:
		v.fragments = append([]string(nil), fallback...)
	}
	return v
}

// Render renders the view. With fragments selected the output is reduced
// to their bodies, and the names are available to the view as
// __fragments.
func (v *View) Render(ctx context.Context) (string, error) {
	if strings.TrimSpace(v.name) == "" {
		return "", quillerrors.ErrMissingView()
	}
	if len(v.fragments) > 0 {
		v.data[FragmentsKey] = v.fragments
	}

	out, err := v.service.Render(ctx, v.name, v.data)
	if err != nil {
		return "", err
	}
	if len(v.fragments) > 0 {
		out = ExtractFragments(out, v.fragments)
	}
	return out, nil
}
