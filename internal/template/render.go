package template

import (
	"fmt"
	"strings"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/plumenote/plume/internal/config"
)

// RenderError names the template whose evaluation failed; the wrapped
// text/template error carries the offending expression and its position.
type RenderError struct {
	Name string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Name, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Render evaluates a template string against the registry. Rendering is a
// pure function of its inputs; all filters are side-effect free.
func Render(name, text string, ctx Context, cfg *config.Config) (string, error) {
	tmpl, err := texttemplate.New(name).
		Funcs(sprig.TxtFuncMap()).
		Funcs(Filters(cfg)).
		Option("missingkey=zero").
		Parse(text)
	if err != nil {
		return "", &RenderError{Name: name, Err: err}
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, map[string]any(ctx)); err != nil {
		return "", &RenderError{Name: name, Err: err}
	}
	return b.String(), nil
}

// RenderFilename evaluates the filename template and flattens the result
// to a single trimmed line, since a rendered name must never contain
// newlines or stray padding.
func RenderFilename(text string, ctx Context, cfg *config.Config) (string, error) {
	out, err := Render("filename", text, ctx, cfg)
	if err != nil {
		return "", err
	}

	out = strings.ReplaceAll(out, "\n", "")
	out = strings.ReplaceAll(out, "\r", "")
	return strings.TrimSpace(out), nil
}
