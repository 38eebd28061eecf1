package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Template markers.
const (
	TitleMarker   = "{{TITLE}}"
	ContentMarker = "{{CONTENT}}"
)

// DefaultDiagramScriptURL is the diagram renderer loaded by composed pages.
const DefaultDiagramScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"

// Compositor wraps an HTML fragment into a full page built from a template.
// A Compositor is immutable and safe for concurrent use.
type Compositor struct {
	template     string
	css          string
	diagrams     bool
	scriptURL    string
	initScript   string
	cssInjector  CSSInjector
	scriptInject ScriptInjector
}

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// WithStylesheet sets the CSS inlined into the page head.
func WithStylesheet(css string) CompositorOption {
	return func(c *Compositor) {
		c.css = css
	}
}

// WithDiagramScript enables diagram rendering with the given script URL and
// init snippet. An empty URL selects DefaultDiagramScriptURL.
func WithDiagramScript(scriptURL, initScript string) CompositorOption {
	return func(c *Compositor) {
		if scriptURL == "" {
			scriptURL = DefaultDiagramScriptURL
		}
		c.diagrams = true
		c.scriptURL = scriptURL
		c.initScript = initScript
	}
}

// NewCompositor validates the template and applies options.
// Returns ErrInvalidTemplate if a marker is missing.
func NewCompositor(template string, opts ...CompositorOption) (*Compositor, error) {
	for _, marker := range []string{TitleMarker, ContentMarker} {
		if !strings.Contains(template, marker) {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidTemplate, marker)
		}
	}

	c := &Compositor{
		template:     template,
		cssInjector:  &CSSInjection{},
		scriptInject: &ScriptInjection{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DiagramsEnabled reports whether composed pages load the diagram script.
func (c *Compositor) DiagramsEnabled() bool {
	return c.diagrams
}

// Compose builds the page for one document.
//
// The stylesheet goes before </head> and, when the document has diagrams and
// diagram support is enabled, the script goes before </body>. Then diagram
// placeholders in body are restored in index order, {{TITLE}} is replaced
// with title and {{CONTENT}} with body. Neither value is escaped.
//
// Without diagram support the diagram containers are still emitted; they show
// their source as text.
func (c *Compositor) Compose(ctx context.Context, title, body string, diagrams []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page := c.cssInjector.InjectCSS(ctx, c.template, c.css)
	if c.diagrams && len(diagrams) > 0 {
		page = c.scriptInject.InjectScript(ctx, page, DiagramScriptHTML(c.scriptURL, c.initScript))
	}

	body = RestoreDiagrams(body, diagrams)
	if HasPlaceholders(body) {
		return "", fmt.Errorf("%w: unresolved diagram placeholder", ErrGenerate)
	}

	page = strings.ReplaceAll(page, TitleMarker, title)
	page = strings.ReplaceAll(page, ContentMarker, body)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return page, nil
}
