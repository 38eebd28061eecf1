package assets

import (
	"fmt"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

// Chroma styles used for code blocks.
const (
	LightHighlightStyle = "github"
	DarkHighlightStyle  = "monokai"
)

var (
	highlightOnce sync.Once
	highlightCSS  string
	highlightErr  error
)

// HighlightCSS returns the class-based chroma rules for code blocks: the
// light palette unconditionally and the dark palette under a
// prefers-color-scheme media query. The result is computed once.
func HighlightCSS() (string, error) {
	highlightOnce.Do(func() {
		highlightCSS, highlightErr = buildHighlightCSS()
	})
	return highlightCSS, highlightErr
}

func buildHighlightCSS() (string, error) {
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	var b strings.Builder
	if err := formatter.WriteCSS(&b, chromastyles.Get(LightHighlightStyle)); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrHighlightStyle, LightHighlightStyle, err)
	}

	b.WriteString("@media (prefers-color-scheme: dark) {\n")
	if err := formatter.WriteCSS(&b, chromastyles.Get(DarkHighlightStyle)); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrHighlightStyle, DarkHighlightStyle, err)
	}
	b.WriteString("}\n")

	return b.String(), nil
}
