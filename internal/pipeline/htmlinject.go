package pipeline

import (
	"context"
	"strings"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// ScriptInjector defines the contract for script injection into HTML.
type ScriptInjector interface {
	InjectScript(ctx context.Context, htmlContent, scriptHTML string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized so it cannot close the style element.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}
	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes "</" so the stylesheet cannot end the <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// ScriptInjection injects script markup at the end of the body.
type ScriptInjection struct{}

// InjectScript inserts scriptHTML before the last </body>, or appends it
// when the document has no body end tag.
func (s *ScriptInjection) InjectScript(ctx context.Context, htmlContent, scriptHTML string) string {
	if scriptHTML == "" {
		return htmlContent
	}
	if ctx.Err() != nil {
		return htmlContent
	}

	if idx := strings.LastIndex(strings.ToLower(htmlContent), "</body>"); idx != -1 {
		return htmlContent[:idx] + scriptHTML + htmlContent[idx:]
	}
	return htmlContent + scriptHTML
}

// DiagramScriptHTML builds the external script reference followed by the
// inline init snippet. Inline code is escaped so it cannot end its element.
func DiagramScriptHTML(scriptURL, initScript string) string {
	var b strings.Builder
	if scriptURL != "" {
		b.WriteString(`<script src="`)
		b.WriteString(strings.ReplaceAll(scriptURL, `"`, "%22"))
		b.WriteString(`"></script>`)
	}
	if initScript != "" {
		b.WriteString("<script>")
		b.WriteString(sanitizeScript(initScript))
		b.WriteString("</script>")
	}
	return b.String()
}

func sanitizeScript(js string) string {
	return strings.ReplaceAll(js, "</", `<\/`)
}

// Compile-time interface checks.
var (
	_ CSSInjector    = (*CSSInjection)(nil)
	_ ScriptInjector = (*ScriptInjection)(nil)
)
