package pipeline

import (
	"strconv"
	"strings"
)

// Diagram fences.
const (
	DiagramFence = "```mermaid"
	fenceClose   = "```"
)

// Placeholder runes live in the Unicode Private Use Area next to the highlight
// markers. Goldmark passes them through untouched and NormalizeSource strips
// them from user input, so a placeholder can only come from ExtractDiagrams.
const (
	PlaceholderPrefix = "\uE010mermaid:"
	placeholderSuffix = "\uE011"
)

// DiagramContainerClass is the class the diagram script looks for.
const DiagramContainerClass = "mermaid"

// Placeholder returns the token standing in for diagram i.
// The closing rune keeps token 1 from matching inside token 10.
func Placeholder(i int) string {
	return PlaceholderPrefix + strconv.Itoa(i) + placeholderSuffix
}

// ExtractDiagrams moves every mermaid fence out of markdown and leaves a
// placeholder line in its place. Diagram i is the i-th fence from the top.
//
// Lines outside diagrams are copied with a trailing newline. Placeholder lines
// are separated from neighbouring text by blank lines so the renderer keeps
// them in a paragraph of their own. A fence still open at end of input is
// dropped along with its content.
func ExtractDiagrams(markdown string) (string, []string) {
	if markdown == "" {
		return "", nil
	}

	lines := strings.Split(markdown, "\n")
	if n := len(lines); lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var (
		out       strings.Builder
		block     strings.Builder
		diagrams  []string
		capturing bool
		lastBlank = true
		needGap   bool
	)
	out.Grow(len(markdown))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case capturing && trimmed == fenceClose:
			capturing = false
			diagrams = append(diagrams, block.String())
			if !lastBlank {
				out.WriteByte('\n')
			}
			out.WriteString(Placeholder(len(diagrams) - 1))
			out.WriteByte('\n')
			lastBlank = false
			needGap = true

		case capturing:
			block.WriteString(line)
			block.WriteByte('\n')

		case trimmed == DiagramFence:
			capturing = true
			block.Reset()

		default:
			if needGap && trimmed != "" {
				out.WriteByte('\n')
			}
			needGap = false
			out.WriteString(line)
			out.WriteByte('\n')
			lastBlank = trimmed == ""
		}
	}

	return out.String(), diagrams
}

// diagramEscaper escapes what the HTML parser would otherwise read as markup.
// The diagram script reads textContent, which decodes the entities again.
var diagramEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;")

// DiagramContainer wraps a diagram source in the markup the diagram script
// renders. The source is trimmed; only '&' and '<' are escaped, so arrows
// such as "-->" stay verbatim.
func DiagramContainer(source string) string {
	return `<div class="` + DiagramContainerClass + `">` + diagramEscaper.Replace(strings.TrimSpace(source)) + `</div>`
}

// RestoreDiagrams replaces each placeholder in html with its diagram container,
// in ascending index order. A placeholder that fills a whole paragraph takes
// the paragraph with it.
func RestoreDiagrams(html string, diagrams []string) string {
	for i, src := range diagrams {
		token := Placeholder(i)
		container := DiagramContainer(src)
		html = strings.ReplaceAll(html, "<p>"+token+"</p>", container)
		html = strings.ReplaceAll(html, token, container)
	}
	return html
}

// HasPlaceholders reports whether s still carries a diagram placeholder.
func HasPlaceholders(s string) bool {
	return strings.Contains(s, PlaceholderPrefix)
}
