package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through Goldmark unchanged (no WithUnsafe needed) and are turned
// into <mark> tags after HTML generation.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

// reservedRunes are private-use runes the pipeline uses as markers.
var reservedRunes = strings.NewReplacer(
	MarkStartPlaceholder, "",
	MarkEndPlaceholder, "",
	"\uE010", "",
	"\uE011", "",
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before Goldmark conversion.
// Fenced code blocks are left byte for byte.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown converts ==highlight== syntax and compresses runs of
// blank lines outside fenced code.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	return mapOutsideFences(content, func(prose string) string {
		return compressBlankLines(convertHighlights(prose))
	})
}

// NormalizeSource converts \r\n and \r to \n and removes the private-use
// runes reserved for pipeline markers.
func NormalizeSource(content string) string {
	return reservedRunes.Replace(crlfOrCR.ReplaceAllString(content, "\n"))
}

func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders converts highlight markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// mapOutsideFences applies fn to every run of lines that is not inside a
// ``` or ~~~ fenced block. Fence lines and their content are copied as is.
func mapOutsideFences(content string, fn func(string) string) string {
	var (
		out   strings.Builder
		prose strings.Builder
		fence string
	)
	out.Grow(len(content))

	flush := func() {
		if prose.Len() > 0 {
			out.WriteString(fn(prose.String()))
			prose.Reset()
		}
	}

	for line := range strings.Lines(content) {
		trimmed := strings.TrimSpace(line)
		switch {
		case fence != "":
			out.WriteString(line)
			if strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "" {
				fence = ""
			}
		case strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~"):
			flush()
			fence = openingFence(trimmed)
			out.WriteString(line)
		default:
			prose.WriteString(line)
		}
	}
	flush()

	return out.String()
}

// openingFence returns the run of fence characters that opens a block.
func openingFence(line string) string {
	c := line[0]
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	return line[:n]
}
