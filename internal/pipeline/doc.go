// Package pipeline implements the Markdown-to-HTML half of the export path.
//
// Stages, in the order the exporter runs them:
//   - source normalization (line endings, reserved runes)
//   - title resolution from the first level-1 heading
//   - diagram block extraction into placeholder lines
//   - Markdown preprocessing (highlight syntax, blank line compression)
//   - Markdown to HTML conversion via Goldmark (parse, then render)
//   - composition into the page template with CSS, diagram script,
//     restored diagram containers, title and body
//
// PDF generation is handled by the root mdnotes package using headless
// Chromium (go-rod). Every stage here is pure and safe for concurrent use.
package pipeline
