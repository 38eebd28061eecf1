package assets

// Built-in asset names.
const (
	DefaultStyleName    = "default"
	DefaultTemplateName = "document"
	DiagramScriptName   = "mermaid-init"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the embedded loader.
// The name should not include the .css extension or path components.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML template by name using the embedded loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// LoadScript loads a JavaScript snippet by name using the embedded loader.
func LoadScript(name string) (string, error) {
	return defaultLoader.LoadScript(name)
}

// Bundle is the set of assets needed to compose one document.
type Bundle struct {
	Style         string // Base stylesheet
	HighlightCSS  string // Syntax highlighting rules for code blocks
	Template      string // Page template
	DiagramScript string // Diagram init snippet
}

// CSS returns the full stylesheet to inline into the page head.
func (b Bundle) CSS() string {
	if b.HighlightCSS == "" {
		return b.Style
	}
	return b.Style + "\n" + b.HighlightCSS
}

// LoadBundle resolves every asset of a document through loader.
// An empty style selects DefaultStyleName.
func LoadBundle(loader AssetLoader, style string) (Bundle, error) {
	if style == "" {
		style = DefaultStyleName
	}

	css, err := loader.LoadStyle(style)
	if err != nil {
		return Bundle{}, err
	}
	tmpl, err := loader.LoadTemplate(DefaultTemplateName)
	if err != nil {
		return Bundle{}, err
	}
	script, err := loader.LoadScript(DiagramScriptName)
	if err != nil {
		return Bundle{}, err
	}
	hl, err := HighlightCSS()
	if err != nil {
		return Bundle{}, err
	}

	return Bundle{
		Style:         css,
		HighlightCSS:  hl,
		Template:      tmpl,
		DiagramScript: script,
	}, nil
}
