// Package assets provides the stylesheet, document template and diagram
// script used to compose exported notes.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the exporter. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when an asset is
// missing, so a user can override only the stylesheet and keep the rest.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css      # Document stylesheet (light and dark variants)
//	├── templates/
//	│   └── {name}.html     # Page template with {{TITLE}} and {{CONTENT}}
//	└── scripts/
//	    └── {name}.js       # Diagram initialization snippet
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
