// Package assets provides the certificate stylesheet, HTML template and logo
// loading for PDF generation.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed tree (coa.css, coa.html)
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── Resolver          - custom first, embedded fallback
//
// Resolver is the loader used by the renderer. A custom directory may
// override the stylesheet or the template independently; anything missing
// falls back to the embedded copy.
//
// # Directory Structure
//
//	{dir}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}.html
//
// Templates are html/template sources executed against the certificate view
// built by the root package.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within its root.
package assets
