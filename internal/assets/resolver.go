package assets

import "errors"

// Resolver layers an optional custom directory over the embedded assets.
// The custom stylesheet and template are looked up independently; whichever
// is missing falls back to the built-in copy.
type Resolver struct {
	custom   *FilesystemLoader
	embedded *EmbeddedLoader
}

// NewResolver creates a Resolver. An empty dir means embedded assets only.
func NewResolver(dir string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if dir == "" {
		return r, nil
	}
	custom, err := NewFilesystemLoader(dir)
	if err != nil {
		return nil, err
	}
	r.custom = custom
	return r, nil
}

// Load implements Loader. Only ErrAssetNotFound from the custom directory
// triggers the fallback; read and traversal errors are returned as is.
func (r *Resolver) Load(kind Kind, name string) (string, error) {
	if r.custom != nil {
		content, err := r.custom.Load(kind, name)
		if !errors.Is(err, ErrAssetNotFound) {
			return content, err
		}
	}
	return r.embedded.Load(kind, name)
}

// Pair loads the template and stylesheet sharing one name.
func (r *Resolver) Pair(name string) (tmpl, css string, err error) {
	if tmpl, err = r.Load(Template, name); err != nil {
		return "", "", err
	}
	if css, err = r.Load(Style, name); err != nil {
		return "", "", err
	}
	return tmpl, css, nil
}

// Custom reports whether a custom directory is configured.
func (r *Resolver) Custom() bool { return r.custom != nil }

var _ Loader = (*Resolver)(nil)
