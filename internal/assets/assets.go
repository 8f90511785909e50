package assets

import (
	"fmt"
	"strings"
)

// Kind selects which certificate asset a loader reads.
type Kind int

const (
	// Style is the print stylesheet, stored as styles/{name}.css.
	Style Kind = iota
	// Template is the html/template source, stored as templates/{name}.html.
	Template
)

// DefaultName names the built-in certificate template and stylesheet.
const DefaultName = "coa"

// Loader reads one certificate asset by kind and name. The name carries no
// extension. Missing assets report ErrAssetNotFound; unsafe names report
// ErrInvalidAssetName.
type Loader interface {
	Load(kind Kind, name string) (string, error)
}

func (k Kind) String() string {
	if k == Template {
		return "template"
	}
	return "style"
}

// relPath is the slash-separated location of an asset below a base directory.
func (k Kind) relPath(name string) string {
	if k == Template {
		return "templates/" + name + ".html"
	}
	return "styles/" + name + ".css"
}

// ValidateAssetName rejects names that could leave the asset directory or
// change the file extension: empty names, separators and dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

func notFound(kind Kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrAssetNotFound, kind, name)
}
