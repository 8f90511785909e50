package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeAsset creates dir/rel with content, creating parents.
func writeAsset(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		ok    bool
	}{
		{"coa", true},
		{"coa-dark", true},
		{"coa_v2", true},
		{"CoaPrint2026", true},
		{"", false},
		{"path/to/style", false},
		{"path\\to\\style", false},
		{"../secret", false},
		{"..\\secret", false},
		{"coa.css", false},
		{".hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if tt.ok && err != nil {
				t.Errorf("ValidateAssetName(%q) = %v, want nil", tt.input, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("ValidateAssetName(%q) = %v, want ErrInvalidAssetName", tt.input, err)
			}
		})
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	if got := Template.relPath("coa"); got != "templates/coa.html" {
		t.Errorf("Template.relPath = %q", got)
	}
	if got := Style.relPath("coa"); got != "styles/coa.css" {
		t.Errorf("Style.relPath = %q", got)
	}
	if Style.String() != "style" || Template.String() != "template" {
		t.Errorf("String() = %q, %q", Style, Template)
	}
}
