package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngHeader is the PNG signature followed by an IHDR chunk prefix.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")

func TestLoadImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pngPath := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(pngPath, pngHeader, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	svgPath := filepath.Join(dir, "logo.svg")
	if err := os.WriteFile(svgPath, []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		wantPrefix string
		wantErr    error
	}{
		{name: "png sniffed", path: pngPath, wantPrefix: "data:image/png;base64,"},
		{name: "svg by extension", path: svgPath, wantPrefix: "data:image/svg+xml;base64,"},
		{name: "text rejected", path: txtPath, wantErr: ErrUnsupportedImage},
		{name: "missing file", path: filepath.Join(dir, "nope.png"), wantErr: ErrAssetRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LoadImage(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadImage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadImage() error = %v", err)
			}
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("LoadImage() = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}
