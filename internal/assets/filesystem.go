package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader reads operator-supplied assets from a directory laid out
// like the embedded tree.
type FilesystemLoader struct {
	root string
}

// NewFilesystemLoader resolves dir to an absolute, symlink-free path and
// checks that it is a readable directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}

	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidBasePath, root)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidBasePath, root)
	}

	return &FilesystemLoader{root: root}, nil
}

// Root returns the resolved directory.
func (f *FilesystemLoader) Root() string { return f.root }

// Load implements Loader.
func (f *FilesystemLoader) Load(kind Kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	path, err := f.contained(filepath.FromSlash(kind.relPath(name)))
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path) // #nosec G304 -- contained below root
	if errors.Is(err, fs.ErrNotExist) {
		return "", notFound(kind, name)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// contained joins rel onto root and fails if the result, after resolving
// symlinks, leaves root. A missing file keeps its unresolved path.
func (f *FilesystemLoader) contained(rel string) (string, error) {
	path := filepath.Join(f.root, rel)
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	if !strings.HasPrefix(path, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, rel)
	}
	return path, nil
}

var _ Loader = (*FilesystemLoader)(nil)
