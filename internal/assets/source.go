package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed styles templates
var builtinFS embed.FS

// Source is one layer of assets.
type Source interface {
	// Read returns the asset content, a kind-specific not-found error, or
	// ErrInvalidAssetName.
	Read(k Kind, name string) (string, error)
	// Names lists the assets of kind k, without extension.
	Names(k Kind) ([]string, error)
}

// Builtin returns the assets compiled into the binary.
func Builtin() Source {
	return fsSource{fsys: builtinFS}
}

type fsSource struct {
	fsys fs.FS
}

func (s fsSource) Read(k Kind, name string) (string, error) {
	p, err := k.path(name)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", k.notFound(name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

func (s fsSource) Names(k Kind) ([]string, error) {
	return listNames(s.fsys, k)
}

// DirSource serves assets from a directory on disk. Lookups are confined to
// that directory, symlinks included.
type DirSource struct {
	dir string
}

// NewDirSource checks that dir is a readable directory.
func NewDirSource(dir string) (*DirSource, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	defer root.Close()

	if _, err := fs.ReadDir(root.FS(), "."); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	return &DirSource{dir: abs}, nil
}

// Dir returns the absolute overlay directory.
func (s *DirSource) Dir() string { return s.dir }

func (s *DirSource) Read(k Kind, name string) (string, error) {
	p, err := k.path(name)
	if err != nil {
		return "", err
	}
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer root.Close()

	data, err := root.ReadFile(filepath.FromSlash(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", k.notFound(name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

func (s *DirSource) Names(k Kind) ([]string, error) {
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer root.Close()
	return listNames(root.FS(), k)
}

// listNames treats a missing kind directory as empty.
func listNames(fsys fs.FS, k Kind) ([]string, error) {
	entries, err := fs.ReadDir(fsys, k.dir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(e.Name(), k.ext())
		if !ok || name == "" || strings.Contains(name, ".") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

var (
	_ Source = fsSource{}
	_ Source = (*DirSource)(nil)
)
