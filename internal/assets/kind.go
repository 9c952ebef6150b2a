package assets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid asset directory")
	ErrAssetRead        = errors.New("failed to read asset")
)

// Kind is a family of assets sharing a directory and file extension.
type Kind uint8

const (
	Style Kind = iota
	Template
)

func (k Kind) String() string {
	if k == Template {
		return "template"
	}
	return "style"
}

func (k Kind) dir() string {
	if k == Template {
		return "templates"
	}
	return "styles"
}

func (k Kind) ext() string {
	if k == Template {
		return ".html"
	}
	return ".css"
}

func (k Kind) notFound(name string) error {
	if k == Template {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return fmt.Errorf("%w: %q", ErrStyleNotFound, name)
}

// path maps a bare asset name to its slash-separated location. Names carry
// no extension and no separators, so one name can never address another
// directory or a file of another kind.
func (k Kind) path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty %s name", ErrInvalidAssetName, k)
	}
	if strings.ContainsAny(name, `/\.`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return k.dir() + "/" + name + k.ext(), nil
}

// IsNotFound reports whether err means an asset of either kind is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}
