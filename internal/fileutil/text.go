package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrInvalidUTF8  = errors.New("file is not valid UTF-8 text")
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

// MaxTextFileSize caps ReadText input (10MB).
var MaxTextFileSize int64 = 10 << 20

// ReadText reads a text file as UTF-8. See DecodeText.
func ReadText(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- path is user-provided input
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return DecodeText(f)
}

// DecodeText reads all of r. A byte order mark selects UTF-8 or UTF-16 and
// is dropped; without one the text must already be valid UTF-8.
func DecodeText(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxTextFileSize+1))
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	if int64(len(raw)) > MaxTextFileSize {
		return "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, MaxTextFileSize)
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(encoding.UTF8Validator), raw)
	switch {
	case errors.Is(err, encoding.ErrInvalidUTF8):
		return "", ErrInvalidUTF8
	case err != nil:
		return "", fmt.Errorf("decoding text: %w", err)
	}
	return string(out), nil
}
