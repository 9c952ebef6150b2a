// Package yamlutil decodes page2doc config files. Decoding is strict: keys
// the target does not declare and keys given twice are both errors.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps a config document (1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// DecodeError is a rejected document. Source holds the library's report
// with the offending lines quoted, for display.
type DecodeError struct {
	Err    error
	Source string
}

func (e *DecodeError) Error() string { return "yamlutil: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// UnmarshalStrict decodes data into v. Fields absent from data keep the
// values v already holds, so v can arrive pre-filled with defaults.
func UnmarshalStrict(data []byte, v any) error {
	switch {
	case len(data) == 0:
		return ErrNilData
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := dec.Decode(v); err != nil {
		return &DecodeError{Err: err, Source: yaml.FormatError(err, false, true)}
	}
	return nil
}
