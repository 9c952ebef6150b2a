package extract

import "errors"

var (
	// ErrNotFound indicates no rule produced text accepted by the classifier.
	ErrNotFound = errors.New("no content found")

	ErrUnknownKind     = errors.New("unknown content kind")
	ErrInvalidMode     = errors.New("invalid derivation mode")
	ErrNilDocument     = errors.New("nil document")
	ErrInvalidSelector = errors.New("invalid selector")
)
