package main

import (
	"io"
	"net/http"
	"os"

	page2doc "github.com/alnah/go-page2doc"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, the HTTP client and converter pool construction.
type Environment struct {
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	HTTPClient *http.Client

	// NewPool builds the converter pool for a batch.
	NewPool func(size int, opts ...page2doc.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		HTTPClient: http.DefaultClient,
		NewPool:    newConverterPool,
	}
}
