package fileutil

import (
	"errors"
	"fmt"
	"os"
)

// WritePage stages an HTML document in the temp directory so the browser can
// open it over file://. remove deletes it; on error there is nothing to
// remove and remove is nil.
func WritePage(html string) (path string, remove func(), err error) {
	f, err := os.CreateTemp("", "page2doc-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp page: %w", err)
	}
	path = f.Name()
	remove = func() { _ = os.Remove(path) }

	_, werr := f.WriteString(html)
	if err := errors.Join(werr, f.Close()); err != nil {
		remove()
		return "", nil, fmt.Errorf("writing temp page: %w", err)
	}
	return path, remove, nil
}
