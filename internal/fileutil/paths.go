// Package fileutil holds the file and path helpers shared by the converter
// and the CLI: classifying arguments, decoding text files, and staging HTML
// pages for the browser.
package fileutil

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// IsURL reports whether s is an absolute http or https URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// IsFilePath reports whether s names a path rather than a bare name: "./a.css"
// and `C:\a.css` are paths, "github" is a name.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// Ext is the lower-cased extension of path, without the dot.
func Ext(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// FileExists reports whether path is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
