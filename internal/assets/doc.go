// Package assets holds the stylesheets and page templates that documents and
// diagrams are rendered with.
//
// Two layers are searched in order: an optional overlay directory chosen by
// the user, then the copies compiled into the binary. A file missing from
// the overlay falls through to the built-in one; any other overlay failure
// is reported as is.
//
//	{overlay}/
//	├── styles/{name}.css
//	└── templates/
//	    ├── document.html
//	    └── diagram.html
//
// Overlay reads go through an os.Root, so neither ".." nor a symlink can
// reach outside the overlay directory.
package assets
