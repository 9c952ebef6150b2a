package page2doc

import (
	"time"

	"github.com/alnah/go-page2doc/internal/dateutil"
)

// DefaultDateFormat is the timestamp layout used in artifact names.
const DefaultDateFormat = "YYYY-MM-DD-HH-mm-ss"

// Filename returns the artifact name for kind at t, for example
// markdown-2026-10-17-14-03-22.pdf. Date and time are both taken in t's
// location, so two calls within the same second agree.
func Filename(kind Kind, t time.Time) string {
	name, _ := FilenameWithFormat(kind, DefaultDateFormat, t)
	return name
}

// FilenameWithFormat is Filename with a custom date format (tokens or a
// preset name, see internal/dateutil). Characters that cannot appear in a
// file name, such as the slashes of the "us" preset, become "-".
func FilenameWithFormat(kind Kind, format string, t time.Time) (string, error) {
	if format == "" {
		format = DefaultDateFormat
	}
	layout, err := dateutil.Compile(format)
	if err != nil {
		return "", err
	}
	return string(kind) + "-" + layout.Stamp(t) + "." + kind.Extension(), nil
}
