// Package dateutil compiles human date patterns such as
// "YYYY-MM-DD-HH-mm-ss" into Go layouts and renders them as timestamps that
// are safe inside a file name.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// Presets are named shortcuts accepted wherever a pattern is.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"stamp":    "YYYY-MM-DD-HH-mm-ss",
}

// tokens by leading letter, longest first. MM is the month, mm the minute.
var tokens = map[byte][][2]string{
	'Y': {{"YYYY", "2006"}, {"YY", "06"}},
	'M': {{"MMMM", "January"}, {"MMM", "Jan"}, {"MM", "01"}, {"M", "1"}},
	'D': {{"DD", "02"}, {"D", "2"}},
	'H': {{"HH", "15"}},
	'm': {{"mm", "04"}},
	's': {{"ss", "05"}},
}

// Layout is a compiled pattern.
type Layout struct {
	layout string
}

// Compile turns a pattern or preset name into a Layout. Tokens: YYYY, YY,
// MMMM, MMM, MM, M, DD, D, HH, mm, ss, matched longest first. A letter left
// over, such as the fifth Y of "YYYYY", is copied like any other character.
// Bracketed text is literal, so "[at] HH" renders as "at 14".
func Compile(pattern string) (Layout, error) {
	if p, ok := Presets[strings.ToLower(pattern)]; ok {
		pattern = p
	}
	switch {
	case pattern == "":
		return Layout{}, fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(pattern) > MaxDateFormatLength:
		return Layout{}, fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	rest := pattern
	for rest != "" {
		if lit, ok := strings.CutPrefix(rest, "["); ok {
			text, after, closed := strings.Cut(lit, "]")
			if !closed {
				pos := len(pattern) - len(rest)
				return Layout{}, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, pos)
			}
			b.WriteString(text)
			rest = after
			continue
		}
		n := 1
		if tok, layout, ok := lookup(rest); ok {
			b.WriteString(layout)
			n = len(tok)
		} else {
			b.WriteByte(rest[0])
		}
		rest = rest[n:]
	}
	return Layout{layout: b.String()}, nil
}

func lookup(s string) (token, layout string, ok bool) {
	for _, t := range tokens[s[0]] {
		if strings.HasPrefix(s, t[0]) {
			return t[0], t[1], true
		}
	}
	return "", "", false
}

// GoLayout returns the equivalent time.Format layout.
func (l Layout) GoLayout() string { return l.layout }

// Format renders t.
func (l Layout) Format(t time.Time) string { return t.Format(l.layout) }

// stampReplacer maps characters that are unsafe or awkward in file names.
var stampReplacer = strings.NewReplacer(
	"/", "-", `\`, "-", ":", "-", " ", "-", ",", "",
)

// Stamp renders t for use inside a file name: path separators, colons and
// spaces become "-" and commas are dropped.
func (l Layout) Stamp(t time.Time) string {
	return stampReplacer.Replace(t.Format(l.layout))
}

// Format compiles pattern and renders t with it.
func Format(pattern string, t time.Time) (string, error) {
	l, err := Compile(pattern)
	if err != nil {
		return "", err
	}
	return l.Format(t), nil
}
