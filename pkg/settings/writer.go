// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"io"
	"regexp"
)

// datePrefix matches chunks that begin with a timestamp comment such as
// "#Tue Mar 04 10:11:12 UTC 2025". Day and month names are matched
// case-insensitively in short or long form, numeric fields are lenient and
// any trailing text is ignored.
var datePrefix = regexp.MustCompile(
	`^#(?i:Mon(?:day)?|Tue(?:sday)?|Wed(?:nesday)?|Thu(?:rsday)?|Fri(?:day)?|Sat(?:urday)?|Sun(?:day)?) ` +
		`(?i:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?) ` +
		`\d+ \d+:\d+:\d+ \S+ \d+`)

// DateIgnoringWriter forwards every chunk written to it except chunks that
// start with a timestamp comment, which are dropped while still reporting
// success. Each Write call is one chunk.
//
// The filter does not look at line structure. A chunk that happens to begin
// with text shaped like a date comment is dropped too.
type DateIgnoringWriter struct {
	w io.Writer
}

// NewDateIgnoringWriter wraps w.
func NewDateIgnoringWriter(w io.Writer) *DateIgnoringWriter {
	return &DateIgnoringWriter{w: w}
}

// IsDateChunk reports whether chunk would be dropped.
func IsDateChunk(chunk string) bool {
	return datePrefix.MatchString(chunk)
}

// Write implements io.Writer.
func (d *DateIgnoringWriter) Write(p []byte) (int, error) {
	if datePrefix.Match(p) {
		return len(p), nil
	}
	return d.w.Write(p)
}

// WriteString implements io.StringWriter.
func (d *DateIgnoringWriter) WriteString(s string) (int, error) {
	if datePrefix.MatchString(s) {
		return len(s), nil
	}
	return io.WriteString(d.w, s)
}
