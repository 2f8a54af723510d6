// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/magiconair/properties"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	lineSeparator = "\n"
	dateLayout    = "Mon Jan 02 15:04:05 MST 2006"
	hexDigits     = "0123456789ABCDEF"
)

// ErrMalformed is returned by Load for input that is not a valid
// properties stream.
var ErrMalformed = errors.New("malformed settings")

// Load parses a properties stream encoded as ISO-8859-1. Escapes, line
// continuations and the "=", ":" and whitespace separators are honoured.
// Property expansion is disabled so values are read verbatim.
func Load(r io.Reader) (*Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	loader := &properties.Loader{Encoding: properties.ISO_8859_1, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	s := New()
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		s.Put(k, v)
	}
	return s, nil
}

// Store writes s as a properties stream in ISO-8859-1 with "\n" line
// endings. When comments is not empty it is written first as comment
// lines. The date comment of the format is emitted and then discarded by a
// DateIgnoringWriter, which leaves its line separator behind: output
// without comments therefore starts with an empty line.
func Store(w io.Writer, s *Settings, comments string) error {
	return store(w, s, comments, time.Now())
}

func store(w io.Writer, s *Settings, comments string, at time.Time) error {
	enc := transform.NewWriter(w, charmap.ISO8859_1.NewEncoder())
	bw := bufio.NewWriter(enc)
	dw := NewDateIgnoringWriter(bw)

	sw := &chunkWriter{w: dw}
	if comments != "" {
		writeComments(sw, comments)
	}
	sw.write("#" + at.Format(dateLayout))
	sw.write(lineSeparator)
	for k, v := range s.All() {
		sw.write(escape(k, true) + "=" + escape(v, false))
		sw.write(lineSeparator)
	}
	if sw.err != nil {
		return fmt.Errorf("writing settings: %w", sw.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Marshal returns the bytes Store would write.
func Marshal(s *Settings, comments string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Store(&buf, s, comments); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFile loads settings from path. A missing file yields an error
// matching fs.ErrNotExist.
func ReadFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// WriteFile stores settings at path, creating parent directories.
func WriteFile(path string, s *Settings, comments string) error {
	data, err := Marshal(s, comments)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// chunkWriter issues one Write per chunk and keeps the first error.
type chunkWriter struct {
	w   io.StringWriter
	err error
}

func (c *chunkWriter) write(s string) {
	if c.err != nil {
		return
	}
	_, c.err = c.w.WriteString(s)
}

// writeComments emits comment text line by line. Characters above 0xFF are
// written as \uXXXX escapes and every line that does not already start with
// "#" or "!" gets a "#" prefix.
func writeComments(w *chunkWriter, comments string) {
	units := utf16.Encode([]rune(comments))
	n := len(units)
	w.write("#")
	last := 0
	for cur := 0; cur < n; cur++ {
		c := units[cur]
		if c <= 0xff && c != '\n' && c != '\r' {
			continue
		}
		if last != cur {
			w.write(string(utf16.Decode(units[last:cur])))
		}
		if c > 0xff {
			w.write(unicodeEscape(c))
		} else {
			w.write(lineSeparator)
			if c == '\r' && cur != n-1 && units[cur+1] == '\n' {
				cur++
			}
			if cur == n-1 || (units[cur+1] != '#' && units[cur+1] != '!') {
				w.write("#")
			}
		}
		last = cur + 1
	}
	if last != n {
		w.write(string(utf16.Decode(units[last:n])))
	}
	w.write(lineSeparator)
}

// escape converts a key or value to its stored form. Spaces are escaped
// everywhere in keys and only in leading position in values.
func escape(s string, isKey bool) string {
	var sb strings.Builder
	for i, c := range utf16.Encode([]rune(s)) {
		if c > 61 && c < 127 {
			if c == '\\' {
				sb.WriteString(`\\`)
			} else {
				sb.WriteByte(byte(c))
			}
			continue
		}
		switch c {
		case ' ':
			if i == 0 || isKey {
				sb.WriteByte('\\')
			}
			sb.WriteByte(' ')
		case '\t':
			sb.WriteString(`\t`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\f':
			sb.WriteString(`\f`)
		case '=', ':', '#', '!':
			sb.WriteByte('\\')
			sb.WriteByte(byte(c))
		default:
			if c < 0x20 || c > 0x7e {
				sb.WriteString(unicodeEscape(c))
			} else {
				sb.WriteByte(byte(c))
			}
		}
	}
	return sb.String()
}

func unicodeEscape(c uint16) string {
	return string([]byte{
		'\\', 'u',
		hexDigits[c>>12&0xf], hexDigits[c>>8&0xf], hexDigits[c>>4&0xf], hexDigits[c&0xf],
	})
}
