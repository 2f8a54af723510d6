// SPDX-License-Identifier: MPL-2.0

// Package manifest reads, writes and merges JAR manifests.
//
// A manifest has a main section and any number of named sections. Each
// section is an ordered list of attributes. Output uses CRLF line endings
// and wraps lines at 72 bytes with single-space continuation lines.
package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/genlayout/genlayout/pkg/settings"
)

const (
	// VersionKey is written first in the main section.
	VersionKey = "Manifest-Version"
	// NameKey starts a named section.
	NameKey = "Name"
	// DefaultVersion is used by New.
	DefaultVersion = "1.0"

	maxLineBytes = 72
	crlf         = "\r\n"
)

// ErrMalformed is returned by Parse for input that is not a manifest.
var ErrMalformed = errors.New("malformed manifest")

// Manifest is an in-memory JAR manifest.
type Manifest struct {
	main     *settings.Settings
	order    []string
	sections map[string]*settings.Settings
}

// New returns a manifest whose main section holds only the version.
func New() *Manifest {
	m := Empty()
	m.main.Put(VersionKey, DefaultVersion)
	return m
}

// Empty returns a manifest with no attributes at all.
func Empty() *Manifest {
	return &Manifest{main: settings.New(), sections: make(map[string]*settings.Settings)}
}

// Main returns the main section attributes.
func (m *Manifest) Main() *settings.Settings { return m.main }

// Section returns the named section, creating it when absent.
func (m *Manifest) Section(name string) *settings.Settings {
	if s, ok := m.sections[name]; ok {
		return s
	}
	s := settings.New()
	m.sections[name] = s
	m.order = append(m.order, name)
	return s
}

// LookupSection returns the named section if it exists.
func (m *Manifest) LookupSection(name string) (*settings.Settings, bool) {
	s, ok := m.sections[name]
	return s, ok
}

// SectionNames returns the named sections in order.
func (m *Manifest) SectionNames() []string {
	return append([]string(nil), m.order...)
}

// IsEmpty reports whether the manifest has no attributes.
func (m *Manifest) IsEmpty() bool {
	if m.main.Len() > 0 {
		return false
	}
	for _, s := range m.sections {
		if s.Len() > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *Manifest) Clone() *Manifest {
	c := Empty()
	c.main = m.main.Clone()
	for _, name := range m.order {
		c.Section(name).PutAll(m.sections[name])
	}
	return c
}

// Equal reports whether both manifests hold the same attributes in the
// same order.
func (m *Manifest) Equal(other *Manifest) bool {
	if !m.main.Equal(other.main) || len(m.order) != len(other.order) {
		return false
	}
	for i, name := range m.order {
		if other.order[i] != name || !m.sections[name].Equal(other.sections[name]) {
			return false
		}
	}
	return true
}

// Parse reads a manifest. LF, CR and CRLF line endings are accepted.
func Parse(r io.Reader) (*Manifest, error) {
	lines, err := logicalLines(r)
	if err != nil {
		return nil, err
	}
	m := Empty()
	current := m.main
	startSection := false
	for _, l := range lines {
		if l.text == "" {
			startSection = true
			continue
		}
		key, value, ok := strings.Cut(l.text, ": ")
		if !ok || !validKey(key) {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, l.no, l.text)
		}
		if startSection {
			if !strings.EqualFold(key, NameKey) {
				return nil, fmt.Errorf("%w: line %d: section must start with %s", ErrMalformed, l.no, NameKey)
			}
			current = m.Section(value)
			startSection = false
			continue
		}
		current.Put(key, value)
	}
	return m, nil
}

type line struct {
	no   int
	text string
}

// logicalLines splits input into lines with continuations folded in.
func logicalLines(r io.Reader) ([]line, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	data = bytes.ReplaceAll(data, []byte(crlf), []byte("\n"))
	data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))

	var out []line
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	no := 0
	for sc.Scan() {
		no++
		text := sc.Text()
		if strings.HasPrefix(text, " ") {
			if len(out) == 0 || out[len(out)-1].text == "" {
				return nil, fmt.Errorf("%w: line %d: continuation without header", ErrMalformed, no)
			}
			out[len(out)-1].text += text[1:]
			continue
		}
		out = append(out, line{no: no, text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return out, nil
}

func validKey(k string) bool {
	if k == "" || len(k) > 70 {
		return false
	}
	for _, c := range k {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// Write emits the manifest. The main section starts with Manifest-Version
// when present; named sections follow, each preceded by an empty line.
func (m *Manifest) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if v, ok := m.main.Get(VersionKey); ok {
		writeAttr(bw, VersionKey, v)
	}
	for k, v := range m.main.All() {
		if k == VersionKey {
			continue
		}
		writeAttr(bw, k, v)
	}
	bw.WriteString(crlf)
	for _, name := range m.order {
		s := m.sections[name]
		writeAttr(bw, NameKey, name)
		for k, v := range s.All() {
			writeAttr(bw, k, v)
		}
		bw.WriteString(crlf)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Marshal returns the bytes Write would emit.
func (m *Manifest) Marshal() []byte {
	var buf bytes.Buffer
	_ = m.Write(&buf)
	return buf.Bytes()
}

// writeAttr writes "key: value" wrapped at 72 bytes without splitting a
// UTF-8 sequence.
func writeAttr(w *bufio.Writer, key, value string) {
	s := key + ": " + value
	limit := maxLineBytes
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		w.WriteString(s[:cut])
		w.WriteString(crlf)
		w.WriteByte(' ')
		s = s[cut:]
		limit = maxLineBytes - 1
	}
	w.WriteString(s)
	w.WriteString(crlf)
}
