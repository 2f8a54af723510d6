// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestStore_Escaping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"plain", "bin.includes", "META-INF/,plugin.xml", `bin.includes=META-INF/,plugin.xml`},
		{"space in key", "my key", "v", `my\ key=v`},
		{"inner space in value", "k", "x y", `k=x y`},
		{"leading space in value", "k", " lead", `k=\ lead`},
		{"separators", "a=b", "c:d#e!f", `a\=b=c\:d\#e\!f`},
		{"backslash", "k", `C:\dir`, `k=C\:\\dir`},
		{"control chars", "k", "a\tb\nc\rd\fe", `k=a\tb\nc\rd\fe`},
		{"latin1", "k", "é", `k=\u00E9`},
		{"bmp", "k", "€", `k=\u20AC`},
		{"supplementary", "k", "😀", `k=\uD83D\uDE00`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := Marshal(FromPairs(tt.key, tt.value), "")
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			want := "\n" + tt.want + "\n"
			if string(out) != want {
				t.Errorf("Marshal() = %q, want %q", out, want)
			}
		})
	}
}

func TestStore_ByteStableAcrossTimes(t *testing.T) {
	t.Parallel()

	s := FromPairs("eclipse.preferences.version", "1", "BUNDLE_ROOT_PATH", "build/pde/")
	times := []time.Time{
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2031, time.December, 31, 23, 59, 59, 0, time.FixedZone("CEST", 2*3600)),
		time.Date(2025, time.July, 4, 9, 5, 1, 0, time.FixedZone("", -3*3600)),
	}

	var outputs [][]byte
	for _, at := range times {
		var buf bytes.Buffer
		if err := store(&buf, s, "", at); err != nil {
			t.Fatalf("store() error = %v", err)
		}
		outputs = append(outputs, buf.Bytes())
	}
	want := "\neclipse.preferences.version=1\nBUNDLE_ROOT_PATH=build/pde/\n"
	for i, out := range outputs {
		if string(out) != want {
			t.Errorf("output %d = %q, want %q", i, out, want)
		}
	}
}

func TestStore_Comments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		comments string
		want     string
	}{
		{"single line", "generated", "#generated\n\n"},
		{"multi line", "generated\nby genlayout", "#generated\n#by genlayout\n\n"},
		{"crlf", "a\r\nb", "#a\n#b\n\n"},
		{"existing marker", "a\n!b", "#a\n!b\n\n"},
		{"trailing newline", "a\n", "#a\n#\n\n"},
		{"latin1 kept raw", "h\u00e9", "#h\xe9\n\n"},
		{"above latin1 escaped", "\u20ac", "#\\u20AC\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := Marshal(New(), tt.comments)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Marshal() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestStore_DropsCoincidentalDateComment(t *testing.T) {
	t.Parallel()

	// The second comment line is written as a single chunk that looks like
	// a date comment, so it is dropped together with the real one.
	out, err := Marshal(New(), "x\n#Mon Jan 01 00:00:00 UTC 2024")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "#x\n\n\n" {
		t.Errorf("Marshal() = %q", out)
	}
}

func TestIsDateChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		chunk string
		want  bool
	}{
		{"#Tue Mar 04 10:11:12 UTC 2025", true},
		{"#tue mar 4 1:2:3 GMT+01:00 2025", true},
		{"#Tuesday March 04 10:11:12 PST 2025 trailing", true},
		{"#Wed Jul 09 08:00:00 -03 2025", true},
		{"Tue Mar 04 10:11:12 UTC 2025", false},
		{"#generated", false},
		{"#Xyz Mar 04 10:11:12 UTC 2025", false},
		{"#Tue Mar 04 10:11 UTC 2025", false},
		{"key=value", false},
		{"\n", false},
	}

	for _, tt := range tests {
		if got := IsDateChunk(tt.chunk); got != tt.want {
			t.Errorf("IsDateChunk(%q) = %v, want %v", tt.chunk, got, tt.want)
		}
	}
}

func TestDateIgnoringWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewDateIgnoringWriter(&buf)
	for _, chunk := range []string{"#", "comment", "\n", "#Fri Feb 14 12:00:00 UTC 2025", "\n", "a=1", "\n"} {
		n, err := w.Write([]byte(chunk))
		if err != nil || n != len(chunk) {
			t.Fatalf("Write(%q) = %d, %v", chunk, n, err)
		}
	}
	if got := buf.String(); got != "#comment\n\na=1\n" {
		t.Errorf("output = %q", got)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"# comment",
		"! other comment",
		"a=1",
		"b : 2",
		"c 3",
		"d=multi\\",
		"   line",
		`e=\u00E9`,
		"f=${a}",
		"g=caf\xe9",
		"",
	}, "\n")

	s, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	wantKeys := []string{"a", "b", "c", "d", "e", "f", "g"}
	if got := s.Keys(); !slices.Equal(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}
	want := map[string]string{"a": "1", "b": "2", "c": "3", "d": "multiline", "e": "é", "f": "${a}", "g": "café"}
	for k, v := range want {
		if got, _ := s.Get(k); got != v {
			t.Errorf("Get(%q) = %q, want %q", k, got, v)
		}
	}
}

func TestLoad_Malformed(t *testing.T) {
	t.Parallel()

	_, err := Load(strings.NewReader("key=\\uZZZZ\n"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Load() error = %v, want ErrMalformed", err)
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := FromPairs(
		"plain", "value",
		"with space", " leading and inner",
		"sep=:#!", `back\slash`,
		"latin", "café €",
		"ctl", "tab\there\nnext",
		"empty", "",
	)
	data, err := Marshal(s, "round trip\nsecond line")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Equal(s) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", got.Keys(), s.Keys())
	}
}

func TestReadWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".settings", "org.eclipse.pde.core.prefs")
	if _, err := ReadFile(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ReadFile() on missing file error = %v, want fs.ErrNotExist", err)
	}

	s := FromPairs("eclipse.preferences.version", "1")
	if err := WriteFile(path, s, ""); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, s, ""); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("rewriting the same settings changed the file")
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Equal(s) {
		t.Errorf("ReadFile() keys = %v", loaded.Keys())
	}
}

func TestStore_EncodesLatin1(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Store(&buf, FromPairs("k", "v"), "caf\u00e9"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if got, want := buf.String(), "#caf\xe9\n\nk=v\n"; got != want {
		t.Errorf("Store() = %q, want %q", got, want)
	}
}
