// SPDX-License-Identifier: MPL-2.0

package buildgraph

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Sensitivity selects what of an input file takes part in a fingerprint.
type Sensitivity uint8

const (
	// ContentOnly hashes file contents only; moving or renaming a file
	// keeps the fingerprint.
	ContentOnly Sensitivity = iota
	// FullPath hashes absolute paths together with contents.
	FullPath
)

// DefaultHashCacheSize is the number of file hashes kept between fingerprints.
const DefaultHashCacheSize = 4096

type (
	// FileSet is a group of input files. Paths are files or directories
	// (walked recursively); Patterns are doublestar globs evaluated under
	// Root. Missing paths take part as absent.
	FileSet struct {
		Root        string
		Paths       []string
		Patterns    []string
		Sensitivity Sensitivity
	}

	hashKey struct {
		path    string
		size    int64
		modTime time.Time
	}

	// hasher hashes file contents, caching results by path, size and
	// modification time.
	hasher struct {
		cache *lru.Cache[hashKey, uint64]
	}
)

func newHasher(size int) *hasher {
	if size <= 0 {
		size = DefaultHashCacheSize
	}
	c, err := lru.New[hashKey, uint64](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &hasher{cache: c}
}

func (h *hasher) file(path string, info fs.FileInfo) (uint64, error) {
	key := hashKey{path: path, size: info.Size(), modTime: info.ModTime()}
	if sum, ok := h.cache.Get(key); ok {
		return sum, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, err
	}
	sum := d.Sum64()
	h.cache.Add(key, sum)
	return sum, nil
}

// files expands the set into file paths, sorted and deduplicated, plus
// the listed paths that do not exist.
func (set FileSet) files() ([]string, []string, error) {
	var found, missing []string
	for _, p := range set.Paths {
		if !filepath.IsAbs(p) && set.Root != "" {
			p = filepath.Join(set.Root, p)
		}
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				found = append(found, path)
			}
			return nil
		})
		switch {
		case errors.Is(err, os.ErrNotExist):
			missing = append(missing, p)
		case err != nil:
			return nil, nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}
	if len(set.Patterns) > 0 {
		root := set.Root
		if root == "" {
			root = "."
		}
		fsys := os.DirFS(root)
		for _, pattern := range set.Patterns {
			matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, nil, fmt.Errorf("pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				found = append(found, filepath.Join(root, filepath.FromSlash(m)))
			}
		}
	}
	slices.Sort(found)
	return slices.Compact(found), missing, nil
}

// fingerprint hashes the inputs and outputs of an operation. Outputs are
// always path sensitive.
func (h *hasher) fingerprint(name string, inputs []FileSet, outputs []string) (string, error) {
	d := xxhash.New()
	_, _ = d.WriteString(name)

	add := func(set FileSet) error {
		files, missing, err := set.files()
		if err != nil {
			return err
		}
		sums := make([]string, 0, len(files))
		for _, f := range files {
			info, err := os.Stat(f)
			if err != nil {
				return err
			}
			sum, err := h.file(f, info)
			if err != nil {
				return fmt.Errorf("hashing %s: %w", f, err)
			}
			entry := strconv.FormatUint(sum, 16)
			if set.Sensitivity == FullPath {
				entry = filepath.ToSlash(f) + "\x00" + entry
			}
			sums = append(sums, entry)
		}
		if set.Sensitivity == ContentOnly {
			slices.Sort(sums)
		}
		for _, s := range sums {
			_, _ = d.WriteString(s + "\n")
		}
		for _, m := range missing {
			_, _ = d.WriteString("missing\x00" + filepath.ToSlash(m) + "\n")
		}
		_, _ = d.WriteString("\x01")
		return nil
	}

	for _, in := range inputs {
		if err := add(in); err != nil {
			return "", err
		}
	}
	_, _ = d.WriteString("outputs\x01")
	if err := add(FileSet{Paths: outputs, Sensitivity: FullPath}); err != nil {
		return "", err
	}
	return strconv.FormatUint(d.Sum64(), 16), nil
}
