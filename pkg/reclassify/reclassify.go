// SPDX-License-Identifier: MPL-2.0

package reclassify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/genlayout/genlayout/pkg/types"
)

type (
	// Move records one relocated file.
	Move struct {
		From types.FilesystemPath
		To   types.FilesystemPath
	}

	// Result lists what a run changed. Both lists are in walk order.
	Result struct {
		Moved   []Move
		Removed []types.FilesystemPath
	}

	// Option configures Run.
	Option func(*options)

	options struct {
		classifier Classifier
		logger     *log.Logger
	}
)

// WithExtensions sets the source extensions.
func WithExtensions(exts ...string) Option {
	return func(o *options) { o.classifier = NewClassifier(exts...) }
}

// WithLogger sets the logger for per-file debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Changed reports whether the run moved or removed anything.
func (r Result) Changed() bool {
	return len(r.Moved) > 0 || len(r.Removed) > 0
}

// Run walks srcGen depth-first, children before parents. Every non-source
// file moves to the same relative path under resourcesGen, replacing an
// existing file there. A directory left empty after its children were
// handled is removed; srcGen itself is never removed.
//
// A missing srcGen is not an error and yields an empty result. The first
// I/O error aborts the walk. Cancellation of ctx is checked between
// entries.
func Run(ctx context.Context, srcGen, resourcesGen types.FilesystemPath, opts ...Option) (Result, error) {
	o := options{classifier: NewClassifier(), logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}

	root := string(srcGen)
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		o.logger.Debug("nothing to reclassify", "dir", root)
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("reclassifying %s: %w", root, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("reclassifying %s: not a directory", root)
	}

	w := &walker{
		ctx:    ctx,
		root:   root,
		dest:   string(resourcesGen),
		opts:   o,
		result: Result{},
	}
	if err := w.visit(root); err != nil {
		return w.result, err
	}
	o.logger.Debug("reclassified", "dir", root, "moved", len(w.result.Moved), "removed", len(w.result.Removed))
	return w.result, nil
}

type walker struct {
	ctx    context.Context
	root   string
	dest   string
	opts   options
	result Result
}

func (w *walker) visit(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := w.visit(path); err != nil {
				return err
			}
			continue
		}
		if w.opts.classifier.Classify(e.Name()) == Source {
			continue
		}
		if err := w.move(path); err != nil {
			return err
		}
	}

	if dir == w.root {
		return nil
	}
	empty, err := isEmpty(dir)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("removing empty directory: %w", err)
	}
	w.opts.logger.Debug("removed empty directory", "dir", dir)
	w.result.Removed = append(w.result.Removed, types.FilesystemPath(dir))
	return nil
}

func (w *walker) move(path string) error {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return fmt.Errorf("relativizing %s: %w", path, err)
	}
	to := filepath.Join(w.dest, rel)
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(to), err)
	}
	if err := os.Rename(path, to); err != nil {
		return fmt.Errorf("moving generated file: %w", err)
	}
	w.opts.logger.Debug("moved generated file", "from", path, "to", to)
	w.result.Moved = append(w.result.Moved, Move{From: types.FilesystemPath(path), To: types.FilesystemPath(to)})
	return nil
}

func isEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", dir, err)
	}
	defer func() { _ = f.Close() }()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", dir, err)
	}
	return false, nil
}
