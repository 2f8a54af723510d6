// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/genlayout/genlayout/pkg/manifest"
	"github.com/genlayout/genlayout/pkg/types"
)

// Outcome is the result of a merge request.
type Outcome uint8

const (
	// OutcomeMerged means at least one input was merged into the target.
	OutcomeMerged Outcome = iota
	// OutcomeSkipped means there was nothing to merge or no target.
	OutcomeSkipped
	// OutcomeAlreadyMerged means the target was merged earlier in the same
	// build and was left untouched.
	OutcomeAlreadyMerged
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeMerged:
		return "merged"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeAlreadyMerged:
		return "already merged"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

type (
	// Merger merges generated manifests into targets. One Merger serves one
	// build; it remembers which targets it merged.
	Merger struct {
		buildID string
		policy  manifest.MergePolicy
		logger  *log.Logger

		mu   sync.Mutex
		done map[string]bool
	}

	// MergerOption configures a Merger.
	MergerOption func(*Merger)
)

// WithPolicy sets the merge policy. The default keeps merged values.
func WithPolicy(p manifest.MergePolicy) MergerOption {
	return func(m *Merger) {
		if p != nil {
			m.policy = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) MergerOption {
	return func(m *Merger) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMerger returns a merger for the build identified by buildID.
func NewMerger(buildID string, opts ...MergerOption) *Merger {
	m := &Merger{
		buildID: buildID,
		policy:  manifest.KeepMergeValue,
		logger:  log.New(io.Discard),
		done:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BuildID returns the build this merger belongs to.
func (m *Merger) BuildID() string { return m.buildID }

// Merge folds the manifests at inputs, in order, into target's manifest.
// Inputs that do not exist are ignored. A nil target or an input list with
// no existing file yields OutcomeSkipped and leaves the target untouched. A
// target already merged by this Merger yields OutcomeAlreadyMerged.
//
// The target is only modified after every input parsed successfully.
func (m *Merger) Merge(ctx context.Context, target Target, inputs []types.FilesystemPath) (Outcome, error) {
	if target == nil {
		return OutcomeSkipped, nil
	}
	id := target.ID()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done[id] {
		m.logger.Debug("manifest already merged", "target", id, "build", m.buildID)
		return OutcomeAlreadyMerged, nil
	}

	var parsed []*manifest.Manifest
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return OutcomeSkipped, err
		}
		mf, err := readManifest(in)
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("manifest input missing", "target", id, "input", in)
			continue
		}
		if err != nil {
			return OutcomeSkipped, fmt.Errorf("merging into %s: %w", id, err)
		}
		parsed = append(parsed, mf)
	}
	if len(parsed) == 0 {
		m.logger.Debug("no manifests to merge", "target", id)
		return OutcomeSkipped, nil
	}

	dst := target.Manifest()
	for _, mf := range parsed {
		manifest.Merge(dst, mf, m.policy)
	}
	m.done[id] = true
	m.logger.Debug("merged manifests", "target", id, "inputs", len(parsed), "build", m.buildID)
	return OutcomeMerged, nil
}

// Merged reports whether the target with id was merged by this Merger.
func (m *Merger) Merged(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done[id]
}

func readManifest(path types.FilesystemPath) (*manifest.Manifest, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	mf, err := manifest.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mf, nil
}
