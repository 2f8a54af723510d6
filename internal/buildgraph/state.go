// SPDX-License-Identifier: MPL-2.0

package buildgraph

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/genlayout/genlayout/pkg/settings"
)

const (
	stateOperationKey   = "operation"
	stateFingerprintKey = "fingerprint"
	stateComment        = "genlayout up-to-date record"
)

var stateNameReplacer = strings.NewReplacer(":", "_", "/", "_", "\\", "_", " ", "_")

// stateStore keeps one record per operation in dir. A nil store keeps
// nothing, so every operation runs.
type stateStore struct {
	dir string
}

func (s *stateStore) path(op string) string {
	name := stateNameReplacer.Replace(op) + "-" + strconv.FormatUint(xxhash.Sum64String(op), 16)
	return filepath.Join(s.dir, name+".properties")
}

// fingerprint returns the recorded fingerprint of op, or "" when there is
// no usable record.
func (s *stateStore) fingerprint(op string) (string, error) {
	if s == nil {
		return "", nil
	}
	rec, err := settings.ReadFile(s.path(op))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	case errors.Is(err, settings.ErrMalformed):
		// A damaged record only forces a re-run.
		return "", nil
	case err != nil:
		return "", fmt.Errorf("reading state of %s: %w", op, err)
	}
	if rec.GetOr(stateOperationKey, "") != op {
		return "", nil
	}
	return rec.GetOr(stateFingerprintKey, ""), nil
}

func (s *stateStore) invalidate(op string) error {
	if s == nil {
		return nil
	}
	if err := os.Remove(s.path(op)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing state of %s: %w", op, err)
	}
	return nil
}

func (s *stateStore) record(op, fingerprint string) error {
	if s == nil {
		return nil
	}
	rec := settings.FromPairs(stateOperationKey, op, stateFingerprintKey, fingerprint)
	if err := settings.WriteFile(s.path(op), rec, stateComment); err != nil {
		return fmt.Errorf("writing state of %s: %w", op, err)
	}
	return nil
}
