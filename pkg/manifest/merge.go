// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"strings"

	"github.com/genlayout/genlayout/pkg/settings"
)

type (
	// MergeDetails describes one attribute being merged. A policy reads the
	// base and merge values and may change the resulting value or exclude
	// the attribute.
	MergeDetails struct {
		// Section is empty for the main section.
		Section    string
		Key        string
		BaseValue  string
		HasBase    bool
		MergeValue string

		value    string
		excluded bool
	}

	// MergePolicy decides each merged attribute.
	MergePolicy func(*MergeDetails)
)

// Value returns the value the attribute will take.
func (d *MergeDetails) Value() string { return d.value }

// SetValue replaces the resulting value.
func (d *MergeDetails) SetValue(v string) {
	d.value = v
	d.excluded = false
}

// Exclude drops the attribute from the result, including any base value.
func (d *MergeDetails) Exclude() { d.excluded = true }

// Excluded reports whether Exclude was called.
func (d *MergeDetails) Excluded() bool { return d.excluded }

// KeepMergeValue is the default policy: the merged value overwrites the
// base value.
func KeepMergeValue(*MergeDetails) {}

// KeepBaseValue keeps existing attributes and only adds new ones.
func KeepBaseValue(d *MergeDetails) {
	if d.HasBase {
		d.SetValue(d.BaseValue)
	}
}

// Merge folds src into dst under policy. A nil policy is KeepMergeValue.
// New sections are appended after dst's own sections.
func Merge(dst, src *Manifest, policy MergePolicy) {
	if policy == nil {
		policy = KeepMergeValue
	}
	mergeSection(dst.main, src.main, "", policy)
	for _, name := range src.order {
		mergeSection(dst.Section(name), src.sections[name], name, policy)
	}
}

// mergeSection matches attribute names case-insensitively. A matched
// attribute keeps the spelling and position it has in dst.
func mergeSection(dst, src *settings.Settings, name string, policy MergePolicy) {
	folded := make(map[string]string, dst.Len())
	for _, k := range dst.Keys() {
		folded[strings.ToLower(k)] = k
	}
	for sk, mv := range src.All() {
		k := sk
		if existing, ok := folded[strings.ToLower(sk)]; ok {
			k = existing
		}
		bv, hasBase := dst.Get(k)
		d := &MergeDetails{Section: name, Key: k, BaseValue: bv, HasBase: hasBase, MergeValue: mv, value: mv}
		policy(d)
		if d.excluded {
			dst.Remove(k)
			delete(folded, strings.ToLower(k))
			continue
		}
		dst.Put(k, d.value)
		folded[strings.ToLower(k)] = k
	}
}
