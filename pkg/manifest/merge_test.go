// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"slices"
	"testing"
)

func TestMerge_DefaultOverwrites(t *testing.T) {
	t.Parallel()

	dst := Empty()
	a := Empty()
	a.Main().Put("k1", "v1")
	b := Empty()
	b.Main().Put("k1", "v2")
	b.Main().Put("k2", "v3")

	Merge(dst, a, nil)
	Merge(dst, b, nil)

	if got := dst.Main().Keys(); !slices.Equal(got, []string{"k1", "k2"}) {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := dst.Main().Get("k1"); v != "v2" {
		t.Errorf("k1 = %q, want v2", v)
	}
	if v, _ := dst.Main().Get("k2"); v != "v3" {
		t.Errorf("k2 = %q, want v3", v)
	}
}

func TestMerge_Policies(t *testing.T) {
	t.Parallel()

	base := func() *Manifest {
		m := New()
		m.Main().Put("Bundle-Version", "1.0.0.qualifier")
		return m
	}
	src := Empty()
	src.Main().Put("Bundle-Version", "2.0.0")
	src.Main().Put("Bundle-Vendor", "Example")
	src.Section("x").Put("Digest", "d")

	t.Run("keep base", func(t *testing.T) {
		t.Parallel()
		dst := base()
		Merge(dst, src, KeepBaseValue)
		if v, _ := dst.Main().Get("Bundle-Version"); v != "1.0.0.qualifier" {
			t.Errorf("Bundle-Version = %q", v)
		}
		if v, _ := dst.Main().Get("Bundle-Vendor"); v != "Example" {
			t.Errorf("Bundle-Vendor = %q", v)
		}
	})

	t.Run("exclude and rewrite", func(t *testing.T) {
		t.Parallel()
		dst := base()
		var seen []string
		Merge(dst, src, func(d *MergeDetails) {
			seen = append(seen, d.Section+"/"+d.Key)
			switch d.Key {
			case "Bundle-Version":
				d.Exclude()
			case "Bundle-Vendor":
				d.SetValue(d.MergeValue + " Inc.")
			}
		})
		if dst.Main().Has("Bundle-Version") {
			t.Error("excluded attribute still present")
		}
		if v, _ := dst.Main().Get("Bundle-Vendor"); v != "Example Inc." {
			t.Errorf("Bundle-Vendor = %q", v)
		}
		want := []string{"/Bundle-Version", "/Bundle-Vendor", "x/Digest"}
		if !slices.Equal(seen, want) {
			t.Errorf("policy calls = %v, want %v", seen, want)
		}
		if _, ok := dst.LookupSection("x"); !ok {
			t.Error("named section not merged")
		}
	})
}

func TestMerge_AttributeNamesIgnoreCase(t *testing.T) {
	t.Parallel()

	dst := New()
	dst.Main().Put("Bundle-Version", "1.0.0")
	dst.Main().Put("Bundle-Name", "core")
	src := Empty()
	src.Main().Put("bundle-version", "2.0.0")
	src.Main().Put("BUNDLE-NAME", "")
	src.Main().Put("bundle-vendor", "Example")

	Merge(dst, src, func(d *MergeDetails) {
		if d.Key == "Bundle-Name" {
			d.Exclude()
		}
	})

	want := []string{VersionKey, "Bundle-Version", "bundle-vendor"}
	if got := dst.Main().Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := dst.Main().Get("Bundle-Version"); v != "2.0.0" {
		t.Errorf("Bundle-Version = %q, want 2.0.0", v)
	}

	other := Empty()
	other.Main().Put("Bundle-Vendor", "Example Inc.")
	Merge(dst, other, KeepBaseValue)
	if v, _ := dst.Main().Get("bundle-vendor"); v != "Example" {
		t.Errorf("bundle-vendor = %q, want Example", v)
	}
	if dst.Main().Has("Bundle-Vendor") {
		t.Error("differently cased duplicate attribute added")
	}
}
