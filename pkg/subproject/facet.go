// SPDX-License-Identifier: MPL-2.0

package subproject

import (
	"github.com/genlayout/genlayout/pkg/lazy"
	"github.com/genlayout/genlayout/pkg/types"
)

type (
	// PathCell is a deferred filesystem path.
	PathCell = lazy.Value[types.FilesystemPath]

	// Facet is the set of cells a capability adds to a Config.
	Facet interface {
		Capability() Capability
		Cells() []*PathCell
	}

	// BundleFacet holds the bundle manifest and plugin descriptor paths.
	BundleFacet struct {
		Manifest   *PathCell
		Descriptor *PathCell
	}

	// RuntimeFacet holds the generated model directory.
	RuntimeFacet struct {
		Model *PathCell
	}

	// WebFacet holds the generated assets directory.
	WebFacet struct {
		Assets *PathCell
	}
)

func newFacet(c Capability) Facet {
	switch c {
	case CapBundle:
		return &BundleFacet{
			Manifest:   lazy.New[types.FilesystemPath]("manifest"),
			Descriptor: lazy.New[types.FilesystemPath]("descriptor"),
		}
	case CapRuntime:
		return &RuntimeFacet{Model: lazy.New[types.FilesystemPath]("model")}
	case CapWeb:
		return &WebFacet{Assets: lazy.New[types.FilesystemPath]("assets")}
	}
	return nil
}

// Capability implements Facet.
func (*BundleFacet) Capability() Capability { return CapBundle }

// Cells implements Facet.
func (f *BundleFacet) Cells() []*PathCell { return []*PathCell{f.Manifest, f.Descriptor} }

// Capability implements Facet.
func (*RuntimeFacet) Capability() Capability { return CapRuntime }

// Cells implements Facet.
func (f *RuntimeFacet) Cells() []*PathCell { return []*PathCell{f.Model} }

// Capability implements Facet.
func (*WebFacet) Capability() Capability { return CapWeb }

// Cells implements Facet.
func (f *WebFacet) Cells() []*PathCell { return []*PathCell{f.Assets} }
