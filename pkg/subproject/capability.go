// SPDX-License-Identifier: MPL-2.0

package subproject

import (
	"fmt"
	"strings"
)

// Capability identifies a facet a sub-project can carry.
type Capability uint8

const (
	// CapBundle marks an OSGi-style bundle with a manifest and a plugin
	// descriptor.
	CapBundle Capability = iota + 1
	// CapRuntime marks a runtime bundle that also ships the generated
	// model. It implies CapBundle.
	CapRuntime
	// CapWeb marks a web project with generated assets.
	CapWeb
)

var capabilityNames = map[Capability]string{
	CapBundle:  "bundle",
	CapRuntime: "runtime",
	CapWeb:     "web",
}

// AllCapabilities lists every known capability in resolution order.
func AllCapabilities() []Capability {
	return []Capability{CapBundle, CapRuntime, CapWeb}
}

// String returns the lowercase capability name.
func (c Capability) String() string {
	if n, ok := capabilityNames[c]; ok {
		return n
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

// Validate returns an error for values outside the known set.
func (c Capability) Validate() error {
	if _, ok := capabilityNames[c]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCapability, uint8(c))
	}
	return nil
}

// implies returns the capabilities attached along with c.
func (c Capability) implies() []Capability {
	if c == CapRuntime {
		return []Capability{CapBundle}
	}
	return nil
}

// ParseCapability converts a capability name, case-insensitively.
func ParseCapability(s string) (Capability, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for c, n := range capabilityNames {
		if n == want {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCapability, s)
}
