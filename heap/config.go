// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "fmt"

// FreeCollectionKind selects which FreeCollection implementation an
// Allocator uses.
type FreeCollectionKind int

const (
	Implicit FreeCollectionKind = iota
	Explicit
)

func (k FreeCollectionKind) String() string {
	switch k {
	case Implicit:
		return "implicit"
	case Explicit:
		return "explicit"
	default:
		return fmt.Sprintf("FreeCollectionKind(%d)", int(k))
	}
}

// ParseFreeCollectionKind maps the CLI/trace vocabulary ("implicit",
// "explicit") onto a FreeCollectionKind.
func ParseFreeCollectionKind(s string) (FreeCollectionKind, error) {
	switch s {
	case "implicit":
		return Implicit, nil
	case "explicit":
		return Explicit, nil
	default:
		return 0, fmt.Errorf("heap: unknown free collection kind %q", s)
	}
}

// PlacementPolicyKind selects which placement policy an Allocator uses.
type PlacementPolicyKind int

const (
	FirstFit PlacementPolicyKind = iota
	BestFit
)

func (k PlacementPolicyKind) String() string {
	switch k {
	case FirstFit:
		return "first-fit"
	case BestFit:
		return "best-fit"
	default:
		return fmt.Sprintf("PlacementPolicyKind(%d)", int(k))
	}
}

// ParsePlacementPolicyKind maps the CLI/trace vocabulary ("first-fit",
// "best-fit") onto a PlacementPolicyKind.
func ParsePlacementPolicyKind(s string) (PlacementPolicyKind, error) {
	switch s {
	case "first-fit":
		return FirstFit, nil
	case "best-fit":
		return BestFit, nil
	default:
		return 0, fmt.Errorf("heap: unknown placement policy %q", s)
	}
}

// Config is passed to NewAllocator to select the free collection and
// placement policy and the region's size bounds. Grounded on
// dbm/options.go's Options/Options.check: a plain struct validated in one
// dedicated step rather than scattered across every call site.
type Config struct {
	FreeCollection FreeCollectionKind
	Placement      PlacementPolicyKind

	// InitialSize is the region's starting length in bytes. Zero means
	// the default of 4000.
	InitialSize int

	// MaximumSize is the upper bound region-resize may grow to. Zero
	// means the default of 400000.
	MaximumSize int
}

// DefaultConfig returns the default configuration: implicit free
// collection, first-fit placement, 4000/400000 byte bounds.
func DefaultConfig() Config {
	return Config{
		FreeCollection: Implicit,
		Placement:      FirstFit,
		InitialSize:    defaultInitialSize,
		MaximumSize:    defaultMaximumSize,
	}
}

const (
	defaultInitialSize = 4000
	defaultMaximumSize = 400000
)

// validate fills in defaults and checks the configured bounds, returning a
// *ConfigError describing the first violation found.
func (c *Config) validate() error {
	if c.InitialSize == 0 {
		c.InitialSize = defaultInitialSize
	}
	if c.MaximumSize == 0 {
		c.MaximumSize = defaultMaximumSize
	}
	switch {
	case c.InitialSize%8 != 0:
		return &ConfigError{Field: "InitialSize", Value: c.InitialSize, Why: "must be a multiple of 8"}
	case c.InitialSize < defaultInitialSize || c.InitialSize > defaultMaximumSize:
		return &ConfigError{Field: "InitialSize", Value: c.InitialSize, Why: "must be in [4000, 400000]"}
	case c.MaximumSize%8 != 0:
		return &ConfigError{Field: "MaximumSize", Value: c.MaximumSize, Why: "must be a multiple of 8"}
	case c.MaximumSize < c.InitialSize:
		return &ConfigError{Field: "MaximumSize", Value: c.MaximumSize, Why: "must be >= InitialSize"}
	case c.MaximumSize > defaultMaximumSize:
		return &ConfigError{Field: "MaximumSize", Value: c.MaximumSize, Why: "must be <= 400000"}
	case c.FreeCollection != Implicit && c.FreeCollection != Explicit:
		return &ConfigError{Field: "FreeCollection", Value: int(c.FreeCollection), Why: "unknown free collection kind"}
	case c.Placement != FirstFit && c.Placement != BestFit:
		return &ConfigError{Field: "Placement", Value: int(c.Placement), Why: "unknown placement policy"}
	}
	return nil
}
