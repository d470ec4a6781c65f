package watari

import (
	"errors"
	"fmt"
)

// LinkMode selects how native dependencies are linked into the final binary.
type LinkMode int

const (
	LinkDynamic LinkMode = iota
	LinkStatic
)

func (m LinkMode) String() string {
	if m == LinkStatic {
		return "static"
	}
	return "dynamic"
}

// TargetDescriptor describes one supported cross-compilation target.
// ID is the user-facing identifier, Triple the canonical
// <arch>-<vendor>-<os>-<abi> string, CrossPackageKey the key of the
// cross-toolchain/sysroot bundle on the artifact mirror.
type TargetDescriptor struct {
	ID              string
	Triple          string
	CrossPackageKey string
	DefaultLinkMode LinkMode
}

// ErrUnknownTarget reports a target id absent from the catalog.
var ErrUnknownTarget = errors.New("unknown target")

// The catalog is populated once and never mutated. Musl targets link the
// C runtime statically so the bots run on routers and SBCs without a
// matching libc; glibc targets stay dynamic.
var targetCatalog = []TargetDescriptor{
	{
		ID:              "armv7-musl",
		Triple:          "armv7-unknown-linux-musleabihf",
		CrossPackageKey: "armv7l-hf-multiplatform-musl",
		DefaultLinkMode: LinkStatic,
	},
	{
		ID:              "aarch64-musl",
		Triple:          "aarch64-unknown-linux-musl",
		CrossPackageKey: "aarch64-multiplatform-musl",
		DefaultLinkMode: LinkStatic,
	},
	{
		ID:              "aarch64-gnu",
		Triple:          "aarch64-unknown-linux-gnu",
		CrossPackageKey: "aarch64-multiplatform",
		DefaultLinkMode: LinkDynamic,
	},
	{
		ID:              "x86_64-gnu",
		Triple:          "x86_64-unknown-linux-gnu",
		CrossPackageKey: "gnu64",
		DefaultLinkMode: LinkDynamic,
	},
}

// LookupTarget resolves a target id against the catalog.
func LookupTarget(id string) (TargetDescriptor, error) {
	for _, t := range targetCatalog {
		if t.ID == id {
			return t, nil
		}
	}
	return TargetDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownTarget, id)
}

// AllTargets returns a copy of the catalog in declaration order.
func AllTargets() []TargetDescriptor {
	out := make([]TargetDescriptor, len(targetCatalog))
	copy(out, targetCatalog)
	return out
}
