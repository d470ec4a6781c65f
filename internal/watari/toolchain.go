package watari

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ToolchainBundle is the compiler/linker/stdlib set for one target, pinned
// to a single upstream revision so compiler and standard library agree on
// ABI. The compiler binary doubles as the linker driver; shipping a separate
// linker re-introduces the flag mismatches the pin exists to avoid.
type ToolchainBundle struct {
	Target            TargetDescriptor
	CompilerPath      string
	LinkerPath        string
	StdlibArtifactRef string
}

// ErrToolchainUnavailable reports that the pinned revision publishes no
// standard-library artifact for the requested target.
var ErrToolchainUnavailable = errors.New("toolchain unavailable")

// DefaultRevision is the pinned toolchain revision used when the
// configuration does not override WATARI_REVISION.
const DefaultRevision = "1.84.1"

// stdlibManifest lists, per pinned revision, the triples with a published
// standard-library artifact. Requesting anything else fails fast instead of
// producing a toolchain that links against a mismatched std.
var stdlibManifest = map[string][]string{
	"1.84.1": {
		"armv7-unknown-linux-musleabihf",
		"aarch64-unknown-linux-musl",
		"aarch64-unknown-linux-gnu",
		"x86_64-unknown-linux-gnu",
	},
	"1.83.0": {
		"aarch64-unknown-linux-musl",
		"aarch64-unknown-linux-gnu",
		"x86_64-unknown-linux-gnu",
	},
}

// pinnedRevision returns the toolchain revision the configuration selects.
func pinnedRevision(cfg *Config) string {
	if cfg != nil {
		if rev := cfg.Values["WATARI_REVISION"]; rev != "" {
			return rev
		}
	}
	return DefaultRevision
}

func stdlibPublished(revision, triple string) bool {
	for _, t := range stdlibManifest[revision] {
		if t == triple {
			return true
		}
	}
	return false
}

// ResolveToolchain assembles the toolchain bundle for a target at the
// pinned revision.
func ResolveToolchain(cfg *Config, target TargetDescriptor) (ToolchainBundle, error) {
	revision := pinnedRevision(cfg)

	if !stdlibPublished(revision, target.Triple) {
		return ToolchainBundle{}, fmt.Errorf("%w: no std artifact for %s at revision %s",
			ErrToolchainUnavailable, target.Triple, revision)
	}

	compiler := filepath.Join(ToolchainDir, revision, "bin", target.Triple+"-cc")
	return ToolchainBundle{
		Target:            target,
		CompilerPath:      compiler,
		LinkerPath:        compiler,
		StdlibArtifactRef: fmt.Sprintf("rust-std-%s@%s", target.Triple, revision),
	}, nil
}
