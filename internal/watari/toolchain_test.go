package watari

import (
	"errors"
	"strings"
	"testing"
)

func testConfig(values map[string]string) *Config {
	if values == nil {
		values = map[string]string{}
	}
	cfg := &Config{Values: values}
	initConfig(cfg)
	return cfg
}

func TestResolveToolchainAllCatalogTargets(t *testing.T) {
	cfg := testConfig(nil)
	for _, target := range AllTargets() {
		bundle, err := ResolveToolchain(cfg, target)
		if err != nil {
			t.Fatalf("ResolveToolchain(%s): %v", target.ID, err)
		}
		if bundle.Target != target {
			t.Errorf("%s: bundle does not carry the descriptor it resolved", target.ID)
		}
		if bundle.CompilerPath != bundle.LinkerPath {
			t.Errorf("%s: compiler %s and linker %s must be the same binary",
				target.ID, bundle.CompilerPath, bundle.LinkerPath)
		}
		if !strings.Contains(bundle.CompilerPath, DefaultRevision) {
			t.Errorf("%s: compiler path %s not pinned to revision %s",
				target.ID, bundle.CompilerPath, DefaultRevision)
		}
		want := "rust-std-" + target.Triple + "@" + DefaultRevision
		if bundle.StdlibArtifactRef != want {
			t.Errorf("%s: stdlib ref = %s, want %s", target.ID, bundle.StdlibArtifactRef, want)
		}
	}
}

func TestResolveToolchainUnavailableRevision(t *testing.T) {
	cfg := testConfig(map[string]string{"WATARI_REVISION": "1.83.0"})

	armv7, err := LookupTarget("armv7-musl")
	if err != nil {
		t.Fatal(err)
	}
	_, err = ResolveToolchain(cfg, armv7)
	if !errors.Is(err, ErrToolchainUnavailable) {
		t.Errorf("1.83.0 publishes no armv7 std, want ErrToolchainUnavailable, got: %v", err)
	}

	// The same revision still serves aarch64.
	aarch64, err := LookupTarget("aarch64-musl")
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := ResolveToolchain(cfg, aarch64)
	if err != nil {
		t.Fatalf("aarch64 at 1.83.0 should resolve: %v", err)
	}
	if !strings.HasSuffix(bundle.StdlibArtifactRef, "@1.83.0") {
		t.Errorf("stdlib ref should carry the overridden revision: %s", bundle.StdlibArtifactRef)
	}
}

func TestResolveToolchainUnknownRevision(t *testing.T) {
	cfg := testConfig(map[string]string{"WATARI_REVISION": "0.0.0"})
	target, err := LookupTarget("x86_64-gnu")
	if err != nil {
		t.Fatal(err)
	}
	_, err = ResolveToolchain(cfg, target)
	if !errors.Is(err, ErrToolchainUnavailable) {
		t.Errorf("unknown revision must be unavailable, got: %v", err)
	}
}

func TestPinnedRevisionDefault(t *testing.T) {
	if rev := pinnedRevision(&Config{Values: map[string]string{}}); rev != DefaultRevision {
		t.Errorf("default revision = %s, want %s", rev, DefaultRevision)
	}
	if rev := pinnedRevision(nil); rev != DefaultRevision {
		t.Errorf("nil config revision = %s, want %s", rev, DefaultRevision)
	}
}
