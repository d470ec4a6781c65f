package watari

import (
	"strings"
	"testing"
)

func TestHostShellEnvironPlainNames(t *testing.T) {
	env := HostShellEnviron()

	byKey := make(map[string]string, len(env))
	for _, line := range env {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			t.Fatalf("malformed entry: %s", line)
		}
		byKey[parts[0]] = parts[1]
	}

	if byKey["OPENSSL_INCLUDE_DIR"] != "/usr/include" {
		t.Errorf("wrong host include dir: %s", byKey["OPENSSL_INCLUDE_DIR"])
	}
	if byKey["OPENCV_INCLUDE_DIR"] != "/usr/include/opencv4" {
		t.Errorf("wrong opencv include dir: %s", byKey["OPENCV_INCLUDE_DIR"])
	}

	// Host names carry no triple prefix.
	for key := range byKey {
		if strings.Contains(key, "UNKNOWN_LINUX") {
			t.Errorf("host environment leaks a target triple: %s", key)
		}
	}
}

func TestHostShellEnvironPkgConfigDeduped(t *testing.T) {
	env := HostShellEnviron()
	var pkgconfig string
	for _, line := range env {
		if strings.HasPrefix(line, "PKG_CONFIG_PATH=") {
			pkgconfig = strings.TrimPrefix(line, "PKG_CONFIG_PATH=")
		}
	}
	if pkgconfig == "" {
		t.Fatal("PKG_CONFIG_PATH missing")
	}
	seen := make(map[string]bool)
	for _, dir := range strings.Split(pkgconfig, ":") {
		if seen[dir] {
			t.Errorf("duplicate pkgconfig dir: %s", dir)
		}
		seen[dir] = true
	}
}

func TestHostCommandEnvMergesProcessEnv(t *testing.T) {
	t.Setenv("WATARI_SHELL_TEST_MARKER", "kept")

	env := hostCommandEnv()
	var hasParent, hasRegistry bool
	for _, line := range env {
		if line == "WATARI_SHELL_TEST_MARKER=kept" {
			hasParent = true
		}
		if strings.HasPrefix(line, "OPENSSL_LIB_DIR=") {
			hasRegistry = true
		}
	}
	if !hasParent {
		t.Error("shell command env must inherit the parent environment")
	}
	if !hasRegistry {
		t.Error("shell command env must carry the registry variables")
	}
}

func TestHostTripleShape(t *testing.T) {
	triple := HostTriple()
	if !strings.HasSuffix(triple, "-unknown-linux-gnu") {
		t.Errorf("unexpected host triple: %s", triple)
	}
}
