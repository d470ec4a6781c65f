package watari

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestAssemblePlanUnknownTarget(t *testing.T) {
	cfg := testConfig(nil)
	plan, err := AssemblePlan(cfg, "riscv64-bogus", []string{"OPENSSL"})
	if !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("want ErrUnknownTarget, got: %v", err)
	}
	if plan != nil {
		t.Error("failed assembly must not return a partial plan")
	}
}

func TestAssemblePlanUnknownDependency(t *testing.T) {
	cfg := testConfig(nil)
	plan, err := AssemblePlan(cfg, "aarch64-musl", []string{"LIBFOO"})
	if !errors.Is(err, ErrUnknownDependency) {
		t.Errorf("want ErrUnknownDependency, got: %v", err)
	}
	if plan != nil {
		t.Error("failed assembly must not return a partial plan")
	}
}

func TestAssemblePlanToolchainUnavailable(t *testing.T) {
	cfg := testConfig(map[string]string{"WATARI_REVISION": "1.83.0"})
	plan, err := AssemblePlan(cfg, "armv7-musl", nil)
	if !errors.Is(err, ErrToolchainUnavailable) {
		t.Errorf("want ErrToolchainUnavailable, got: %v", err)
	}
	if plan != nil {
		t.Error("failed assembly must not return a partial plan")
	}
}

func TestAssemblePlanAarch64MuslOpenssl(t *testing.T) {
	cfg := testConfig(map[string]string{"WATARI_CACHE_DIR": "/var/cache/watari"})
	plan, err := AssemblePlan(cfg, "aarch64-musl", []string{"OPENSSL"})
	if err != nil {
		t.Fatalf("AssemblePlan failed: %v", err)
	}

	vars := plan.Variables
	sysroot := "/var/cache/watari/sysroots/aarch64-multiplatform-musl"

	if vars["AARCH64_UNKNOWN_LINUX_MUSL_OPENSSL_STATIC"] != "1" {
		t.Error("static-capable dependency on a static target must carry the STATIC marker")
	}
	if got := vars["AARCH64_UNKNOWN_LINUX_MUSL_OPENSSL_INCLUDE_DIR"]; got != sysroot+"/static/openssl/include" {
		t.Errorf("wrong include dir: %s", got)
	}
	if got := vars["AARCH64_UNKNOWN_LINUX_MUSL_OPENSSL_LIB_DIR"]; got != sysroot+"/static/openssl/lib" {
		t.Errorf("wrong lib dir: %s", got)
	}
	if got := vars["CARGO_BUILD_TARGET"]; got != "aarch64-unknown-linux-musl" {
		t.Errorf("wrong CARGO_BUILD_TARGET: %s", got)
	}

	linker := vars["CARGO_TARGET_AARCH64_UNKNOWN_LINUX_MUSL_LINKER"]
	if !strings.HasSuffix(linker, "/1.84.1/bin/aarch64-unknown-linux-musl-cc") {
		t.Errorf("linker not pinned to the revision's bundle: %s", linker)
	}
	if vars["CC_aarch64_unknown_linux_musl"] != linker {
		t.Error("CC variable must point at the same driver as the cargo linker")
	}
	if !strings.Contains(vars["CARGO_TARGET_AARCH64_UNKNOWN_LINUX_MUSL_RUSTFLAGS"], "+crt-static") {
		t.Error("static target must force crt-static")
	}

	// Nothing for targets that were not requested.
	for name := range vars {
		if strings.Contains(name, "ARMV7") || strings.Contains(name, "X86_64") {
			t.Errorf("plan leaks variable for another target: %s", name)
		}
	}
	for _, dep := range []string{"SQLITE", "FFMPEG", "OPENCV", "ZLIB"} {
		for name := range vars {
			if strings.Contains(name, dep) {
				t.Errorf("plan leaks variable for undeclared dependency: %s", name)
			}
		}
	}
}

func TestAssemblePlanSharedOnlyDepOnStaticTarget(t *testing.T) {
	cfg := testConfig(nil)
	plan, err := AssemblePlan(cfg, "aarch64-musl", []string{"FFMPEG"})
	if err != nil {
		t.Fatalf("AssemblePlan failed: %v", err)
	}
	if _, ok := plan.Variables["AARCH64_UNKNOWN_LINUX_MUSL_FFMPEG_STATIC"]; ok {
		t.Error("shared-only dependency must never get a STATIC marker")
	}
	if got := plan.Variables["AARCH64_UNKNOWN_LINUX_MUSL_FFMPEG_LIB_DIR"]; !strings.Contains(got, "/shared/ffmpeg/") {
		t.Errorf("shared-only dependency should resolve the shared variant: %s", got)
	}
}

func TestAssemblePlanDynamicTargetNoStaticMarker(t *testing.T) {
	cfg := testConfig(nil)
	plan, err := AssemblePlan(cfg, "x86_64-gnu", []string{"OPENSSL"})
	if err != nil {
		t.Fatalf("AssemblePlan failed: %v", err)
	}
	if _, ok := plan.Variables["X86_64_UNKNOWN_LINUX_GNU_OPENSSL_STATIC"]; ok {
		t.Error("dynamic target must not get a STATIC marker")
	}
	if _, ok := plan.Variables["CARGO_TARGET_X86_64_UNKNOWN_LINUX_GNU_RUSTFLAGS"]; ok {
		t.Error("dynamic target must not force crt-static")
	}
	if got := plan.Variables["X86_64_UNKNOWN_LINUX_GNU_OPENSSL_LIB_DIR"]; !strings.Contains(got, "/shared/openssl/") {
		t.Errorf("dynamic target should resolve the shared variant: %s", got)
	}
}

func TestAssemblePlanIdempotent(t *testing.T) {
	cfg := testConfig(nil)
	deps := []string{"OPENSSL", "SQLITE", "FFMPEG"}

	first, err := AssemblePlan(cfg, "armv7-musl", deps)
	if err != nil {
		t.Fatalf("first assembly: %v", err)
	}
	second, err := AssemblePlan(cfg, "armv7-musl", []string{"ffmpeg", "sqlite", "openssl"})
	if err != nil {
		t.Fatalf("second assembly: %v", err)
	}

	if !reflect.DeepEqual(first.Environ(), second.Environ()) {
		t.Error("same request must render a byte-identical environment regardless of input order")
	}
	if first.Digest() != second.Digest() {
		t.Errorf("digest mismatch: %s vs %s", first.Digest(), second.Digest())
	}
}

func TestSetPlanVarCollision(t *testing.T) {
	vars := map[string]string{}
	if err := setPlanVar(vars, "KEY", "a"); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := setPlanVar(vars, "KEY", "a"); err != nil {
		t.Errorf("re-emitting an identical value must succeed: %v", err)
	}
	err := setPlanVar(vars, "KEY", "b")
	if !errors.Is(err, ErrVariableCollision) {
		t.Errorf("want ErrVariableCollision, got: %v", err)
	}
}

func TestPlanEnvironSorted(t *testing.T) {
	cfg := testConfig(nil)
	plan, err := AssemblePlan(cfg, "aarch64-gnu", []string{"OPENSSL", "ZLIB", "OPENCV"})
	if err != nil {
		t.Fatalf("AssemblePlan failed: %v", err)
	}
	env := plan.Environ()
	for i := 1; i < len(env); i++ {
		if env[i-1] >= env[i] {
			t.Fatalf("environment not strictly sorted: %s before %s", env[i-1], env[i])
		}
	}
}
