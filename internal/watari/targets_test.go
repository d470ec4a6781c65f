package watari

import (
	"errors"
	"strings"
	"testing"
)

func TestLookupTargetKnown(t *testing.T) {
	target, err := LookupTarget("aarch64-musl")
	if err != nil {
		t.Fatalf("LookupTarget failed: %v", err)
	}
	if target.Triple != "aarch64-unknown-linux-musl" {
		t.Errorf("wrong triple: %s", target.Triple)
	}
	if target.CrossPackageKey != "aarch64-multiplatform-musl" {
		t.Errorf("wrong cross package key: %s", target.CrossPackageKey)
	}
	if target.DefaultLinkMode != LinkStatic {
		t.Errorf("aarch64-musl should default to static linking")
	}
}

func TestLookupTargetUnknown(t *testing.T) {
	_, err := LookupTarget("riscv64-bogus")
	if err == nil {
		t.Fatal("expected error for unknown target")
	}
	if !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("error should wrap ErrUnknownTarget, got: %v", err)
	}
	if !strings.Contains(err.Error(), "riscv64-bogus") {
		t.Errorf("error should name the requested id: %v", err)
	}
}

func TestCatalogIdentifiersUnique(t *testing.T) {
	ids := make(map[string]bool)
	triples := make(map[string]bool)
	for _, target := range AllTargets() {
		if ids[target.ID] {
			t.Errorf("duplicate target id: %s", target.ID)
		}
		if triples[target.Triple] {
			t.Errorf("duplicate triple: %s", target.Triple)
		}
		ids[target.ID] = true
		triples[target.Triple] = true
	}
}

func TestCatalogTripleShape(t *testing.T) {
	for _, target := range AllTargets() {
		parts := strings.Split(target.Triple, "-")
		if len(parts) < 3 {
			t.Errorf("triple %s has fewer than three components", target.Triple)
		}
		if target.CrossPackageKey == "" {
			t.Errorf("target %s has no cross package key", target.ID)
		}
	}
}

func TestAllTargetsReturnsCopy(t *testing.T) {
	first := AllTargets()
	first[0].ID = "mutated"

	again, err := LookupTarget("armv7-musl")
	if err != nil {
		t.Fatalf("catalog mutated through AllTargets result: %v", err)
	}
	if again.ID != "armv7-musl" {
		t.Errorf("catalog entry changed: %s", again.ID)
	}
}

func TestGnuTargetsDefaultDynamic(t *testing.T) {
	for _, id := range []string{"aarch64-gnu", "x86_64-gnu"} {
		target, err := LookupTarget(id)
		if err != nil {
			t.Fatalf("LookupTarget(%s): %v", id, err)
		}
		if target.DefaultLinkMode != LinkDynamic {
			t.Errorf("%s should default to dynamic linking", id)
		}
	}
}
