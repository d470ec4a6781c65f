package watari

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"lukechampine.com/blake3"
)

// BuildPlan is the complete environment mapping for one target build. It is
// constructed fresh per request, never mutated afterwards, and consumed by
// the external build invocation as process environment.
type BuildPlan struct {
	Target    TargetDescriptor
	Toolchain ToolchainBundle
	Variables map[string]string
}

// ErrVariableCollision reports two emission rules producing different values
// for the same variable name. This is a catalog/registry authoring defect,
// not a runtime condition.
var ErrVariableCollision = errors.New("variable collision")

// setPlanVar adds a variable, refusing to silently overwrite. Re-emitting an
// identical value is fine; two different values for one name is a bug in the
// static tables and must surface.
func setPlanVar(vars map[string]string, key, value string) error {
	if prev, ok := vars[key]; ok && prev != value {
		return fmt.Errorf("%w: %s (%q vs %q)", ErrVariableCollision, key, prev, value)
	}
	vars[key] = value
	return nil
}

// depVariables emits the per-dependency include/lib variables, plus the
// static-mode marker when both the dependency and the target want static
// linking.
func depVariables(vars map[string]string, target TargetDescriptor, dep Dependency) error {
	sysroot := filepath.Join(SysrootDir, target.CrossPackageKey)

	variant := "shared"
	static := dep.SupportsStatic && target.DefaultLinkMode == LinkStatic
	if static {
		variant = "static"
		if err := setPlanVar(vars, ProjectVariable(target, dep, AttrStatic), "1"); err != nil {
			return err
		}
	}

	depRoot := filepath.Join(sysroot, variant, strings.ToLower(dep.Name))
	if err := setPlanVar(vars, ProjectVariable(target, dep, AttrIncludeDir),
		filepath.Join(depRoot, dep.IncludeSubpath)); err != nil {
		return err
	}
	return setPlanVar(vars, ProjectVariable(target, dep, AttrLibDir),
		filepath.Join(depRoot, dep.LibSubpath))
}

// toolchainVariables emits the compiler/linker variables for the target.
// The bundle's compiler is also the link driver, so the cargo linker
// variable and the cc-rs CC variable point at the same binary.
func toolchainVariables(vars map[string]string, tc ToolchainBundle) error {
	target := tc.Target
	upper := tripleKey(target.Triple)
	lower := strings.ReplaceAll(target.Triple, "-", "_")

	if err := setPlanVar(vars, "CARGO_BUILD_TARGET", target.Triple); err != nil {
		return err
	}
	if err := setPlanVar(vars, "CARGO_TARGET_"+upper+"_LINKER", tc.LinkerPath); err != nil {
		return err
	}
	if err := setPlanVar(vars, "CC_"+lower, tc.CompilerPath); err != nil {
		return err
	}
	arPath := filepath.Join(filepath.Dir(tc.CompilerPath), target.Triple+"-ar")
	if err := setPlanVar(vars, "AR_"+lower, arPath); err != nil {
		return err
	}

	if target.DefaultLinkMode == LinkStatic {
		// Force the C runtime into the binary as well; a musl target with a
		// dynamic crt would still need a loader on the device.
		if err := setPlanVar(vars, "CARGO_TARGET_"+upper+"_RUSTFLAGS",
			"-C target-feature=+crt-static"); err != nil {
			return err
		}
	}
	return nil
}

// AssemblePlan resolves a target id and the project's declared dependency
// names into a complete BuildPlan. Any failure returns a nil plan; no
// partially assembled plan ever escapes.
func AssemblePlan(cfg *Config, targetID string, requiredDeps []string) (*BuildPlan, error) {
	target, err := LookupTarget(targetID)
	if err != nil {
		return nil, err
	}

	toolchain, err := ResolveToolchain(cfg, target)
	if err != nil {
		return nil, err
	}

	deps, err := ForProject(requiredDeps)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]string)
	for _, dep := range deps {
		if err := depVariables(vars, target, dep); err != nil {
			return nil, err
		}
	}
	if err := toolchainVariables(vars, toolchain); err != nil {
		return nil, err
	}

	return &BuildPlan{
		Target:    target,
		Toolchain: toolchain,
		Variables: vars,
	}, nil
}

// Environ renders the plan as sorted KEY=value strings, ready to append to
// a child process environment.
func (p *BuildPlan) Environ() []string {
	out := make([]string, 0, len(p.Variables))
	for k, v := range p.Variables {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Digest returns the BLAKE3 hex digest of the rendered environment. Two
// assemblies of the same (target, dependencies) request always share a
// digest; anything else is a determinism bug.
func (p *BuildPlan) Digest() string {
	h := blake3.New(32, nil)
	for _, line := range p.Environ() {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
