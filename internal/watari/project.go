package watari

import "strings"

// Variable attributes emitted per dependency.
const (
	AttrStatic     = "STATIC"
	AttrIncludeDir = "INCLUDE_DIR"
	AttrLibDir     = "LIB_DIR"
)

// tripleKey normalizes a target triple into the shape build tools expect in
// environment variable names: dashes become underscores, then everything is
// upper-cased. cargo only recognizes CARGO_TARGET_<TRIPLE>_LINKER in exactly
// this form, so any deviation produces a variable nothing ever reads.
func tripleKey(triple string) string {
	return strings.ToUpper(strings.ReplaceAll(triple, "-", "_"))
}

// ProjectVariable derives the flat variable name for one
// (target, dependency, attribute) combination:
// <TRIPLE_WITH_UNDERSCORES>_<DEPENDENCY>_<ATTRIBUTE>, all upper-case.
func ProjectVariable(target TargetDescriptor, dep Dependency, attribute string) string {
	return tripleKey(target.Triple) + "_" + strings.ToUpper(dep.Name) + "_" + strings.ToUpper(attribute)
}
