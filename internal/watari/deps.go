package watari

import (
	"errors"
	"fmt"
	"strings"
)

// Dependency describes one native library a project may link against.
// Name is canonical uppercase; IncludeSubpath/LibSubpath give the directory
// shape below the per-target (or host) install prefix.
type Dependency struct {
	Name           string
	SupportsStatic bool
	IncludeSubpath string
	LibSubpath     string
}

// ErrUnknownDependency reports a requested dependency with no registry entry.
var ErrUnknownDependency = errors.New("unknown dependency")

// Static registry of every native dependency the two bot builds can need.
// OPENSSL backs the Telegram API client, SQLITE the saved-video store,
// FFMPEG/OPENCV the video pipeline. Codec libraries only ship shared
// objects, so they never enter static mode.
var dependencyRegistry = []Dependency{
	{Name: "OPENSSL", SupportsStatic: true, IncludeSubpath: "include", LibSubpath: "lib"},
	{Name: "SQLITE", SupportsStatic: true, IncludeSubpath: "include", LibSubpath: "lib"},
	{Name: "ZLIB", SupportsStatic: true, IncludeSubpath: "include", LibSubpath: "lib"},
	{Name: "FFMPEG", SupportsStatic: false, IncludeSubpath: "include", LibSubpath: "lib"},
	{Name: "OPENCV", SupportsStatic: false, IncludeSubpath: "include/opencv4", LibSubpath: "lib"},
}

// AllDependencies returns a copy of the registry in declaration order.
func AllDependencies() []Dependency {
	out := make([]Dependency, len(dependencyRegistry))
	copy(out, dependencyRegistry)
	return out
}

// ForProject filters the registry down to the dependencies a project
// declares. Names are matched case-insensitively; the result keeps registry
// order so plan assembly stays deterministic regardless of input order.
func ForProject(requiredNames []string) ([]Dependency, error) {
	wanted := make(map[string]bool, len(requiredNames))
	for _, name := range requiredNames {
		canonical := strings.ToUpper(strings.TrimSpace(name))
		if canonical == "" {
			continue
		}
		found := false
		for _, dep := range dependencyRegistry {
			if dep.Name == canonical {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDependency, name)
		}
		wanted[canonical] = true
	}

	var out []Dependency
	for _, dep := range dependencyRegistry {
		if wanted[dep.Name] {
			out = append(out, dep)
		}
	}
	return out, nil
}
