package watari

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// HostArch returns the host machine architecture, normalized to the
// spelling the catalog uses (x86_64, aarch64).
func HostArch() string {
	arch := ""
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		arch = unix.ByteSliceToString(uts.Machine[:])
	}
	if arch == "" {
		// Final fallback to Go runtime info
		arch = runtime.GOARCH
	}
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	}
	return arch
}

// HostTriple returns the glibc triple for the host machine. Local editing
// always happens against the host's own dynamic libraries.
func HostTriple() string {
	return HostArch() + "-unknown-linux-gnu"
}
