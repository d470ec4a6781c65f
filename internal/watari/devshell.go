package watari

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// The devshell is a convenience surface for local, host-architecture
// editing. It reads only the dependency registry's path metadata; it must
// never share the assembler's code paths, otherwise host quirks leak into
// cross builds.

const hostPrefix = "/usr"

// HostShellEnviron derives the host development environment from the
// dependency registry: plain <DEP>_INCLUDE_DIR/<DEP>_LIB_DIR pairs against
// the host prefix, without any triple projection.
func HostShellEnviron() []string {
	var out []string
	var pkgconfig []string
	for _, dep := range AllDependencies() {
		out = append(out,
			dep.Name+"_"+AttrIncludeDir+"="+filepath.Join(hostPrefix, dep.IncludeSubpath),
			dep.Name+"_"+AttrLibDir+"="+filepath.Join(hostPrefix, dep.LibSubpath),
		)
		pkgconfig = append(pkgconfig, filepath.Join(hostPrefix, dep.LibSubpath, "pkgconfig"))
	}
	out = append(out, "PKG_CONFIG_PATH="+strings.Join(dedupe(pkgconfig), ":"))
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

// hostCommandEnv is the full process environment for a command run inside
// the devshell: the parent environment plus the registry-derived variables.
func hostCommandEnv() []string {
	return append(os.Environ(), HostShellEnviron()...)
}

// handleShellCommand runs a command with the host editing environment. With
// no command it prints the environment, optionally as export statements for
// shell eval.
func handleShellCommand(args []string) error {
	exportMode := false
	i := 0
	for i < len(args) && (args[i] == "--export" || args[i] == "-export") {
		exportMode = true
		i++
	}

	if cmdArgs := args[i:]; len(cmdArgs) > 0 {
		cmd := exec.Command(cmdArgs[0], cmdArgs[1:]...)
		cmd.Env = hostCommandEnv()
		shellExec := &Executor{Context: UserExec.Context, Interactive: true}
		return shellExec.Run(cmd)
	}

	if !exportMode {
		colArrow.Print("-> ")
		colSuccess.Printf("Host development environment (%s)\n", HostTriple())
	}
	for _, line := range HostShellEnviron() {
		if exportMode {
			fmt.Printf("export %s\n", line)
		} else {
			fmt.Println(line)
		}
	}
	return nil
}
