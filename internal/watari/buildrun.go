package watari

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// readProjectDeps reads the project's declared native dependencies from a
// "linkdeps" file in the project directory, one name per line. A missing
// file means the project links nothing beyond the standard library.
func readProjectDeps(projectDir string) ([]string, error) {
	f, err := os.Open(filepath.Join(projectDir, "linkdeps"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var deps []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		deps = append(deps, line)
	}
	return deps, scanner.Err()
}

// handlePlanCommand assembles and prints the environment mapping for a
// target without running a build.
func handlePlanCommand(args []string, cfg *Config) error {
	planCmd := flag.NewFlagSet("plan", flag.ContinueOnError)
	exportMode := planCmd.Bool("export", false, "Print export statements for shell eval.")
	if err := planCmd.Parse(args); err != nil {
		return err
	}
	if planCmd.NArg() < 1 {
		return fmt.Errorf("usage: watari plan [-export] <target> [deps...]")
	}

	targetID := planCmd.Arg(0)
	depNames := planCmd.Args()[1:]

	plan, err := AssemblePlan(cfg, targetID, depNames)
	if err != nil {
		return err
	}

	if *exportMode {
		for _, line := range plan.Environ() {
			fmt.Printf("export %s\n", line)
		}
		return nil
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Build plan for %s (%s, %s crt)\n",
		plan.Target.ID, plan.Target.Triple, plan.Target.DefaultLinkMode)
	for _, line := range plan.Environ() {
		fmt.Println(line)
	}
	colNote.Printf("plan digest: %s\n", plan.Digest())
	return nil
}

// handleBuildCommand assembles the plan for a target and delegates to the
// external build command with the plan's variables in the environment. The
// child's exit status is surfaced unchanged to the caller.
func handleBuildCommand(args []string, cfg *Config) error {
	buildCmd := flag.NewFlagSet("build", flag.ContinueOnError)
	projectDir := buildCmd.String("p", ".", "Project directory to build in.")
	if err := buildCmd.Parse(args); err != nil {
		return err
	}
	if buildCmd.NArg() < 1 {
		return fmt.Errorf("usage: watari build [-p dir] <target> [deps...]")
	}

	targetID := buildCmd.Arg(0)
	depNames := buildCmd.Args()[1:]
	if len(depNames) == 0 {
		var err error
		depNames, err = readProjectDeps(*projectDir)
		if err != nil {
			return fmt.Errorf("failed to read linkdeps: %w", err)
		}
	}

	plan, err := AssemblePlan(cfg, targetID, depNames)
	if err != nil {
		return err
	}

	fields := strings.Fields(buildCommand)
	if len(fields) == 0 {
		return fmt.Errorf("WATARI_BUILD_CMD is empty")
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Building for %s via: %s\n", plan.Target.Triple, buildCommand)
	if Verbose {
		for _, line := range plan.Environ() {
			fmt.Println(line)
		}
	}
	debugf("plan digest: %s\n", plan.Digest())

	// Tee build output into a log buffer; the compressed log lands in
	// LogDir regardless of build outcome.
	var logBuf bytes.Buffer
	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Dir = *projectDir
	cmd.Env = append(os.Environ(), plan.Environ()...)
	cmd.Stdout = io.MultiWriter(os.Stdout, &logBuf)
	cmd.Stderr = io.MultiWriter(os.Stderr, &logBuf)

	UserExec.ApplyIdlePriority = setIdlePriority
	buildErr := UserExec.Run(cmd)

	logName := buildLogName(*projectDir, plan.Target)
	if err := writeBuildLog(logName, logBuf.Bytes()); err != nil {
		colWarn.Printf("Warning: failed to write build log: %v\n", err)
	} else {
		debugf("Build log written to %s\n", filepath.Join(LogDir, logName))
	}

	if buildErr != nil {
		return buildErr
	}
	colArrow.Print("-> ")
	colSuccess.Println("Build finished successfully")
	return nil
}

func buildLogName(projectDir string, target TargetDescriptor) string {
	project := filepath.Base(projectDir)
	if abs, err := filepath.Abs(projectDir); err == nil {
		project = filepath.Base(abs)
	}
	return project + "-" + target.ID + ".log.xz"
}

// writeBuildLog compresses the captured build output into LogDir.
func writeBuildLog(name string, content []byte) error {
	if err := os.MkdirAll(LogDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(LogDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	xw, err := xz.NewWriter(f)
	if err != nil {
		return err
	}
	if _, err := xw.Write(content); err != nil {
		xw.Close()
		return err
	}
	return xw.Close()
}
