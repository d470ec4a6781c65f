package watari

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
)

// printHelp prints the commands table
func printHelp() {
	colSuccess.Println("Usage: watari <command> [arguments]")
	colSuccess.Println("Run 'watari <command>' for advanced options")
	fmt.Println()
	color.Info.Println("Available Commands:")

	type cmdInfo struct {
		Cmd  string
		Args string
		Desc string
	}
	cmds := []cmdInfo{
		{"version, --version", "", "Version information"},
		{"targets, t", "", "List the supported cross-compilation targets"},
		{"deps, d", "", "List the registered native dependencies"},
		{"plan, p", "[-export] <target> [dep...]", "Print the build environment for a target"},
		{"build, b", "[-p dir] <target> [dep...]", "Cross-compile the project for a target"},
		{"fetch, f", "[target...]", "Download sysroot bundles from the mirror"},
		{"bundle", "<target> <artifact-dir>", "Pack build artifacts into a distributable bundle"},
		{"upload", "[bundle...]", "Upload local bundles to the mirror"},
		{"shell", "[-export] [cmd...]", "Run a command with the host development environment"},
		{"log", "[name]", "View stored build logs"},
	}

	maxLen := 0
	for _, c := range cmds {
		length := len(c.Cmd) + len(c.Args)
		if c.Args != "" {
			length++
		}
		if length > maxLen {
			maxLen = length
		}
	}
	columnWidth := maxLen + 4

	for _, c := range cmds {
		var usageString string
		if c.Args != "" {
			usageString = fmt.Sprintf("  %s %s", c.Cmd, c.Args)
		} else {
			usageString = fmt.Sprintf("  %s", c.Cmd)
		}

		fmt.Print("  ")
		color.Bold.Print(c.Cmd)
		if c.Args != "" {
			fmt.Print(" ")
			color.Cyan.Print(c.Args)
		}

		pad := columnWidth - len(usageString)
		if pad < 1 {
			pad = 1
		}
		fmt.Print(strings.Repeat(" ", pad))
		color.Info.Println(c.Desc)
	}
	fmt.Println()
}

// listTargets prints the target catalog.
func listTargets() {
	for _, t := range AllTargets() {
		colArrow.Print("-> ")
		colSuccess.Printf("%-14s", t.ID)
		fmt.Printf("  %-34s  %-32s  %s\n", t.Triple, t.CrossPackageKey, t.DefaultLinkMode)
	}
}

// listDeps prints the dependency registry.
func listDeps() {
	for _, d := range AllDependencies() {
		colArrow.Print("-> ")
		colSuccess.Printf("%-10s", d.Name)
		linkage := "shared only"
		if d.SupportsStatic {
			linkage = "static, shared"
		}
		fmt.Printf("  include=%-18s lib=%-6s %s\n", d.IncludeSubpath, d.LibSubpath, linkage)
	}
}

// Main is the CLI entrypoint for cmd/watari.
func Main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		for {
			select {
			case sig := <-sigs:
				if isCriticalAtomic.Load() == 1 {
					// Block the first signal during a critical section; a
					// second within 5s forces exit.
					colArrow.Print("\n-> ")
					colError.Printf("Critical operation in progress. Press Ctrl+C AGAIN to force exit NOW.\n")
					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						colError.Printf("Forced immediate exit.")
						os.Exit(130)
					case <-time.After(5 * time.Second):
						continue
					case <-ctx.Done():
						return
					}
				} else {
					colArrow.Print("\n-> ")
					color.Danger.Printf("Received %v. Cancelling process gracefully\n", sig)
					cancel()

					// Give the command a moment to die and flush its buffers
					time.Sleep(100 * time.Millisecond)

					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						color.Danger.Printf("Second interrupt received. Forcing immediate exit.")
						os.Exit(130)
					case <-time.After(2 * time.Second):
						colArrow.Print("\n-> ")
						color.Danger.Printf("Graceful shutdown timeout. Exiting.")
						os.Exit(0)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	if ctx.Err() != nil {
		return
	}

	if len(os.Args) < 2 {
		printHelp()
		return
	}

	cfgPath := configPath()
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read %s: %v\n", cfgPath, err)
		cfg = &Config{Values: map[string]string{}}
	}
	mergeEnvOverrides(cfg)
	initConfig(cfg)

	UserExec = NewExecutor(ctx)

	var exitCode int

	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()

	case "version", "--version":
		colNote.Printf("watari %s (%s) built %s\n", version, hostArch, buildDate)

	case "targets", "t":
		listTargets()

	case "deps", "d":
		listDeps()

	case "plan", "p":
		if err := handlePlanCommand(os.Args[2:], cfg); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			exitCode = 1
		}

	case "build", "b":
		if err := handleBuildCommand(os.Args[2:], cfg); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			} else {
				exitCode = 1
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

	case "fetch", "f":
		if err := handleFetchCommand(os.Args[2:], cfg); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			exitCode = 1
		}

	case "bundle":
		if err := handleBundleCommand(os.Args[2:], cfg); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			exitCode = 1
		}

	case "upload":
		if err := handleUploadCommand(ctx, os.Args[2:], cfg); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			exitCode = 1
		}

	case "shell":
		if err := handleShellCommand(os.Args[2:]); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			} else {
				exitCode = 1
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

	case "log":
		if err := handleLogCommand(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			exitCode = 1
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exitCode = 1
	}

	os.Exit(exitCode)
}
