package watari

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"
)

// readCompressedLog decompresses a .log.xz file into lines for display.
func readCompressedLog(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed log %s: %w", path, err)
	}
	data, err := io.ReadAll(xr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress log %s: %w", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n"), nil
}

// listBuildLogs returns the build logs in LogDir, newest first.
func listBuildLogs() ([]string, error) {
	entries, err := os.ReadDir(LogDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type logEntry struct {
		name  string
		mtime int64
	}
	var logs []logEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log.xz") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logEntry{e.Name(), info.ModTime().UnixNano()})
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].mtime > logs[j].mtime })

	names := make([]string, len(logs))
	for i, l := range logs {
		names[i] = l.name
	}
	return names, nil
}

// handleLogCommand shows a stored build log. With no argument the most recent
// log is shown; a partial name narrows the candidates, and multiple matches
// fall back to an interactive selection.
func handleLogCommand(args []string) error {
	logs, err := listBuildLogs()
	if err != nil {
		return fmt.Errorf("failed to list build logs: %w", err)
	}
	if len(logs) == 0 {
		colNote.Println("No build logs found.")
		return nil
	}

	var matches []string
	if len(args) == 0 {
		matches = logs[:1]
	} else {
		for _, name := range logs {
			if strings.Contains(name, args[0]) {
				matches = append(matches, name)
			}
		}
		if len(matches) == 0 {
			return fmt.Errorf("no build log matches %q", args[0])
		}
	}

	chosen := matches[0]
	if len(matches) > 1 {
		for i, name := range matches {
			fmt.Printf("%4d) %s\n", i+1, name)
		}
		indices, ok := AskForSelection("Select a log to view:", len(matches))
		if !ok || len(indices) == 0 {
			colNote.Println("Operation canceled.")
			return nil
		}
		chosen = matches[indices[0]]
	}

	lines, err := readCompressedLog(filepath.Join(LogDir, chosen))
	if err != nil {
		return err
	}
	return RunPager(strings.TrimSuffix(chosen, ".log.xz"), lines)
}
