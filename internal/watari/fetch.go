package watari

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
	"lukechampine.com/blake3"
)

// sysrootChecksums pins the BLAKE3 digest of each published sysroot bundle,
// keyed by "<revision>/<crossPackageKey>". Bundles without an entry are
// accepted with a warning; this covers locally mirrored test artifacts.
var sysrootChecksums = map[string]string{}

func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = 30 * time.Second
	return &http.Client{
		Transport: transport,
		Timeout:   300 * time.Second, // 5 min total timeout for large downloads
	}
}

// downloadFile fetches url into destPath. An exclusive flock on a sidecar
// lock file prevents two invocations from clobbering the same bundle.
func downloadFile(url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", destPath, err)
	}

	lockPath := destPath + ".lock"
	lFile, err := os.Create(lockPath)
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer lFile.Close()

	// This blocks if another process is downloading the same bundle.
	if err := unix.Flock(int(lFile.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock for download: %w", err)
	}
	defer unix.Flock(int(lFile.Fd()), unix.LOCK_UN)

	// DOUBLE CHECK: the other holder may have finished while we waited.
	if _, err := os.Stat(destPath); err == nil {
		debugf("File %s appeared after acquiring lock, skipping download.\n", destPath)
		_ = os.Remove(lockPath)
		return nil
	}

	defer func() {
		if _, err := os.Stat(destPath); err == nil {
			_ = os.Remove(lockPath)
		}
	}()

	debugf("Downloading %s -> %s\n", url, destPath)

	resp, err := newHTTPClient().Get(url)
	if err != nil {
		return fmt.Errorf("http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	defer out.Close()

	var dst io.Writer = out
	if term.IsTerminal(int(os.Stderr.Fd())) {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(destPath))
		dst = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		// Clean up the partial file so the cache never holds a torso.
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to write to destination file: %w", err)
	}
	return nil
}

// fileDigest computes the BLAKE3 hex digest of a file.
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// fetchSysroot downloads, verifies and extracts the cross sysroot bundle
// for one target at the pinned revision.
func fetchSysroot(cfg *Config, target TargetDescriptor) error {
	revision := pinnedRevision(cfg)
	filename := target.CrossPackageKey + ".tar.zst"
	url := fmt.Sprintf("%s/%s/%s", MirrorURL, revision, filename)
	cachePath := filepath.Join(CacheDir, revision, filename)

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		colArrow.Print("-> ")
		colSuccess.Printf("Fetching sysroot bundle %s (revision %s)\n", target.CrossPackageKey, revision)
		if err := downloadFile(url, cachePath); err != nil {
			return fmt.Errorf("failed to fetch %s: %w", url, err)
		}
	} else {
		debugf("Already in cache: %s\n", cachePath)
	}

	if want, ok := sysrootChecksums[revision+"/"+target.CrossPackageKey]; ok {
		got, err := fileDigest(cachePath)
		if err != nil {
			return fmt.Errorf("failed to checksum %s: %w", cachePath, err)
		}
		if got != want {
			os.Remove(cachePath)
			return fmt.Errorf("checksum mismatch for %s: got %s, want %s", filename, got, want)
		}
	} else {
		colWarn.Printf("No pinned checksum for %s at revision %s, skipping verification\n",
			target.CrossPackageKey, revision)
	}

	dest := filepath.Join(SysrootDir, target.CrossPackageKey)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	// A half-extracted sysroot poisons every later build, so extraction
	// blocks the first Ctrl+C.
	isCriticalAtomic.Store(1)
	defer isCriticalAtomic.Store(0)
	if err := extractArchive(cachePath, dest); err != nil {
		return fmt.Errorf("failed to extract sysroot: %w", err)
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Sysroot ready: %s\n", dest)
	return nil
}

// handleFetchCommand fetches sysroot bundles for the named targets. With no
// arguments it offers a numbered selection over the whole catalog.
func handleFetchCommand(args []string, cfg *Config) error {
	var targets []TargetDescriptor

	if len(args) > 0 {
		for _, id := range args {
			t, err := LookupTarget(id)
			if err != nil {
				return err
			}
			targets = append(targets, t)
		}
	} else {
		all := AllTargets()
		fmt.Println()
		for i, t := range targetLines(all) {
			colArrow.Print("-> ")
			fmt.Printf("%2d) %s\n", i+1, t)
		}
		fmt.Println()
		indices, ok := AskForSelection("Fetch (a)ll or pick targets (numbers or -numbers):", len(all))
		if !ok {
			colNote.Println("Operation canceled.")
			return nil
		}
		for _, idx := range indices {
			targets = append(targets, all[idx])
		}
	}

	for _, target := range targets {
		if err := fetchSysroot(cfg, target); err != nil {
			return err
		}
	}
	return nil
}

func targetLines(targets []TargetDescriptor) []string {
	lines := make([]string, len(targets))
	for i, t := range targets {
		lines[i] = fmt.Sprintf("%s (%s)", t.ID, t.Triple)
	}
	return lines
}
