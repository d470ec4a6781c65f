package watari

import (
	"archive/tar"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
	"golang.org/x/sys/unix"
)

// extractArchive unpacks a sysroot/toolchain tarball into dest using the
// pure-Go readers. Compression is selected by extension; the mirror ships
// .tar.zst but older revisions were published as .tar.xz/.tar.gz.
func extractArchive(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(archivePath, ".tar.gz") || strings.HasSuffix(archivePath, ".tgz"):
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader for %s: %w", archivePath, err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(archivePath, ".tar.bz2"):
		r = bzip2.NewReader(f)
	case strings.HasSuffix(archivePath, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create xz reader for %s: %w", archivePath, err)
		}
		r = xzr
	case strings.HasSuffix(archivePath, ".tar.zst"):
		zst, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create zstd reader for %s: %w", archivePath, err)
		}
		defer zst.Close()
		r = zst
	case strings.HasSuffix(archivePath, ".tar"):
		// No compression
	default:
		return fmt.Errorf("unsupported archive format: %s", archivePath)
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar header in %s: %w", archivePath, err)
		}

		// Skip PAX headers (global or per-file)
		if hdr.Typeflag == tar.TypeXHeader || hdr.Typeflag == tar.TypeXGlobalHeader {
			if _, err := io.Copy(io.Discard, tr); err != nil {
				return fmt.Errorf("error skipping extended header data in %s: %w", archivePath, err)
			}
			continue
		}

		target := filepath.Join(dest, hdr.Name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("failed to write file %s: %w", target, err)
			}
			out.Close()
			if err := os.Chtimes(target, hdr.AccessTime, hdr.ModTime); err != nil {
				debugf("Warning: failed to set times for %s: %v (continuing)\n", target, err)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create symlink %s -> %s: %w", target, hdr.Linkname, err)
			}
			if os.Geteuid() == 0 {
				_ = unix.Lchown(target, hdr.Uid, hdr.Gid)
			}
		default:
			debugf("Skipping unsupported tar entry type %c: %s\n", hdr.Typeflag, hdr.Name)
		}
	}
	return nil
}

// createBundle packs the contents of outputDir into a .tar.zst under BinDir
// and returns the bundle path. Entries are forced root-owned so a bundle
// deployed onto a device never carries the builder's UID.
func createBundle(bundleName, outputDir string) (string, error) {
	if err := os.MkdirAll(BinDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create BinDir: %v", err)
	}

	bundlePath := filepath.Join(BinDir, bundleName+".tar.zst")

	outFile, err := os.Create(bundlePath)
	if err != nil {
		return "", fmt.Errorf("failed to create bundle file: %v", err)
	}
	defer outFile.Close()

	zw, err := zstd.NewWriter(outFile)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd writer: %v", err)
	}
	defer zw.Close()

	tw := tar.NewWriter(zw)
	defer tw.Close()

	err = filepath.Walk(outputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}

		var linkTarget string
		if info.Mode()&os.ModeSymlink != 0 {
			linkTarget, err = os.Readlink(path)
			if err != nil {
				return fmt.Errorf("readlink %s: %w", path, err)
			}
		}

		hdr, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return err
		}

		if rel == "." {
			hdr.Name = "./"
			hdr.Mode = 0755
		} else {
			hdr.Name = rel
		}

		// Always force numeric root ownership for all entries.
		hdr.Uid, hdr.Gid = 0, 0
		hdr.Uname, hdr.Gname = "root", "root"

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		if info.Mode().IsRegular() {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			if _, err := io.Copy(tw, f); err != nil {
				f.Close()
				return err
			}
			f.Close()
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to add files to bundle: %v", err)
	}
	return bundlePath, nil
}

// handleBundleCommand packs built artifacts for a target into BinDir.
func handleBundleCommand(args []string, cfg *Config) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: watari bundle <target> <artifact-dir>")
	}
	target, err := LookupTarget(args[0])
	if err != nil {
		return err
	}
	outputDir := args[1]
	if info, err := os.Stat(outputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("artifact directory %s not found", outputDir)
	}

	name := filepath.Base(outputDir) + "-" + target.Triple
	bundlePath, err := createBundle(name, outputDir)
	if err != nil {
		return err
	}
	colArrow.Print("-> ")
	colSuccess.Printf("Bundle created: %s\n", bundlePath)
	return nil
}
