package watari

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Config struct
type Config struct {
	Values map[string]string
}

// configPath returns the configuration file location, honoring WATARI_ROOT.
func configPath() string {
	if root := os.Getenv("WATARI_ROOT"); root != "" {
		return filepath.Join(root, "etc", "watari", "watari.conf")
	}
	return ConfigFile
}

// Load /etc/watari.conf and apply defaults
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	// Attempt to read the file
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	// Merge WATARI_* env overrides
	mergeEnvOverrides(cfg)

	return cfg, nil
}

// Merge WATARI_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "WATARI_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}
}

func initConfig(cfg *Config) {
	CacheDir = cfg.Values["WATARI_CACHE_DIR"]
	if CacheDir == "" {
		CacheDir = "/var/cache/watari"
	}

	Debug = cfg.Values["WATARI_DEBUG"] == "1"
	Verbose = cfg.Values["WATARI_VERBOSE"] == "1"
	setIdlePriority = cfg.Values["WATARI_BUILD_PRIORITY"] == "idle"

	SysrootDir = cfg.Values["WATARI_SYSROOT_DIR"]
	if SysrootDir == "" {
		SysrootDir = filepath.Join(CacheDir, "sysroots")
	}

	ToolchainDir = cfg.Values["WATARI_TOOLCHAIN_DIR"]
	if ToolchainDir == "" {
		ToolchainDir = filepath.Join(CacheDir, "toolchains")
	}

	BinDir = filepath.Join(CacheDir, "bin")
	LogDir = filepath.Join(CacheDir, "logs")

	if mirror, exists := cfg.Values["WATARI_MIRROR"]; exists && mirror != "" {
		MirrorURL = strings.TrimRight(mirror, "/") // Remove trailing slash if present
		debugf("=> Using artifact mirror from config: %s\n", MirrorURL)
	}
	if MirrorURL == "" {
		MirrorURL = "https://artifacts.watari.dev"
	}

	buildCommand = cfg.Values["WATARI_BUILD_CMD"]
	if buildCommand == "" {
		buildCommand = "cargo build --release"
	}
}
