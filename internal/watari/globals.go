package watari

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/gookit/color"
)

// GLOBAL STATE
// We use a value of 1 for critical and 0 for non-critical/default.
var isCriticalAtomic atomic.Int32

// Global variables
var (
	CacheDir        string
	SysrootDir      string
	ToolchainDir    string
	BinDir          string
	LogDir          string
	Debug           bool
	Verbose         bool
	ConfigFile      = "/etc/watari.conf"
	MirrorURL       string
	buildCommand    string
	setIdlePriority bool

	// version and buildDate are overridden at build time
	version   = "dev"
	hostArch  = runtime.GOARCH
	buildDate = "unknown"

	// Global executor (declared, to be assigned in Main)
	UserExec *Executor
)

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
	colNote    = color.Tag("notice")
)

// debugWriter is swapped in tests.
var debugWriter io.Writer = os.Stderr

// debugf prints prefixed diagnostics to stderr when WATARI_DEBUG is enabled.
func debugf(format string, args ...any) {
	if Debug {
		fmt.Fprintf(debugWriter, "watari: "+format, args...)
	}
}
