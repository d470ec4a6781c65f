package watari

import (
	"bytes"
	"strings"
	"testing"
)

func TestDebugfGatedAndPrefixed(t *testing.T) {
	var buf bytes.Buffer
	origWriter := debugWriter
	origDebug := Debug
	debugWriter = &buf
	defer func() {
		debugWriter = origWriter
		Debug = origDebug
	}()

	Debug = false
	debugf("hidden %s\n", "message")
	if buf.Len() != 0 {
		t.Errorf("debugf must stay silent when debugging is off: %q", buf.String())
	}

	Debug = true
	debugf("resolving %s\n", "aarch64-musl")
	if !strings.HasPrefix(buf.String(), "watari: resolving aarch64-musl") {
		t.Errorf("debug output not prefixed: %q", buf.String())
	}
}
