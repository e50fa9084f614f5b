package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %s, want %s", info.GoVersion, runtime.Version())
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("Platform = %s, want os/arch format", info.Platform)
	}
}

func TestString(t *testing.T) {
	info := Info{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01T00:00:00Z"}
	got := info.String()
	for _, want := range []string{"1.2.3", "abc123", "2026-01-01T00:00:00Z"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
