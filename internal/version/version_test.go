package version

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

// stamp sets the package variables for a test and restores them afterward.
func stamp(t *testing.T, version, commit, date, treeState string) {
	t.Helper()

	origVersion, origCommit, origDate, origTreeState := Version, Commit, Date, TreeState
	t.Cleanup(func() {
		Version, Commit, Date, TreeState = origVersion, origCommit, origDate, origTreeState
	})

	Version, Commit, Date, TreeState = version, commit, date, treeState
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	if info.Version == "" {
		t.Error("expected non-empty version")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected go version %s, got %s", runtime.Version(), info.GoVersion)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("unexpected platform %s", info.Platform)
	}
}

func TestString_Unstamped(t *testing.T) {
	stamp(t, "dev", "", "", "")

	s := String()
	if !strings.HasPrefix(s, ApplicationName+" version dev") {
		t.Errorf("unexpected version line: %s", s)
	}
}

func TestString_Stamped(t *testing.T) {
	stamp(t, "1.0.0", "abc123def456789", "2024-01-15T10:30:00Z", "clean")

	s := String()
	for _, want := range []string{"(abc123de)", "built 2024-01-15T10:30:00Z", "1.0.0"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in version line, got %s", want, s)
		}
	}
}

func TestShort(t *testing.T) {
	stamp(t, "1.0.0", "", "", "")
	if got := Short(); got != "1.0.0" {
		t.Errorf("expected 1.0.0, got %s", got)
	}

	stamp(t, "1.0.0", "abc123def456789", "", "clean")
	if got := Short(); got != "1.0.0+abc123de" {
		t.Errorf("expected 1.0.0+abc123de, got %s", got)
	}
}

func TestDirtyTreeMarker(t *testing.T) {
	stamp(t, "1.0.0", "abc123def456789", "", "dirty")

	if s := String(); !strings.Contains(s, "(abc123de*)") {
		t.Errorf("expected dirty marker in version line, got %s", s)
	}
	if short := Short(); short != "1.0.0+abc123de*" {
		t.Errorf("expected dirty marker in short form, got %s", short)
	}
}

func TestJSON(t *testing.T) {
	stamp(t, "1.2.3", "abc123def456789", "2024-01-15T10:30:00Z", "clean")

	var info Info
	if err := json.Unmarshal([]byte(JSON()), &info); err != nil {
		t.Fatalf("JSON() did not produce valid JSON: %v", err)
	}

	if info.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", info.Version)
	}
	if info.Commit != "abc123def456789" {
		t.Errorf("expected full commit, got %s", info.Commit)
	}
	if info.TreeState != "clean" {
		t.Errorf("expected tree_state clean, got %s", info.TreeState)
	}
}
