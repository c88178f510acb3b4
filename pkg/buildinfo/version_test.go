package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withVars(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/matzehuels/pageprint", Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123456789abcdef01234567"},
			{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name                  string
		version, commit, date string
		want                  [3]string
	}{
		{"unset", "dev", "none", "unknown", [3]string{"v0.4.1", "0123456789abcdef0123456789abcdef01234567-dirty", "2026-03-01T10:00:00Z"}},
		{"ldflags win", "v1.0.0", "abc", "2026-01-01", [3]string{"v1.0.0", "abc", "2026-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVars(t, tt.version, tt.commit, tt.date)
			fill(bi)
			if got := [3]string{Version, Commit, Date}; got != tt.want {
				t.Errorf("fill() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFillDevelBuild(t *testing.T) {
	withVars(t, "dev", "none", "unknown")
	fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if Version != "dev" || Commit != "none" || Date != "unknown" {
		t.Errorf("fill() = %s %s %s, want the defaults", Version, Commit, Date)
	}
}

func TestShort(t *testing.T) {
	withVars(t, "v1.2.3", "0123456789abcdef", "2026-01-01")
	if got, want := Short(), "pageprint v1.2.3 (0123456)"; got != want {
		t.Errorf("Short() = %q, want %q", got, want)
	}
	if !strings.Contains(String(), "commit: 0123456789abcdef") {
		t.Errorf("String() = %q", String())
	}
}
