package version

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := Get()
	if info.IsRelease {
		t.Error("dev builds are not releases")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected %s, got %s", runtime.Version(), info.GoVersion)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("unexpected platform %q", info.Platform)
	}
}

func TestGetLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "1.4.0", "abc1234", "2026-03-01T10:00:00Z"

	info := Get()
	if info.Version != "1.4.0" || info.GitCommit != "abc1234" {
		t.Errorf("unexpected info %+v", info)
	}
	if !info.IsRelease {
		t.Error("expected a release build")
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !info.BuildDate.Equal(want) {
		t.Errorf("expected %v, got %v", want, info.BuildDate)
	}
}

func TestDirtyIsNotRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.4.0-dirty"
	if Get().IsRelease {
		t.Error("dirty builds are not releases")
	}
}

func TestShortAndString(t *testing.T) {
	info := Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true, GoVersion: "go1.26.0", Platform: "linux/amd64"}
	if got := info.Short(); got != "1.0.0-abc1234-dirty" {
		t.Errorf("unexpected short version %q", got)
	}
	if got := (Info{Version: "1.0.0"}).Short(); got != "1.0.0" {
		t.Errorf("unexpected short version %q", got)
	}

	s := info.String()
	if !strings.HasPrefix(s, "execkit 1.0.0-abc1234-dirty go1.26.0 linux/amd64") {
		t.Errorf("unexpected string %q", s)
	}
	if strings.Contains(s, "built") {
		t.Errorf("expected no build date, got %q", s)
	}

	info.BuildDate = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if !strings.HasSuffix(info.String(), "(built 2026-01-02T03:04:05Z)") {
		t.Errorf("unexpected string %q", info.String())
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("expected 0123456, got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}
