package version

import "testing"

func TestUserAgent(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "1.2.3"
	if got := UserAgent(); got != "market-monitor/1.2.3" {
		t.Errorf("UserAgent() = %q, want %q", got, "market-monitor/1.2.3")
	}
}

func TestString(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = oldV, oldC, oldB }()

	Version, Commit, BuildTime = "1.0.0", "abc123", "2026-01-01T00:00:00Z"
	want := "1.0.0 (abc123) built 2026-01-01T00:00:00Z"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
