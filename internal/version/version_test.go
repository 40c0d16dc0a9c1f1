package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
	}{
		{
			name: "clean checkout",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "false"},
				{Key: "vcs.time", Value: "2026-03-14T09:26:53Z"},
			},
			wantVersion: "dev-20260314",
			wantCommit:  "0123456",
		},
		{
			name: "dirty tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "fedcba9876543210"},
				{Key: "vcs.modified", Value: "true"},
			},
			wantVersion: "",
			wantCommit:  "fedcba9-dirty",
		},
		{
			name:        "no vcs stamp",
			settings:    nil,
			wantVersion: "",
			wantCommit:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldVersion, oldCommit := Version, Commit
			t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
			Version, Commit = "", ""

			fromBuildInfo(func() (*debug.BuildInfo, bool) {
				return &debug.BuildInfo{Settings: tt.settings}, true
			})

			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestFull(t *testing.T) {
	got := Full()
	if !strings.Contains(got, Version) || !strings.Contains(got, "commit: "+Commit) {
		t.Errorf("Full() = %q, want version and commit", got)
	}
}
