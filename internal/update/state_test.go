package update

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadState_Missing(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	state, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if !state.LastCheckedAt.IsZero() {
		t.Errorf("LastCheckedAt = %v, want zero", state.LastCheckedAt)
	}
}

func TestSaveAndLoadState(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	saved := &State{
		LastCheckedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		LatestVersion:  "1.2.3",
		CurrentVersion: "1.0.0",
		ReleaseURL:     "https://github.com/lineup-dev/lineup/releases/tag/v1.2.3",
	}

	if err := SaveState(saved); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	loaded, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if !loaded.LastCheckedAt.Equal(saved.LastCheckedAt) {
		t.Errorf("LastCheckedAt = %v, want %v", loaded.LastCheckedAt, saved.LastCheckedAt)
	}

	if loaded.LatestVersion != saved.LatestVersion {
		t.Errorf("LatestVersion = %q, want %q", loaded.LatestVersion, saved.LatestVersion)
	}
}

func TestLoadState_Corrupted(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)

	path := filepath.Join(tmp, "lineup", "update-check.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	state, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if state.LatestVersion != "" {
		t.Errorf("LatestVersion = %q, want empty for corrupted file", state.LatestVersion)
	}
}

func TestShouldCheck(t *testing.T) {
	tests := []struct {
		name          string
		lastCheckedAt time.Time
		want          bool
	}{
		{"never checked", time.Time{}, true},
		{"checked just now", time.Now(), false},
		{"checked two days ago", time.Now().Add(-48 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &State{LastCheckedAt: tt.lastCheckedAt}
			if got := state.ShouldCheck(); got != tt.want {
				t.Errorf("ShouldCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasUpdate(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		current string
		want    bool
	}{
		{"newer available", "1.2.0", "1.1.0", true},
		{"already latest", "1.1.0", "1.1.0", false},
		{"ahead of latest", "1.1.0", "1.2.0", false},
		{"no cached version", "", "1.1.0", false},
		{"dev build", "1.2.0", "dev", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &State{LatestVersion: tt.latest}
			if got := state.HasUpdate(tt.current); got != tt.want {
				t.Errorf("HasUpdate(%q) = %v, want %v", tt.current, got, tt.want)
			}
		})
	}
}

func TestIsDisabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"0", false},
		{"1", true},
		{"true", true},
		{"TRUE", true},
	}

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			t.Setenv("LINEUP_UPDATE_DISABLED", tt.value)

			if got := IsDisabled(); got != tt.want {
				t.Errorf("IsDisabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
