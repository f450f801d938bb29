package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no lessontrack.yaml in scope

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Course.ID != "default" || cfg.Course.Units != 30 {
		t.Errorf("course = %+v, want default/30", cfg.Course)
	}
	if !cfg.Privacy.Sync {
		t.Error("privacy.sync default = false, want true")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("logLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Remote.Configured() {
		t.Error("placeholder api key reported as configured")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessontrack.yaml")
	body := `
course:
  id: go-in-30
  units: 30
  quizBaseUrl: https://course.example.com/quizzes
remote:
  apiKey: real-key
  authDomain: project.example.com
  projectId: go-in-30-prod
privacy:
  sync: false
logLevel: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Course.ID != "go-in-30" {
		t.Errorf("course id = %q, want go-in-30", cfg.Course.ID)
	}
	if cfg.Course.QuizBaseURL != "https://course.example.com/quizzes" {
		t.Errorf("quiz base url = %q", cfg.Course.QuizBaseURL)
	}
	if !cfg.Remote.Configured() {
		t.Error("real api key reported as unconfigured")
	}
	if cfg.Privacy.Sync {
		t.Error("privacy.sync = true, want false from file")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("logLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("expected error for explicit missing file")
		}
	})

	t.Run("zero units", func(t *testing.T) {
		path := filepath.Join(dir, "lessontrack.yaml")
		if err := os.WriteFile(path, []byte("course:\n  units: 0\n"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected error for course.units = 0")
		}
	})
}

func TestRemoteConfigured(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{"real key", "abc123", true},
		{"placeholder", PlaceholderAPIKey, false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Remote{APIKey: tt.apiKey}
			if got := r.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}
