package cfg

import (
	"strings"
	"testing"
	"time"
)

func createValidSettings() *Settings {
	s := Defaults()
	return &s
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	if err := validateSettings(createValidSettings()); err != nil {
		t.Errorf("expected valid settings, got %v", err)
	}
}

func TestValidateSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"empty data path", func(s *Settings) { s.DataPath = "" }, "data path"},
		{"unknown backend", func(s *Settings) { s.StoreBackend = "s3" }, "store backend"},
		{"file backend without classifier path", func(s *Settings) {
			s.StoreBackend = "file"
			s.ClassifierPath = ""
		}, "requires classifier"},
		{"file backend with shared path", func(s *Settings) {
			s.StoreBackend = "file"
			s.StandardizerPath = s.ClassifierPath
		}, "must differ"},
		{"zero learning rate", func(s *Settings) { s.LearningRate = 0 }, "learning rate"},
		{"large learning rate", func(s *Settings) { s.LearningRate = 2 }, "learning rate"},
		{"zero iterations", func(s *Settings) { s.Iterations = 0 }, "iterations"},
		{"too many iterations", func(s *Settings) { s.Iterations = 2000000 }, "iterations"},
		{"zero test fraction", func(s *Settings) { s.TestFraction = 0 }, "test fraction"},
		{"full test fraction", func(s *Settings) { s.TestFraction = 1 }, "test fraction"},
		{"negative threshold", func(s *Settings) { s.ProbThreshold = -0.1 }, "probability threshold"},
		{"privileged port", func(s *Settings) { s.HTTPPort = 80 }, "HTTP port"},
		{"port too high", func(s *Settings) { s.HTTPPort = 70000 }, "HTTP port"},
		{"short timeout", func(s *Settings) { s.RequestTimeout = time.Millisecond }, "request timeout"},
		{"long timeout", func(s *Settings) { s.RequestTimeout = time.Hour }, "request timeout"},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createValidSettings()
			tt.mutate(s)

			err := validateSettings(s)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSettings_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"threshold zero", func(s *Settings) { s.ProbThreshold = 0 }},
		{"threshold one", func(s *Settings) { s.ProbThreshold = 1 }},
		{"learning rate one", func(s *Settings) { s.LearningRate = 1 }},
		{"single iteration", func(s *Settings) { s.Iterations = 1 }},
		{"lowest port", func(s *Settings) { s.HTTPPort = 1024 }},
		{"highest port", func(s *Settings) { s.HTTPPort = 65535 }},
		{"file backend", func(s *Settings) { s.StoreBackend = "file" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createValidSettings()
			tt.mutate(s)
			if err := validateSettings(s); err != nil {
				t.Errorf("expected valid settings, got %v", err)
			}
		})
	}
}
