package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/unfold/internal/engine/marker"
	"github.com/dshills/unfold/internal/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.LogLevel() != logging.LevelInfo {
		t.Errorf("expected info level, got %s", cfg.LogLevel())
	}
	if cfg.Invalidation() != marker.InvalidateOverlap {
		t.Errorf("expected overlap, got %s", cfg.Invalidation())
	}
	if cfg.Document.Retain || cfg.Document.WriteOnClose {
		t.Error("retain and write_on_close should default to false")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
[log]
level = "debug"

[markers]
invalidate = "surround"

[document]
retain = true
tab_width = 2
`)

	cfg, err := Parse("test.toml", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.LogLevel() != logging.LevelDebug {
		t.Errorf("expected debug, got %s", cfg.LogLevel())
	}
	if cfg.Invalidation() != marker.InvalidateSurround {
		t.Errorf("expected surround, got %s", cfg.Invalidation())
	}
	if !cfg.Document.Retain || cfg.Document.TabWidth != 2 {
		t.Errorf("unexpected document config %+v", cfg.Document)
	}
	if cfg.Document.WriteOnClose {
		t.Error("unset keys should keep their defaults")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantParse bool
	}{
		{"syntax", "[log\nlevel = 1", true},
		{"unknown key", "[log]\nverbosity = 3", true},
		{"wrong type", "[document]\nretain = \"yes\"", true},
		{"bad level", "[log]\nlevel = \"loud\"", false},
		{"bad strategy", "[markers]\ninvalidate = \"sometimes\"", false},
		{"bad tab width", "[document]\ntab_width = 0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.toml", []byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}

			var perr *ParseError
			if got := errors.As(err, &perr); got != tt.wantParse {
				t.Errorf("ParseError = %v, want %v (err: %v)", got, tt.wantParse, err)
			}
			if !tt.wantParse && !errors.Is(err, ErrValidationFailed) {
				t.Errorf("expected ErrValidationFailed, got %v", err)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("pos.toml", []byte("[log]\nlevel = = 1\n"))

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Line != 2 {
		t.Errorf("expected line 2, got %d", perr.Line)
	}
	if perr.Unwrap() == nil {
		t.Error("expected wrapped decoder error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.Document.TabWidth != 4 {
		t.Error("expected defaults")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("[document]\nwrite_on_close = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.Document.WriteOnClose {
		t.Error("expected write_on_close")
	}
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan *Config, 8)
	w, err := NewWatcher(path, func(cfg *Config) { changes <- cfg })
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			// A write can be observed before it is complete; wait for the final content.
			if cfg.LogLevel() == logging.LevelError {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatcherReportsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	errs := make(chan error, 8)
	w, err := NewWatcher(path, nil, WithErrorHandler(func(err error) { errs <- err }))
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[markers]\ninvalidate = \"sometimes\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-errs:
			// Partial writes may surface as parse errors first.
			if errors.Is(err, ErrValidationFailed) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for validation error")
		}
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), DefaultFileName), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestWatcherNilLogger(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), DefaultFileName), nil, WithWatcherLogger(nil))
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestWatcherDebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	changes := make(chan *Config, 8)
	w, err := NewWatcher(path, func(cfg *Config) { changes <- cfg }, WithDebounce(300*time.Millisecond))
	if err != nil {
		t.Fatalf("watcher failed: %v", err)
	}
	defer w.Close()

	for _, level := range []string{"debug", "warn", "error"} {
		if err := os.WriteFile(path, []byte("[log]\nlevel = \""+level+"\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case cfg := <-changes:
		if cfg.LogLevel() != logging.LevelError {
			t.Errorf("expected the last write, got level %v", cfg.LogLevel())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	select {
	case <-changes:
		t.Error("one burst of writes should reload once")
	case <-time.After(500 * time.Millisecond):
	}
}
