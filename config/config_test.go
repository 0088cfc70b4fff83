package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Compile.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", cfg.Compile.OutputDir)
	}
	if cfg.Compile.DefaultFunctionName == "" {
		t.Error("DefaultFunctionName should not be empty")
	}
	if cfg.REPL.HistorySize <= 0 {
		t.Errorf("HistorySize = %d, want > 0", cfg.REPL.HistorySize)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "does_not_exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	want := DefaultConfig()
	if cfg.Compile.OutputDir != want.Compile.OutputDir {
		t.Errorf("OutputDir = %q, want %q", cfg.Compile.OutputDir, want.Compile.OutputDir)
	}
}

func TestSaveToThenLoadFromRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Compile.OutputDir = "build"
	cfg.Compile.DefaultFunctionName = "my_func"
	cfg.Compile.DumpBitcode = true
	cfg.REPL.HistorySize = 42

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if got.Compile.OutputDir != "build" {
		t.Errorf("OutputDir = %q, want build", got.Compile.OutputDir)
	}
	if got.Compile.DefaultFunctionName != "my_func" {
		t.Errorf("DefaultFunctionName = %q, want my_func", got.Compile.DefaultFunctionName)
	}
	if !got.Compile.DumpBitcode {
		t.Error("DumpBitcode = false, want true")
	}
	if got.REPL.HistorySize != 42 {
		t.Errorf("HistorySize = %d, want 42", got.REPL.HistorySize)
	}
}
