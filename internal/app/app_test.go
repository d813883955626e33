package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
)

func setTestEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "articledesk.db")
	t.Setenv("DATABASE_PATH", dbPath)
	t.Setenv("JWT_SECRET", "test-jwt-secret-32bytes-long!!!!")
	return dbPath
}

func TestInit_WithValidConfig_Succeeds(t *testing.T) {
	dbPath := setTestEnv(t)

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.DatabasePath != dbPath {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, dbPath)
	}

	// グローバルロガーがJSON出力になっていることを確認する
	slog.Default().Info("init test")
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got error: %v\nraw: %s", err, buf.String())
	}
	if entry["msg"] != "init test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "init test")
	}
}

func TestInit_WithMissingConfig_ReturnsError(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("JWT_SECRET", "")

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
	if cfg != nil {
		t.Error("expected nil config on error")
	}
}
