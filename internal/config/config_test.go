package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Host)
	}
	if cfg.Port != 25575 {
		t.Errorf("Port = %d, want 25575", cfg.Port)
	}
	if cfg.MaxChunkEdge != 32 {
		t.Errorf("MaxChunkEdge = %d, want 32", cfg.MaxChunkEdge)
	}
	if cfg.GlobalBudget.Std() != 5*time.Minute {
		t.Errorf("GlobalBudget = %v, want 5m", cfg.GlobalBudget.Std())
	}
	if cfg.Addr() != "localhost:25575" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "craftctl.yaml")
	content := `host: mc.example.com
port: 25580
password: hunter2
dial_timeout: 10s
max_chunk_edge: 16
global_budget: 2m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Host != "mc.example.com" || cfg.Port != 25580 {
		t.Errorf("host/port = %s/%d", cfg.Host, cfg.Port)
	}
	if cfg.Password != "hunter2" {
		t.Errorf("Password = %q", cfg.Password)
	}
	if cfg.DialTimeout.Std() != 10*time.Second {
		t.Errorf("DialTimeout = %v", cfg.DialTimeout.Std())
	}
	if cfg.MaxChunkEdge != 16 {
		t.Errorf("MaxChunkEdge = %d", cfg.MaxChunkEdge)
	}
	if cfg.GlobalBudget.Std() != 2*time.Minute {
		t.Errorf("GlobalBudget = %v", cfg.GlobalBudget.Std())
	}
	// Unset keys keep their defaults.
	if cfg.GroundBlock != "grass_block" {
		t.Errorf("GroundBlock = %q, want default", cfg.GroundBlock)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "craftctl.toml")
	content := `host = "10.0.0.5"
port = 25575
command_timeout = "45s"
parallelism = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Host != "10.0.0.5" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.CommandTimeout.Std() != 45*time.Second {
		t.Errorf("CommandTimeout = %v", cfg.CommandTimeout.Std())
	}
	if cfg.Parallelism != 4 {
		t.Errorf("Parallelism = %d", cfg.Parallelism)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "craftctl.yaml")
	if err := os.WriteFile(path, []byte("host: from-file\npassword: filepass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CRAFTCTL_HOST", "from-env")
	t.Setenv("CRAFTCTL_RCON_PASSWORD", "envpass")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Host != "from-env" {
		t.Errorf("Host = %q, env should override file", cfg.Host)
	}
	if cfg.Password != "envpass" {
		t.Errorf("Password = %q, env should override file", cfg.Password)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want default", cfg.Host)
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "craftctl.yaml")
	if err := os.WriteFile(path, []byte("host: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
