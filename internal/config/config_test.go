package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Delay != DefaultDelay {
		t.Errorf("Delay = %v, want %v", cfg.Delay, DefaultDelay)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.ProbeTimeout != DefaultProbeTimeout {
		t.Errorf("ProbeTimeout = %v, want %v", cfg.ProbeTimeout, DefaultProbeTimeout)
	}
	if cfg.OutputDir != DefaultOutputDir || cfg.Prefix != DefaultPrefix {
		t.Errorf("output defaults wrong: %q %q", cfg.OutputDir, cfg.Prefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hunter.yaml")
	content := `
delay: 500ms
pages: 5
output_dir: /tmp/reports
platform_only: true
storage_driver: sqlite
storage_dsn: prospects.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Delay != 500*time.Millisecond {
		t.Errorf("Delay = %v", cfg.Delay)
	}
	if cfg.Pages != 5 || cfg.OutputDir != "/tmp/reports" || !cfg.PlatformOnly {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.StorageDriver != "sqlite" || cfg.StorageDSN != "prospects.db" {
		t.Errorf("storage values not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config should validate: %v", err)
	}
}

func TestLoadMissingNamedFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing named config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Delay: time.Second, Timeout: time.Second, Pages: 1}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("base config should validate: %v", err)
	}

	c := base()
	c.Delay = -1
	if err := c.Validate(); err == nil {
		t.Errorf("negative delay should fail")
	}

	c = base()
	c.StorageDriver = "mysql"
	if err := c.Validate(); err == nil {
		t.Errorf("unknown storage driver should fail")
	}

	c = base()
	c.StorageDriver = "postgres"
	if err := c.Validate(); err == nil {
		t.Errorf("driver without dsn should fail")
	}
}

func TestReadDomainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	content := "# comment line\n\nexample-one.com\n  https://example-two.net  \n# trailing comment\nexample-three.org\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	domains, err := ReadDomainFile(path)
	if err != nil {
		t.Fatalf("ReadDomainFile: %v", err)
	}
	want := []string{"example-one.com", "https://example-two.net", "example-three.org"}
	if len(domains) != len(want) {
		t.Fatalf("expected %d domains, got %d: %v", len(want), len(domains), domains)
	}
	for i, w := range want {
		if domains[i] != w {
			t.Errorf("domain %d = %q, want %q", i, domains[i], w)
		}
	}
}

func TestWriteSampleDomainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.txt")
	if err := WriteSampleDomainFile(path); err != nil {
		t.Fatalf("WriteSampleDomainFile: %v", err)
	}
	domains, err := ReadDomainFile(path)
	if err != nil {
		t.Fatalf("ReadDomainFile: %v", err)
	}
	if len(domains) != 3 {
		t.Errorf("sample should contain 3 usable domains, got %d", len(domains))
	}
}
