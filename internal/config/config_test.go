package config_test

import (
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/stackmill/wikimport/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wikimport.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadReadsFileAndDefaults(t *testing.T) {
	path := writeConfigFile(t, `
source:
  root: /srv/corpus
  catalog_dsn: user:pass@tcp(localhost)/legacy
wiki:
  url: https://wiki.example.com
  token_id: abc
  token_secret: def
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Source.Root != "/srv/corpus" {
		t.Fatalf("unexpected root %q", cfg.Source.Root)
	}
	if cfg.Source.CatalogDriver != "mysql" {
		t.Fatalf("expected default catalog driver, got %q", cfg.Source.CatalogDriver)
	}
	if cfg.State.Path != "wikimport.db" {
		t.Fatalf("expected default state path, got %q", cfg.State.Path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadRejectsMissingWikiToken(t *testing.T) {
	path := writeConfigFile(t, `
source:
  root: /srv/corpus
  catalog_dsn: dsn
wiki:
  url: https://wiki.example.com
`)

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfigFile(t, `
source:
  root: /srv/corpus
  catalog_dsn: dsn
wiki:
  url: https://wiki.example.com
  token_id: abc
  token_secret: def
logging:
  format: xml
`)

	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for log format")
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := &config.Config{
		Source: config.SourceConfig{
			Root:          "/srv/corpus",
			CatalogDriver: "mysql",
			CatalogDSN:    "dsn",
		},
		Wiki: config.WikiConfig{
			URL:         "https://wiki.example.com",
			TokenID:     "abc",
			TokenSecret: "def",
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
