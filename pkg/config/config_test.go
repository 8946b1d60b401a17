package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var errNoKey = errors.New("key is required")

type sampleConfig struct {
	Key     string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"5s"`
}

func (c sampleConfig) Validate() error {
	if c.Key == "" {
		return errNoKey
	}
	return nil
}

func TestNewProcessesPrefixAndDefaults(t *testing.T) {
	t.Setenv("SAMPLE_KEY", "abc")

	conf, err := New[sampleConfig]("SAMPLE")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Key != "abc" || conf.Timeout != 5*time.Second {
		t.Fatalf("unexpected config: %#v", conf)
	}
}

func TestNewRunsValidator(t *testing.T) {
	t.Setenv("SAMPLE_KEY", "")

	_, err := New[sampleConfig]("SAMPLE")
	if !errors.Is(err, errNoKey) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportEnvironmentKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CFGTEST_FROM_FILE=file\nCFGTEST_SHADOWED=file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CFGTEST_SHADOWED", "env")
	t.Setenv("CFGTEST_FROM_FILE", "")
	os.Unsetenv("CFGTEST_FROM_FILE")

	if err := exportEnvironment(path); err != nil {
		t.Fatalf("exportEnvironment() error = %v", err)
	}
	if got := os.Getenv("CFGTEST_FROM_FILE"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("CFGTEST_SHADOWED"); got != "env" {
		t.Fatalf("environment must win over the file, got %q", got)
	}
}
