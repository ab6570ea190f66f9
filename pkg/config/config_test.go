package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	s.valid = true
	return nil
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "deck")
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("name: ${SAMPLE_NAME}\nport: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "deck" || s.Port != 9000 || !s.valid {
		t.Errorf("got %+v", s)
	}
}

func TestLoadValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var s sample
	if err := Load(path, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadOptionalMissingFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 8000}
	if err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" || !s.valid {
		t.Errorf("got %+v", s)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}
