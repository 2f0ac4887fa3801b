package repository

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	dmodels "SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
)

func TestFSModelStoreRoundTrip(t *testing.T) {
	s := NewFSModelStore(t.TempDir())
	if s.Exists(dmodels.Gold, drepo.H1) {
		t.Fatalf("empty store should not report artifacts")
	}
	if err := s.Save(dmodels.Gold, drepo.H1, []byte("scaler"), []byte("model")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !s.Exists(dmodels.Gold, drepo.H1) {
		t.Fatalf("saved pair should exist")
	}
	scaler, model, err := s.Load(dmodels.Gold, drepo.H1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(scaler, []byte("scaler")) || !bytes.Equal(model, []byte("model")) {
		t.Fatalf("blob mismatch")
	}
}

func TestFSModelStoreFileNaming(t *testing.T) {
	dir := t.TempDir()
	s := NewFSModelStore(dir)
	if err := s.Save(dmodels.Silver, drepo.H3, []byte("s"), []byte("m")); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, name := range []string{"silver_day3.model", "silver_day3.scaler"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestFSModelStoreLoneFileIsMissing(t *testing.T) {
	dir := t.TempDir()
	s := NewFSModelStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "gold_day2.model"), []byte("m"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if s.Exists(dmodels.Gold, drepo.H2) {
		t.Fatalf("pair with a missing scaler must not exist")
	}
}

func TestFSModelStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "models")
	s := NewFSModelStore(dir)
	if err := s.Save(dmodels.Gold, drepo.H2, []byte("s"), []byte("m")); err != nil {
		t.Fatalf("save into missing dir: %v", err)
	}
}
