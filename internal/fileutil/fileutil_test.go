package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sub", "doc.yaml")

	if err := WriteAtomic(p, []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteAtomic(p, []byte("two")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "two" {
		t.Fatalf("content = %q", b)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != Perm {
		t.Fatalf("perm = %v", info.Mode().Perm())
	}
	entries, err := os.ReadDir(filepath.Dir(p))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover files: %v", entries)
	}
}

func TestReadIfExists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing.yaml")
	b, ok, err := ReadIfExists(p)
	if err != nil || ok || b != nil {
		t.Fatalf("missing file: %q %v %v", b, ok, err)
	}
	if err := RemoveIfExists(p); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestQuarantine(t *testing.T) {
	p := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(p, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	dst, err := Quarantine(p, now)
	if err != nil {
		t.Fatalf("quarantine: %v", err)
	}
	if !strings.HasSuffix(dst, ".corrupt-20250102T030405Z") {
		t.Fatalf("dst = %s", dst)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("original still present: %v", err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "{" {
		t.Fatalf("quarantined content = %q", b)
	}
}
