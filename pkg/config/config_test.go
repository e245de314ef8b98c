package config

import (
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := &File{
		SchemaFile:    "s.yaml",
		ColumnsPerRow: 4,
		Active:        "p1",
		Profiles: map[string]Profile{
			"p1": {Name: "p1", APIURL: "http://api", Token: "tok"},
		},
		Version: 1,
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err := Path()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %v", info.Mode().Perm())
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("cfg diff (-want +got)\n%s", diff)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	f, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &File{Active: "default", Profiles: map[string]Profile{}, Version: 1}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("cfg diff (-want +got)\n%s", diff)
	}
}

func TestSetGet(t *testing.T) {
	f := &File{}
	for k, v := range map[string]string{
		"schemaFile":    "a.yaml",
		"recordFile":    "b.yaml",
		"columnsPerRow": " 2 ",
		"apiUrl":        "http://localhost:8080",
		"token":         "t",
	} {
		if err := f.Set(k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if got, _ := f.Get("columnsPerRow"); got != "2" {
		t.Fatalf("columnsPerRow = %q", got)
	}
	if got, _ := f.Get("apiUrl"); got != "http://localhost:8080" {
		t.Fatalf("apiUrl = %q", got)
	}
	if f.Profiles["default"].Token != "t" {
		t.Fatalf("token not stored in the active profile: %+v", f.Profiles)
	}
	if err := f.Set("columnsPerRow", "many"); err == nil {
		t.Fatalf("expected error for a non-numeric width")
	}
	if err := f.Set("colour", "red"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if _, err := f.Get("colour"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}
