package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func newRoot() *cobra.Command {
	cmd := &cobra.Command{Use: "root"}
	cmd.PersistentFlags().String("schema-file", "", "")
	cmd.PersistentFlags().String("record-file", "", "")
	cmd.PersistentFlags().Int("columns", 0, "")
	cmd.PersistentFlags().String("events-config", "", "")
	cmd.PersistentFlags().String("log-level", "", "")
	cmd.PersistentFlags().String("api-url", "", "")
	cmd.PersistentFlags().String("token", "", "")
	cmd.PersistentFlags().String("profile", "", "")
	return cmd
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	t.Run("defaults", func(t *testing.T) {
		r, err := Resolve(newRoot())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.SchemaFile != DefaultSchemaFile || r.RecordFile != DefaultRecordFile || r.ColumnsPerRow != DefaultColumns || r.Remote() {
			t.Fatalf("unexpected %+v", r)
		}
	})

	cfg := &File{
		SchemaFile:    "cfg.yaml",
		ColumnsPerRow: 4,
		Active:        "default",
		Profiles:      map[string]Profile{"default": {Name: "default", APIURL: "cfg", Token: "cfgtok"}},
		Version:       1,
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Run("config", func(t *testing.T) {
		r, err := Resolve(newRoot())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.SchemaFile != "cfg.yaml" || r.ColumnsPerRow != 4 || r.APIURL != "cfg" || r.Token != "cfgtok" {
			t.Fatalf("unexpected %+v", r)
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("FORMCTL_SCHEMA_FILE", "env.yaml")
		t.Setenv("FORMCTL_COLUMNS", "5")
		t.Setenv("FORMCTL_API_URL", "env")
		r, err := Resolve(newRoot())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.SchemaFile != "env.yaml" || r.ColumnsPerRow != 5 || r.APIURL != "env" || r.Token != "cfgtok" {
			t.Fatalf("unexpected %+v", r)
		}
	})

	t.Run("dotenv", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FORMCTL_RECORD_FILE=dot.yaml\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(filepath.Join(dir, ".env"))
		defer os.Unsetenv("FORMCTL_RECORD_FILE")
		r, err := Resolve(newRoot())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.RecordFile != "dot.yaml" {
			t.Fatalf("unexpected %+v", r)
		}
	})

	t.Run("flag", func(t *testing.T) {
		t.Setenv("FORMCTL_SCHEMA_FILE", "env.yaml")
		root := newRoot()
		for k, v := range map[string]string{"schema-file": "flag.yaml", "columns": "1", "api-url": "flag", "token": "flagtok"} {
			if err := root.PersistentFlags().Set(k, v); err != nil {
				t.Fatalf("set %s: %v", k, err)
			}
		}
		r, err := Resolve(root)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.SchemaFile != "flag.yaml" || r.ColumnsPerRow != 1 || r.APIURL != "flag" || r.Token != "flagtok" {
			t.Fatalf("unexpected %+v", r)
		}
	})

	t.Run("profile flag", func(t *testing.T) {
		cfg.Profiles["p2"] = Profile{Name: "p2", APIURL: "p2", Token: "p2tok"}
		if err := Save(cfg); err != nil {
			t.Fatalf("save: %v", err)
		}
		root := newRoot()
		if err := root.PersistentFlags().Set("profile", "p2"); err != nil {
			t.Fatalf("set profile: %v", err)
		}
		r, err := Resolve(root)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.APIURL != "p2" || r.Token != "p2tok" || r.Profile != "p2" {
			t.Fatalf("unexpected %+v", r)
		}
	})
}
