package util

import (
	"testing"
)

func TestDetectDriver(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost/db":   "postgres",
		"postgresql://localhost/db":     "postgres",
		"mysql://u:p@tcp(localhost)/db": "mysql",
		"sqlite:///tmp/form.db":         "sqlite3",
		"file:form.db?cache=shared":     "sqlite3",
	}
	for dsn, want := range cases {
		got, err := DetectDriver(dsn)
		if err != nil {
			t.Fatalf("%s: %v", dsn, err)
		}
		if got != want {
			t.Fatalf("%s: want %s, got %s", dsn, want, got)
		}
	}
	if _, err := DetectDriver("mongodb://localhost"); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}

func TestDialects(t *testing.T) {
	pg, _ := DialectFromDriver("postgres")
	if pg.Placeholder(3) != "$3" || pg.QuoteIdent(`a"b`) != `"a""b"` {
		t.Fatalf("postgres dialect mismatch")
	}
	my, _ := DialectFromDriver("mysql")
	if my.Placeholder(3) != "?" || my.QuoteIdent("a`b") != "`a``b`" {
		t.Fatalf("mysql dialect mismatch")
	}
	if _, err := DialectFromDriver("oracle"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestDriverDSN(t *testing.T) {
	if got := DriverDSN("mysql", "mysql://u:p@tcp(h)/db"); got != "u:p@tcp(h)/db" {
		t.Fatalf("mysql dsn: %s", got)
	}
	if got := DriverDSN("sqlite3", "sqlite:///tmp/a.db"); got != "/tmp/a.db" {
		t.Fatalf("sqlite dsn: %s", got)
	}
	if got := DriverDSN("postgres", "postgres://h/db"); got != "postgres://h/db" {
		t.Fatalf("postgres dsn: %s", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("FORMCTL_TEST_VALUE", "x")
	if GetEnv("FORMCTL_TEST_VALUE", "d") != "x" || GetEnv("FORMCTL_TEST_MISSING", "d") != "d" {
		t.Fatalf("GetEnv mismatch")
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("FORM_ORIGINS", " http://a , ,http://b")
	got := GetEnvList("FORM_ORIGINS", "x")
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("unexpected list %q", got)
	}
	if got := GetEnvList("FORM_ORIGINS_UNSET", ""); got != nil {
		t.Fatalf("expected nil, got %q", got)
	}
}
