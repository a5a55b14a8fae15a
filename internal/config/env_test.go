package config

import (
	"os"
	"path/filepath"
	"testing"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	// t.Setenv registers the restore; unset so LoadEnv sees an empty slot.
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadEnv(t *testing.T) {
	unsetEnv(t, "DESK_TEST_PLAIN")
	unsetEnv(t, "DESK_TEST_QUOTED")
	unsetEnv(t, "DESK_TEST_EXPORTED")
	t.Setenv("DESK_TEST_EXISTING", "keep-me")

	path := filepath.Join(t.TempDir(), ".env")
	body := `# comment line
DESK_TEST_PLAIN=hello
DESK_TEST_QUOTED="quoted value"
export DESK_TEST_EXPORTED='single'
DESK_TEST_EXISTING=overwritten

not a pair
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}

	if got := os.Getenv("DESK_TEST_PLAIN"); got != "hello" {
		t.Fatalf("plain: got %q", got)
	}
	if got := os.Getenv("DESK_TEST_QUOTED"); got != "quoted value" {
		t.Fatalf("quoted: got %q", got)
	}
	if got := os.Getenv("DESK_TEST_EXPORTED"); got != "single" {
		t.Fatalf("exported: got %q", got)
	}
	if got := os.Getenv("DESK_TEST_EXISTING"); got != "keep-me" {
		t.Fatalf("existing var should win, got %q", got)
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
}
