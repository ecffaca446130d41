package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeTestConfig writes a config file whose paths all live under a temp
// directory and returns its location. HOME is pointed at the same directory
// so tilde expansion stays sandboxed.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("ACOUSTID_API_KEY", "")

	contents := fmt.Sprintf(`
[paths]
import_dir = %q
log_dir = %q
state_dir = %q

[ssh]
config_path = %q

[history]
enabled = true
path = %q
%s`,
		filepath.Join(base, "import"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "state"),
		filepath.Join(base, "ssh_config"),
		filepath.Join(base, "state", "history.db"),
		extra,
	)

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func writeSSHConfig(t *testing.T, configPath, contents string) {
	t.Helper()
	base := filepath.Dir(configPath)
	if err := os.WriteFile(filepath.Join(base, "ssh_config"), []byte(contents), 0o600); err != nil {
		t.Fatalf("write ssh_config: %v", err)
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
