package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winelist/internal/utils"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "db.json")
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("DB_FILE", dbFile)
	t.Setenv("ADMIN_TOKEN", "cli-test")
	t.Setenv("LOG_LEVEL", "error")
	return dbFile
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		exportOut = ""
		auditStrict = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHashPasswordCmd(t *testing.T) {
	out, err := execute(t, "", "hash-password", "s3cret")
	require.NoError(t, err)
	assert.NoError(t, utils.VerifyPassword(strings.TrimSpace(out), "s3cret"))

	out, err = execute(t, "from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.NoError(t, utils.VerifyPassword(strings.TrimSpace(out), "from-stdin"))

	_, err = execute(t, "", "hash-password")
	assert.Error(t, err)
}

func TestImportExportAuditCmds(t *testing.T) {
	dbFile := setupEnv(t)
	dir := t.TempDir()

	backup := filepath.Join(dir, "backup.json")
	require.NoError(t, os.WriteFile(backup, []byte(`{"wines":[{"id":"w1","name":"Fumin","wineryId":"c1"}],"wineries":[{"id":"c1"}],"menu":[]}`), 0o644))

	out, err := execute(t, "", "import", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Backup imported successfully")
	assert.FileExists(t, dbFile)

	// A second import snapshots the first.
	out, err = execute(t, "", "import", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Safety backup created at")

	exported := filepath.Join(dir, "export.json")
	_, err = execute(t, "", "export", "--out", exported)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(dbFile)
	require.NoError(t, err)
	written, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, onDisk, written)

	out, err = execute(t, "", "export", "--out", "-")
	require.NoError(t, err)
	assert.Equal(t, string(onDisk), out)

	out, err = execute(t, "", "audit")
	require.NoError(t, err)
	assert.Contains(t, out, `"ok": true`)

	// Too few wines is only a warning.
	_, err = execute(t, "", "audit", "--strict")
	assert.NoError(t, err)
}

func TestImportCmd_Rejects(t *testing.T) {
	setupEnv(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"wines":[]}`), 0o644))

	_, err := execute(t, "", "import", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing keys: wineries, menu")
}

func TestRestoreCmd(t *testing.T) {
	dbFile := setupEnv(t)
	dir := t.TempDir()

	first := filepath.Join(dir, "first.json")
	require.NoError(t, os.WriteFile(first, []byte(`{"wines":[],"wineries":[{"id":"c1"}],"menu":[]}`), 0o644))
	second := filepath.Join(dir, "second.json")
	require.NoError(t, os.WriteFile(second, []byte(`{"wines":[],"wineries":[{"id":"c2"}],"menu":[]}`), 0o644))

	_, err := execute(t, "", "import", first)
	require.NoError(t, err)
	out, err := execute(t, "", "import", second)
	require.NoError(t, err)
	_, snapshot, found := strings.Cut(strings.SplitN(out, "\n", 2)[0], "Safety backup created at ")
	require.True(t, found, out)

	out, err = execute(t, "", "restore", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored "+snapshot)

	onDisk, err := os.ReadFile(dbFile)
	require.NoError(t, err)
	assert.Contains(t, string(onDisk), `"c1"`)
	assert.NotContains(t, string(onDisk), `"c2"`)

	_, err = execute(t, "", "restore", "db.safety-backup-1999-01-01T00-00-00-000Z.json")
	assert.ErrorContains(t, err, "snapshot not found")
}
