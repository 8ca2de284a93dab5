package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUserConfig(t *testing.T, content string) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "filesift")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBackupUserConfig_CreatesTimestampedCopy(t *testing.T) {
	// Given: an existing user config
	writeUserConfig(t, "version: 1\n")

	// When: backing it up
	backupPath, err := BackupUserConfig()
	require.NoError(t, err)
	require.NotEmpty(t, backupPath)

	// Then: the backup carries the original content
	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))
}

func TestBackupUserConfig_NoConfigIsNotAnError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	backupPath, err := BackupUserConfig()

	assert.NoError(t, err)
	assert.Empty(t, backupPath)
}

func TestListUserConfigBackups_NewestFirst(t *testing.T) {
	path := writeUserConfig(t, "version: 1\n")

	_, err := BackupUserConfig()
	require.NoError(t, err)

	backups, err := ListUserConfigBackups()
	require.NoError(t, err)
	require.NotEmpty(t, backups)
	assert.Contains(t, backups[0], filepath.Base(path)+BackupSuffix)
}
