package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "todoplanner", cmd.Use)
	assert.Contains(t, cmd.Long, "Telegram")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "migrate", "create-admin"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestFlags(t *testing.T) {
	cmd := NewRootCommand()
	debug := cmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, debug)
	assert.Equal(t, "false", debug.DefValue)

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("addr"))
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("SESSION_SECRET", "cli-test-secret-0123")
	t.Setenv("DATABASE_URL", filepath.Join(dir, "data", "cli.db"))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	dir := setupEnv(t)
	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
	assert.FileExists(t, filepath.Join(dir, "data", "cli.db"))
}

func TestCreateAdmin(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "create-admin", "--email", "root@example.com", "--password", "admin-pass-123")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin root@example.com")

	_, err = run(t, "create-admin", "--email", "root@example.com", "--password", "admin-pass-123")
	assert.ErrorContains(t, err, "conflict")

	_, err = run(t, "create-admin", "--email", "other@example.com")
	assert.ErrorContains(t, err, "password")
}

func TestMissingSecret(t *testing.T) {
	setupEnv(t)
	t.Setenv("SESSION_SECRET", "")
	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "SESSION_SECRET")
}
