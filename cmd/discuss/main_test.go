package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ljosc/discuss/internal/credstore"
	"github.com/ljosc/discuss/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) (configDir, profileDir string) {
	t.Helper()
	for _, key := range []string{"DISCUSS_API_URL", "DISCUSS_ADDR", "DISCUSS_PROFILE_DIR", "DISCUSS_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	configDir, profileDir = t.TempDir(), t.TempDir()
	content := "api_url: http://localhost:4000\nprofile_dir: " + profileDir + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o600))
	return configDir, profileDir
}

func TestStatusAndLogout(t *testing.T) {
	configDir, profileDir := writeConfig(t)

	out, err := run(t, "--config", configDir, "status")
	require.NoError(t, err)
	assert.Equal(t, "logged_out\n", out)

	store, err := credstore.OpenProfile(profileDir)
	require.NoError(t, err)
	require.NoError(t, credstore.Save(store, domain.Credentials{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, store.Close())

	out, err = run(t, "--config", configDir, "status")
	require.NoError(t, err)
	assert.Equal(t, "logged_in\n", out)

	out, err = run(t, "--config", configDir, "logout")
	require.NoError(t, err)
	assert.Equal(t, "credentials cleared\n", out)

	out, err = run(t, "--config", configDir, "status")
	require.NoError(t, err)
	assert.Equal(t, "logged_out\n", out)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "--config", t.TempDir(), "status")
	assert.Error(t, err)
}
