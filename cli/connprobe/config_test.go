package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFillsUnsetFlags(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "server": "127.0.0.1:9000",
  "message": "from file",
  "tls": true,
  "server_name": "example.org",
  "fingerprint": "chrome",
  "timeout": "3s",
  "interface": "lo",
  "fwmark": 256,
  "verbose": true
}`), 0o644))

	f := &flags{ConfigFile: path, Message: "from flag"}
	require.NoError(t, loadConfig(f))
	require.Equal(t, "127.0.0.1:9000", f.Server)
	require.Equal(t, "from flag", f.Message)
	require.True(t, f.TLS)
	require.Equal(t, "example.org", f.ServerName)
	require.Equal(t, "chrome", f.Fingerprint)
	require.Equal(t, 3*time.Second, f.Timeout)
	require.Equal(t, "lo", f.Interface)
	require.Equal(t, 256, f.FWMark)
	require.True(t, f.Verbose)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()
	f := new(flags)
	require.NoError(t, loadConfig(f))
	require.Equal(t, defaultTimeout, f.Timeout)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.Error(t, loadConfig(&flags{ConfigFile: filepath.Join(dir, "missing.json")}))

	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	require.Error(t, loadConfig(&flags{ConfigFile: path}))

	path = filepath.Join(dir, "timeout.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout": "soon"}`), 0o644))
	require.Error(t, loadConfig(&flags{ConfigFile: path}))
}
