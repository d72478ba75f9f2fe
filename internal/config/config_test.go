package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := ParseArgs([]string{"-c", filepath.Join(t.TempDir(), "absent.json")}, envOf(nil), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "localhost:5000", opts.RESTAddress)
	assert.Equal(t, "localhost:8001", opts.SOAPAddress)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, DefaultUsers(), opts.Users)
	assert.False(t, opts.TLSEnabled())
}

func TestParseArgs_Flags(t *testing.T) {
	opts, err := ParseArgs([]string{
		"-a", ":9000", "-s", ":9001", "-l", "debug",
		"-tls-cert", "c.pem", "-tls-key", "k.pem",
		"-config", filepath.Join(t.TempDir(), "absent.json"),
	}, envOf(nil), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, ":9000", opts.RESTAddress)
	assert.Equal(t, ":9001", opts.SOAPAddress)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.True(t, opts.TLSEnabled())
}

func TestParseArgs_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"rest_address": ":7000",
		"soap_address": ":7001",
		"users": {"carol": "pw"}
	}`), 0o600))

	opts, err := ParseArgs([]string{"-a", ":6000"}, envOf(map[string]string{
		"CONFIG":       path,
		"SOAP_ADDRESS": ":8888",
		"LOG_LEVEL":    "warn",
	}), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, ":7000", opts.RESTAddress, "config file overrides flags")
	assert.Equal(t, ":8888", opts.SOAPAddress, "environment overrides config file")
	assert.Equal(t, "warn", opts.LogLevel)
	assert.Equal(t, map[string]string{"carol": "pw"}, opts.Users)
}

func TestParseArgs_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "bad config file", args: []string{"-c", bad}},
		{name: "same address", args: []string{"-a", ":1", "-s", ":1", "-c", filepath.Join(dir, "absent.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args, envOf(nil), io.Discard)
			assert.Error(t, err)
		})
	}
}
