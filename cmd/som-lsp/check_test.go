package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-som-lsp/internal/server"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "Good.som", "Good = (\n    run = ( ^ 1 )\n)")
	bad := writeFile(t, dir, "Bad.som", "Bad = (")
	other := writeFile(t, dir, "notes.txt", "hello")

	router := server.New().Router()

	var out bytes.Buffer
	failed, err := check(context.Background(), router, []string{good}, 0, &out)
	require.NoError(t, err)
	assert.False(t, failed)
	assert.Empty(t, out.String())

	out.Reset()
	failed, err = check(context.Background(), router, []string{good, bad, other}, 0, &out)
	require.NoError(t, err)
	assert.True(t, failed)
	assert.Contains(t, out.String(), bad+":1:")
	assert.Contains(t, out.String(), ": error: ")
	assert.Contains(t, out.String(), other+": skipped")
}

func TestCheck_MissingFile(t *testing.T) {
	_, err := check(context.Background(), server.New().Router(),
		[]string{filepath.Join(t.TempDir(), "Missing.som")}, 0, &bytes.Buffer{})
	require.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	logLevel = "loud"
	assert.Error(t, setupLogging())

	logLevel = "error"
	assert.NoError(t, setupLogging())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "som-lsp version ")
}
