package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/brandkit"
	"github.com/eringen/brandkit/domain"
)

func TestEncodeFormats(t *testing.T) {
	h := domain.DefaultHeaderSettings()

	var js bytes.Buffer
	require.NoError(t, encode(&js, "json", h))
	assert.Contains(t, js.String(), `"fontFamily": "serif"`)

	var yml bytes.Buffer
	require.NoError(t, encode(&yml, "yaml", h))
	assert.Contains(t, yml.String(), "fontFamily: serif")

	assert.Error(t, encode(&bytes.Buffer{}, "xml", h))
}

func TestInitWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	initCmd.SetOut(&out)
	initForce = false

	require.NoError(t, runInit(initCmd, []string{dir}))
	assert.Contains(t, out.String(), "brandkit.yaml")

	cfg, err := brandkit.LoadConfig(filepath.Join(dir, "brandkit.yaml"))
	require.NoError(t, err)
	assert.Equal(t, brandkit.BackendSQLite, cfg.Backend)
	assert.Equal(t, domain.DefaultHeroCandidates, cfg.HeroCandidates)

	_, err = os.Stat(filepath.Join(dir, ".env.example"))
	require.NoError(t, err)

	assert.Error(t, runInit(initCmd, []string{dir}), "second init must not overwrite")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "brandkit dev\n", out.String())
}
