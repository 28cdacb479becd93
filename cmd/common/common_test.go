package common

import (
	"bytes"
	"flag"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagValidator(t *testing.T) {
	dir := t.TempDir()

	v := NewFlagValidator().
		ValidateInt("window", 60, 1, 100).
		ValidateChoice("method", "FULL", []string{"full", "band", "fast"})
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.GetError())

	v.ValidateInt("k", 1, 2, 10).
		ValidateFile("data", filepath.Join(dir, "missing.csv"), true).
		ValidateDirectory("data-root", dir, true)
	require.True(t, v.HasErrors())
	assert.Contains(t, v.GetError().Error(), "k must be between 2 and 10, got: 1")
	assert.Contains(t, v.GetError().Error(), "data file does not exist")

	single := NewFlagValidator().ValidateFile("config", "", true)
	assert.EqualError(t, single.GetError(), "validation error: config is required")
}

func TestCommonFlagsAndSetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cf := RegisterCommonFlags(fs)

	require.NoError(t, fs.Parse([]string{"-silent", "-log-level", "debug", "-config", "run.yaml"}))

	assert.Equal(t, "run.yaml", *cf.ConfigFile)
	assert.Equal(t, ".env", *cf.EnvFile)
	assert.Equal(t, map[string]bool{"silent": true, "log-level": true, "config": true}, SetFlags(fs))

	l := cf.NewCLILogger()
	assert.True(t, l.SilentMode)
	assert.Equal(t, LogLevelDebug, l.Level)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf)

	l.Header("pattern search")
	l.Info("loaded %d candles", 10)
	l.Success("done")
	assert.Contains(t, buf.String(), "🎯 PATTERN SEARCH")
	assert.Contains(t, buf.String(), "loaded 10 candles")
	assert.Contains(t, buf.String(), "✅ done")

	buf.Reset()
	l.ShowEmojis = false
	l.SetSilentMode(true)
	l.Info("hidden")
	l.Error("boom")
	assert.Equal(t, "[ERROR] boom\n", buf.String())
}
