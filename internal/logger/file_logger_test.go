package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_WritesHeaderEntriesAndFooter(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	s, err := NewSession("BTCUSDT", "D", Options{Dir: dir, Console: &console})
	require.NoError(t, err)

	s.Logger().WithField("offset", 42).Info("scan completed")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, dir, filepath.Dir(s.Path()))
	assert.Contains(t, filepath.Base(s.Path()), "BTCUSDT_D_")

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "DTW PATTERN SEARCH STARTED")
	assert.Contains(t, content, "Symbol: BTCUSDT | Interval: D")
	assert.Contains(t, content, "scan completed")
	assert.Contains(t, content, "offset=42")
	assert.Contains(t, content, "symbol=BTCUSDT")
	assert.Contains(t, content, "DTW PATTERN SEARCH ENDED")

	assert.Contains(t, console.String(), "scan completed")
	assert.NotContains(t, console.String(), "SEARCH STARTED", "banner goes to the file only")
}

func TestSession_Quiet(t *testing.T) {
	var console bytes.Buffer
	s, err := NewSession("ETHUSDT", "240", Options{Dir: t.TempDir(), Console: &console, Quiet: true})
	require.NoError(t, err)
	defer s.Close()

	s.Logger().Info("hidden")
	assert.Empty(t, console.String())
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Console: &buf, Format: "json", Level: "debug"})
	require.NoError(t, err)

	l.WithField("distance", 1.5).Debug("scored")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scored", entry["msg"])
	assert.Equal(t, 1.5, entry["distance"])
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}
