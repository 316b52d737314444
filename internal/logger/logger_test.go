package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	closeFn, err := Init(Options{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	closeFn()
	require.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestInitJSONWriter(t *testing.T) {
	var out bytes.Buffer
	closeFn, err := Init(Options{Enabled: true, Writer: &out, Format: "json", Level: slog.LevelWarn})
	require.NoError(t, err)
	defer closeFn()
	defer func() { _, _ = Init(Options{}) }()

	Info("dropped")
	Warn("kept", "id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	require.Equal(t, "kept", rec["msg"])
	require.EqualValues(t, 7, rec["id"])
}

func TestInitUnknownFormat(t *testing.T) {
	_, err := Init(Options{Enabled: true, Writer: &bytes.Buffer{}, Format: "xml"})
	require.Error(t, err)
}

func TestInitLogDir(t *testing.T) {
	dir := t.TempDir()
	closeFn, err := Init(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)
	Info("to file")
	closeFn()
	_, _ = Init(Options{})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
