package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oledock/oledock/internal/draw"
)

func TestNewServerConfigCreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "oledock")
	sc := NewServerConfig(dir, false, false)

	// A default param file lands on disk.
	_, err := os.Stat(sc.GetCompleteParamFilename())
	require.NoError(t, err)

	assert.Equal(t, 10, sc.Fps)
	assert.Equal(t, 10, sc.Brightness)
	assert.Equal(t, draw.ShiftSimple, sc.ShiftMode())
	assert.True(t, sc.ShowTime)
	assert.False(t, sc.ApiParam.Enabled)
}

func TestNewServerConfigReadsExisting(t *testing.T) {
	dir := t.TempDir()
	param := []byte("fps: 4\nbrightness: 3\noled_shift: \"off\"\nshow_time: false\napi:\n  enabled: true\n  port: 7000\n  api_key: k\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "param.yaml"), param, 0660))

	sc := NewServerConfig(dir, false, false)
	assert.Equal(t, 4, sc.Fps)
	assert.Equal(t, 3, sc.Brightness)
	assert.Equal(t, draw.ShiftOff, sc.ShiftMode())
	assert.False(t, sc.ShowTime)
	assert.True(t, sc.ApiParam.Enabled)
	assert.Equal(t, int64(7000), sc.ApiParam.Port)
}

func TestNewServerConfigClampsValues(t *testing.T) {
	dir := t.TempDir()
	param := []byte("fps: 0\nbrightness: 42\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "param.yaml"), param, 0660))

	sc := NewServerConfig(dir, false, false)
	assert.Equal(t, 10, sc.Fps)
	assert.Equal(t, 10, sc.Brightness)
}
