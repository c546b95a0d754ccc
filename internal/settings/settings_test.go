package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/input"
)

func TestLoadCreatesDefaultsOnFirstRun(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(1080), s.DisplayWidth)
	assert.Equal(t, int32(1920), s.DisplayHeight)
	assert.Equal(t, int32(input.Rotation0), s.Rotation)

	p, err := Path()
	require.NoError(t, err)
	assert.FileExists(t, p)
}

func TestSetDisplayPersistsAcrossLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := Load()
	require.NoError(t, err)
	require.NoError(t, s.SetDisplay(800, 600, input.Rotation90))

	reloaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(800), reloaded.DisplayWidth)
	assert.Equal(t, int32(600), reloaded.DisplayHeight)
	assert.Equal(t, int32(input.Rotation90), reloaded.Rotation)
}

func TestDisplayReflectsCurrentState(t *testing.T) {
	s := Default()
	d := s.Display()
	assert.Equal(t, int32(1080), d.Width)
	assert.Equal(t, int32(1920), d.Height)
	assert.Equal(t, input.Rotation0, d.Orientation)
}
