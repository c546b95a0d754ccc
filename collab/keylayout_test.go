package collab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/input"
)

func writeKL(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "test.kl")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestLoadKeyLayoutMissingFileIsEmptyNotError(t *testing.T) {
	l, err := LoadKeyLayout(filepath.Join(t.TempDir(), "nonexistent.kl"))
	require.NoError(t, err)
	_, _, ok := l.MapKey(1)
	assert.False(t, ok)
}

func TestLoadKeyLayoutParsesKeyLines(t *testing.T) {
	p := writeKL(t, "# comment\nkey 102 HOME\nkey 158 BACK WAKE\n")
	l, err := LoadKeyLayout(p)
	require.NoError(t, err)

	kc, flags, ok := l.MapKey(102)
	require.True(t, ok)
	assert.Equal(t, int32(input.KeycodeHome), kc)
	assert.Zero(t, flags)

	kc, flags, ok = l.MapKey(158)
	require.True(t, ok)
	assert.Equal(t, int32(input.KeycodeBack), kc)
	assert.Equal(t, LayoutFlagWake, int(flags))
}

func TestLoadKeyLayoutUnknownScancodeMisses(t *testing.T) {
	p := writeKL(t, "key 102 HOME\n")
	l, err := LoadKeyLayout(p)
	require.NoError(t, err)

	_, _, ok := l.MapKey(999)
	assert.False(t, ok)
}

func TestLoadKeyLayoutParsesAxisLines(t *testing.T) {
	p := writeKL(t, "axis 0 X flat 16 fuzz 4\n")
	l, err := LoadKeyLayout(p)
	require.NoError(t, err)

	mapping, ok := l.MapAxis(0)
	require.True(t, ok)
	assert.Equal(t, input.AxisX, mapping.Axis)
	assert.Equal(t, int32(16), mapping.Flat)
	assert.Equal(t, int32(4), mapping.Fuzz)
	assert.False(t, mapping.HasHigh)
}

func TestLoadKeyLayoutParsesSplitAxis(t *testing.T) {
	p := writeKL(t, "axis 2 X split 128 TILT_X\n")
	l, err := LoadKeyLayout(p)
	require.NoError(t, err)

	mapping, ok := l.MapAxis(2)
	require.True(t, ok)
	assert.Equal(t, int32(128), mapping.SplitValue)
	assert.True(t, mapping.HasHigh)
	assert.Equal(t, input.AxisTiltX, mapping.HighAxis)
}

func TestLoadKeyLayoutUnknownKeycodeIsConfigurationError(t *testing.T) {
	p := writeKL(t, "key 102 NOT_A_REAL_KEYCODE\n")
	_, err := LoadKeyLayout(p)
	require.Error(t, err)
	var coreErr *input.Error
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, input.ConfigurationError, coreErr.Kind)
}
