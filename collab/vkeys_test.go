package collab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/input"
)

func writeVKS(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "test.vks")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestLoadVirtualKeysMissingFileReturnsNilNoError(t *testing.T) {
	keys, err := LoadVirtualKeys(filepath.Join(t.TempDir(), "nope.vks"), nil)
	require.NoError(t, err)
	assert.Nil(t, keys)
}

func TestLoadVirtualKeysParsesLinesWithNoLayout(t *testing.T) {
	p := writeVKS(t, "# comment\n0x01:158:100:200:50:60\n")
	keys, err := LoadVirtualKeys(p, nil)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	k := keys[0]
	assert.Equal(t, int32(158), k.ScanCode)
	assert.Equal(t, int32(158), k.KeyCode) // no layout: identity fallback
	assert.Equal(t, int32(100), k.HitLeft)
	assert.Equal(t, int32(200), k.HitTop)
	assert.Equal(t, int32(50), k.HitRight)
	assert.Equal(t, int32(60), k.HitBottom)
}

func TestLoadVirtualKeysResolvesThroughLayout(t *testing.T) {
	p := writeVKS(t, "0x01:102:0:0:0:0\n")
	l, err := LoadKeyLayout(writeKL(t, "key 102 HOME\n"))
	require.NoError(t, err)

	keys, err := LoadVirtualKeys(p, l)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, int32(input.KeycodeHome), keys[0].KeyCode)
}

func TestLoadVirtualKeysMalformedLineIsVirtualKeyFileError(t *testing.T) {
	p := writeVKS(t, "not:enough:fields\n")
	_, err := LoadVirtualKeys(p, nil)
	require.Error(t, err)
	var coreErr *input.Error
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, input.VirtualKeyFileError, coreErr.Kind)
}
