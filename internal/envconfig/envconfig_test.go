package envconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoFileOrEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/dev/input", cfg.DeviceDir)
	assert.Equal(t, "/etc/inputhub/idc", cfg.ConfigDir)
	assert.Equal(t, "/etc/inputhub/keylayout", cfg.KeyLayoutDir)
	assert.Equal(t, "/etc/inputhub/virtualkeys", cfg.VirtualKeyDir)
	assert.Equal(t, "inputhub", cfg.WakeLockName)
	assert.Equal(t, 250*time.Microsecond, cfg.SMPSettleDelay)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/dev/input", cfg.DeviceDir)
}

func TestLoadEnvVarOverridesDefault(t *testing.T) {
	t.Setenv("INPUTHUB_DEVICE_DIR", "/custom/input")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/custom/input", cfg.DeviceDir)
}

func TestLoadConfigFileIsRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inputhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wakelock_name: custom-lock\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-lock", cfg.WakeLockName)
}

func TestLoadEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inputhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wakelock_name: from-file\n"), 0o644))
	t.Setenv("INPUTHUB_WAKELOCK_NAME", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.WakeLockName)
}
