// Package envconfig loads the daemon's process-wide startup configuration:
// the globals Design Note §9 says must be threaded through an
// EnvironmentConfig rather than read from package-level state.
package envconfig

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config bundles every path and tunable the event hub, registry, and
// mappers need at startup. Zero value is not valid; use Load.
type Config struct {
	// DeviceDir is the directory scanned and watched for evdev nodes
	// (default /dev/input).
	DeviceDir string
	// ConfigDir holds <descriptor>.idc property files.
	ConfigDir string
	// KeyLayoutDir holds <descriptor>.kl files.
	KeyLayoutDir string
	// VirtualKeyDir holds <descriptor>.vks files.
	VirtualKeyDir string
	// WakeLockName is the name passed to acquire/release (§5).
	WakeLockName string
	// SMPSettleDelay is the post-wait settle delay applied when the host
	// has more than one CPU (§4.2).
	SMPSettleDelay time.Duration
}

const envPrefix = "INPUTHUB"

// Load reads configuration from an optional file at path (if non-empty) and
// then from INPUTHUB_*-prefixed environment variables, which take priority.
// A missing file is not an error: every field keeps its default.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("device_dir", "/dev/input")
	v.SetDefault("config_dir", "/etc/inputhub/idc")
	v.SetDefault("keylayout_dir", "/etc/inputhub/keylayout")
	v.SetDefault("virtualkey_dir", "/etc/inputhub/virtualkeys")
	v.SetDefault("wakelock_name", "inputhub")
	v.SetDefault("smp_settle_delay_us", 250)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return Config{}, err
			}
		}
	}

	return Config{
		DeviceDir:      v.GetString("device_dir"),
		ConfigDir:      v.GetString("config_dir"),
		KeyLayoutDir:   v.GetString("keylayout_dir"),
		VirtualKeyDir:  v.GetString("virtualkey_dir"),
		WakeLockName:   v.GetString("wakelock_name"),
		SMPSettleDelay: time.Duration(v.GetInt("smp_settle_delay_us")) * time.Microsecond,
	}, nil
}
