// Package collab holds reference, file-backed implementations of the
// input package's collaborator interfaces (KeyLayout, PropertyMap): the
// policy-layer concerns the core package only ever consumes through an
// interface (§1, §4, §6).
package collab

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/rawinput/inputhub/input"
)

// FileProperties loads a device's idc-style configuration file — a flat
// `key = value` properties file keyed by the device's bus:vendor:product
// descriptor (§6) — and exposes it as an input.PropertyMap. Parsing is
// delegated to viper's "properties" config type rather than hand-rolled,
// the same way internal/envconfig loads the daemon's startup configuration.
type FileProperties struct {
	v *viper.Viper
}

// LoadProperties reads path as a properties file. A missing file is not an
// error: it yields an empty FileProperties, so every mapper falls back to
// its own defaults per §7's "ConfigurationError... mapper degrades".
func LoadProperties(path string) (*FileProperties, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")
	if err := v.ReadInConfig(); err != nil {
		if isNotExist(err) {
			return &FileProperties{v: v}, nil
		}
		return nil, input.NewError(input.ConfigurationError, -1, path, err)
	}
	return &FileProperties{v: v}, nil
}

func isNotExist(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	var notFound viper.ConfigFileNotFoundError
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return strings.Contains(err.Error(), notFound.Error())
}

func (p *FileProperties) GetBool(key string) (bool, bool) {
	if !p.v.IsSet(key) {
		return false, false
	}
	return p.v.GetBool(key), true
}

func (p *FileProperties) GetInt(key string) (int, bool) {
	if !p.v.IsSet(key) {
		return 0, false
	}
	return p.v.GetInt(key), true
}

func (p *FileProperties) GetFloat(key string) (float64, bool) {
	if !p.v.IsSet(key) {
		return 0, false
	}
	return p.v.GetFloat64(key), true
}

func (p *FileProperties) GetString(key string) (string, bool) {
	if !p.v.IsSet(key) {
		return "", false
	}
	return p.v.GetString(key), true
}

// ConfigPath builds the on-disk path for a device's idc file given the
// configuration directory and the device's identifier.
func ConfigPath(dir string, id input.Identifier) string {
	return fmt.Sprintf("%s/%s.idc", dir, sanitize(id.ConfigDescriptor()))
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}

var _ input.PropertyMap = (*FileProperties)(nil)
