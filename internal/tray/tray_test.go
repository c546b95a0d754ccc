package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralDevicesSingular(t *testing.T) {
	assert.Equal(t, "Status: 1 device", pluralDevices(1))
}

func TestPluralDevicesPlural(t *testing.T) {
	assert.Equal(t, "Status: 0 devices", pluralDevices(0))
	assert.Equal(t, "Status: 3 devices", pluralDevices(3))
}
