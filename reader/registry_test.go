package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawinput/inputhub/input"
)

func newTestDevice(id int32, classes input.DeviceClasses) *Device {
	return &Device{
		ID:           id,
		Classes:      classes,
		keyCodeDown:  make(map[int32]bool),
		scanCodeDown: make(map[int32]bool),
		switchState:  make(map[int32]int32),
	}
}

func TestRegistryKeyCodeStateTracksAcrossEvents(t *testing.T) {
	d := newTestDevice(1, input.ClassKeyboard)
	r := NewRegistry(nil, nil)
	r.devices[d.ID] = d
	r.order = append(r.order, d.ID)

	d.trackState([]input.CookedEvent{
		input.KeyEvent{DeviceID: 1, Action: input.KeyDown, KeyCode: input.KeycodeHome, ScanCode: 102},
	})
	assert.True(t, r.GetKeyCodeState(1, input.KeycodeHome))
	assert.True(t, r.GetScanCodeState(1, 102))
	assert.False(t, r.GetKeyCodeState(1, input.KeycodeBack))

	d.trackState([]input.CookedEvent{
		input.KeyEvent{DeviceID: 1, Action: input.KeyUp, KeyCode: input.KeycodeHome, ScanCode: 102},
	})
	assert.False(t, r.GetKeyCodeState(1, input.KeycodeHome))
}

func TestRegistryKeyCodeStateAnyDevice(t *testing.T) {
	d1 := newTestDevice(1, input.ClassKeyboard)
	d2 := newTestDevice(2, input.ClassKeyboard)
	r := NewRegistry(nil, nil)
	r.devices[1] = d1
	r.devices[2] = d2
	r.order = []int32{1, 2}

	d2.trackState([]input.CookedEvent{
		input.KeyEvent{DeviceID: 2, Action: input.KeyDown, KeyCode: input.KeycodeVolumeUp, ScanCode: 200},
	})
	assert.True(t, r.GetKeyCodeState(-1, input.KeycodeVolumeUp))
	assert.False(t, r.GetKeyCodeState(1, input.KeycodeVolumeUp))
}

func TestRegistrySwitchState(t *testing.T) {
	d := newTestDevice(1, input.ClassSwitch)
	r := NewRegistry(nil, nil)
	r.devices[1] = d
	r.order = []int32{1}

	d.trackState([]input.CookedEvent{
		input.SwitchEvent{SwitchCode: 5, SwitchValue: 1},
	})
	assert.Equal(t, int32(1), r.GetSwitchState(1, 5))
	assert.Equal(t, int32(0), r.GetSwitchState(1, 6))
}

func TestRegistryDeviceLifecycle(t *testing.T) {
	d := newTestDevice(7, input.ClassTouch)
	r := NewRegistry(nil, nil)
	r.devices[7] = d
	r.order = []int32{7}

	info, ok := r.GetInputDeviceInfo(7)
	assert.True(t, ok)
	assert.Equal(t, int32(7), info.ID)

	r.RemoveDevice(7)
	_, ok = r.GetInputDeviceInfo(7)
	assert.False(t, ok)
	assert.Empty(t, r.GetInputDeviceIDs())
}

func TestRegistryMonitorReceivesBroadcast(t *testing.T) {
	r := NewRegistry(nil, nil)
	var got []input.CookedEvent
	unsub := r.Monitor(func(ce input.CookedEvent) { got = append(got, ce) })
	defer unsub()

	r.broadcast([]input.CookedEvent{input.SwitchEvent{SwitchCode: 1, SwitchValue: 1}})
	assert.Len(t, got, 1)

	unsub()
	r.broadcast([]input.CookedEvent{input.SwitchEvent{SwitchCode: 1, SwitchValue: 0}})
	assert.Len(t, got, 1)
}
