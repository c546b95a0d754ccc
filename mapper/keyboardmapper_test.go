package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/input"
)

type fakeKeyLayout struct {
	keys map[int]struct {
		code  int32
		flags uint32
	}
}

func (f fakeKeyLayout) MapKey(scanCode int) (int32, uint32, bool) {
	e, ok := f.keys[scanCode]
	return e.code, e.flags, ok
}

func (f fakeKeyLayout) MapAxis(absCode int) (input.AxisMapping, bool) {
	return input.AxisMapping{}, false
}

func newFakeKeyLayout(pairs ...interface{}) fakeKeyLayout {
	l := fakeKeyLayout{keys: make(map[int]struct {
		code  int32
		flags uint32
	})}
	for i := 0; i < len(pairs); i += 2 {
		sc := pairs[i].(int)
		kc := pairs[i+1].(int32)
		l.keys[sc] = struct {
			code  int32
			flags uint32
		}{code: kc}
	}
	return l
}

func TestKeyboardMapperDownUp(t *testing.T) {
	layout := newFakeKeyLayout(30, int32(29)) // scancode 30 -> keycode 29 ('a')
	ctx := &Context{DeviceID: 1, KeyLayout: layout}
	m := NewKeyboardMapper(ctx)

	downOut := m.Process([]input.RawEvent{{When: 100, Kind: input.RawKey, Code: 30, Value: 1}})
	require.Len(t, downOut, 1)
	keyDown, ok := downOut[0].(input.KeyEvent)
	require.True(t, ok)
	assert.Equal(t, input.KeyDown, keyDown.Action)
	assert.Equal(t, int32(29), keyDown.KeyCode)
	assert.Equal(t, int32(30), keyDown.ScanCode)

	upOut := m.Process([]input.RawEvent{{When: 200, Kind: input.RawKey, Code: 30, Value: 0}})
	require.Len(t, upOut, 1)
	keyUp := upOut[0].(input.KeyEvent)
	assert.Equal(t, input.KeyUp, keyUp.Action)
	assert.Equal(t, int64(100), keyUp.DownTime)
}

func TestKeyboardMapperUnmappedScancodeIsIgnored(t *testing.T) {
	layout := newFakeKeyLayout()
	ctx := &Context{DeviceID: 1, KeyLayout: layout}
	m := NewKeyboardMapper(ctx)

	out := m.Process([]input.RawEvent{{When: 100, Kind: input.RawKey, Code: 99, Value: 1}})
	assert.Nil(t, out)
}

func TestKeyboardMapperRepeatReusesDownTime(t *testing.T) {
	layout := newFakeKeyLayout(30, int32(29))
	ctx := &Context{DeviceID: 1, KeyLayout: layout}
	m := NewKeyboardMapper(ctx)

	m.Process([]input.RawEvent{{When: 100, Kind: input.RawKey, Code: 30, Value: 1}})
	out := m.Process([]input.RawEvent{{When: 150, Kind: input.RawKey, Code: 30, Value: 2}}) // repeat (value=2)
	require.Len(t, out, 1)
	repeat := out[0].(input.KeyEvent)
	assert.Equal(t, input.KeyDown, repeat.Action)
	assert.Equal(t, int64(100), repeat.DownTime)
}

func TestKeyboardMapperWakeFlagsOnExternalDevice(t *testing.T) {
	layout := newFakeKeyLayout(30, int32(29))
	ctx := &Context{DeviceID: 1, KeyLayout: layout, Classes: input.ClassKeyboard | input.ClassExternal}
	m := NewKeyboardMapper(ctx)

	out := m.Process([]input.RawEvent{{When: 100, Kind: input.RawKey, Code: 30, Value: 1}})
	require.Len(t, out, 1)
	ev := out[0].(input.KeyEvent)
	assert.NotZero(t, ev.PolicyFlags&input.PolicyFlagWake)
}

func TestKeyboardMapperInternalDeviceNoWakeFlag(t *testing.T) {
	layout := newFakeKeyLayout(30, int32(29))
	ctx := &Context{DeviceID: 1, KeyLayout: layout, Classes: input.ClassKeyboard}
	m := NewKeyboardMapper(ctx)

	out := m.Process([]input.RawEvent{{When: 100, Kind: input.RawKey, Code: 30, Value: 1}})
	require.Len(t, out, 1)
	ev := out[0].(input.KeyEvent)
	assert.Zero(t, ev.PolicyFlags&input.PolicyFlagWake)
}

func TestKeyboardMapperResetSynthesizesCanceledUps(t *testing.T) {
	layout := newFakeKeyLayout(30, int32(29), 31, int32(48))
	ctx := &Context{DeviceID: 1, KeyLayout: layout}
	m := NewKeyboardMapper(ctx)

	m.Process([]input.RawEvent{{When: 100, Kind: input.RawKey, Code: 30, Value: 1}})
	m.Process([]input.RawEvent{{When: 110, Kind: input.RawKey, Code: 31, Value: 1}})

	out := m.Reset(500)
	require.Len(t, out, 2)
	for _, e := range out {
		ev := e.(input.KeyEvent)
		assert.Equal(t, input.KeyUp, ev.Action)
		assert.NotZero(t, ev.Flags&input.FlagCanceled)
	}
}

func TestKeyboardMapperDpadRotation(t *testing.T) {
	layout := newFakeKeyLayout(1, int32(input.KeycodeDpadUp))
	ctx := &Context{DeviceID: 1, KeyLayout: layout, Policy: fakeRotationPolicy{rotation: input.Rotation90}}
	m := NewKeyboardMapper(ctx)
	m.orientationAware = true

	out := m.Process([]input.RawEvent{{When: 100, Kind: input.RawKey, Code: 1, Value: 1}})
	require.Len(t, out, 1)
	ev := out[0].(input.KeyEvent)
	// Rotation90 maps dpad slot 0 (Up) -> slot 1 (Right).
	assert.Equal(t, int32(input.KeycodeDpadRight), ev.KeyCode)
}

type fakeRotationPolicy struct {
	rotation input.Rotation
}

func (p fakeRotationPolicy) GetDisplayInfo(deviceID int32) (input.DisplayInfo, bool) {
	return input.DisplayInfo{Orientation: p.rotation}, true
}

func (p fakeRotationPolicy) ObtainPointerController(deviceID int32) input.PointerController {
	return nil
}
