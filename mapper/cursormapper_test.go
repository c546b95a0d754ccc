package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/input"
)

type fakeProperties struct {
	strings map[string]string
}

func (f fakeProperties) GetBool(key string) (bool, bool)       { return false, false }
func (f fakeProperties) GetInt(key string) (int, bool)         { return 0, false }
func (f fakeProperties) GetFloat(key string) (float64, bool)   { return 0, false }
func (f fakeProperties) GetString(key string) (string, bool) {
	v, ok := f.strings[key]
	return v, ok
}

type fakePointerController struct {
	x, y float32
}

func (p *fakePointerController) SetPosition(x, y float32) { p.x, p.y = x, y }

func (p *fakePointerController) GetPosition() (float32, float32) { return p.x, p.y }

func (p *fakePointerController) Move(dx, dy float32) {
	p.x += dx
	p.y += dy
}

func (p *fakePointerController) SetButtonState(buttons uint32) {}

func (p *fakePointerController) SetSpots(coords []input.PointerCoords, ids input.PointerBitset) {}

func (p *fakePointerController) ClearSpots() {}

func (p *fakePointerController) Fade() {}

func (p *fakePointerController) Unfade() {}

func sync(when int64) input.RawEvent {
	return input.RawEvent{When: when, Kind: input.RawSync, Code: input.SyncReport}
}

func TestCursorMapperPointerModeUsesController(t *testing.T) {
	controller := &fakePointerController{x: 10, y: 10}
	ctx := &Context{DeviceID: 1, Policy: fakePointerPolicy{controller: controller}}
	m := NewCursorMapper(ctx)
	require.Equal(t, CursorModePointer, m.mode)

	out := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawRel, Code: input.RelX, Value: 5},
		{When: 100, Kind: input.RawRel, Code: input.RelY, Value: -3},
		sync(100),
	})
	require.Len(t, out, 1)
	motion, ok := out[0].(input.MotionEvent)
	require.True(t, ok)
	assert.Equal(t, int32(input.ActionHoverMove), motion.Action)
	assert.Equal(t, float32(15), motion.Pointers[0].X)
	assert.Equal(t, float32(7), motion.Pointers[0].Y)
}

func TestCursorMapperNavigationModeScalesMotion(t *testing.T) {
	ctx := &Context{DeviceID: 1, Properties: fakeProperties{strings: map[string]string{"cursor.mode": "navigation"}}}
	m := NewCursorMapper(ctx)
	require.Equal(t, CursorModeNavigation, m.mode)

	out := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawRel, Code: input.RelX, Value: 6},
		sync(100),
	})
	require.Len(t, out, 1)
	motion := out[0].(input.MotionEvent)
	assert.Equal(t, int32(input.ActionMove), motion.Action)
	assert.InDelta(t, 1.0, motion.Pointers[0].X, 0.001)
}

func TestCursorMapperButtonDownUpEmitsMotion(t *testing.T) {
	ctx := &Context{DeviceID: 1}
	m := NewCursorMapper(ctx)

	downOut := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawKey, Code: input.BtnLeft, Value: 1},
		sync(100),
	})
	require.Len(t, downOut, 1)
	down := downOut[0].(input.MotionEvent)
	assert.Equal(t, int32(input.ActionDown), down.Action)
	assert.NotZero(t, down.ButtonState&input.ButtonPrimary)

	upOut := m.Process([]input.RawEvent{
		{When: 200, Kind: input.RawKey, Code: input.BtnLeft, Value: 0},
		sync(200),
	})
	require.Len(t, upOut, 1)
	up := upOut[0].(input.MotionEvent)
	assert.Equal(t, int32(input.ActionUp), up.Action)
}

func TestCursorMapperBackButtonSynthesizesKeyOnEdge(t *testing.T) {
	ctx := &Context{DeviceID: 1}
	m := NewCursorMapper(ctx)

	downOut := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawKey, Code: input.BtnSide, Value: 1},
		sync(100),
	})
	require.Len(t, downOut, 1)
	keyDown := downOut[0].(input.KeyEvent)
	assert.Equal(t, input.KeyDown, keyDown.Action)
	assert.Equal(t, int32(input.KeycodeBack), keyDown.KeyCode)

	// Holding it, with no motion and no mouse-button down, emits nothing more.
	heldOut := m.Process([]input.RawEvent{sync(150)})
	assert.Empty(t, heldOut)

	upOut := m.Process([]input.RawEvent{
		{When: 200, Kind: input.RawKey, Code: input.BtnSide, Value: 0},
		sync(200),
	})
	require.Len(t, upOut, 1)
	keyUp := upOut[0].(input.KeyEvent)
	assert.Equal(t, input.KeyUp, keyUp.Action)
	assert.Equal(t, int32(input.KeycodeBack), keyUp.KeyCode)
}

func TestCursorMapperWheelEmitsScrollEvent(t *testing.T) {
	ctx := &Context{DeviceID: 1}
	m := NewCursorMapper(ctx)

	out := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawRel, Code: input.RelWheel, Value: 1},
		sync(100),
	})
	require.Len(t, out, 1)
	scroll := out[0].(input.MotionEvent)
	assert.Equal(t, int32(input.ActionScroll), scroll.Action)
}

func TestCursorMapperResetCancelsActiveButton(t *testing.T) {
	ctx := &Context{DeviceID: 1}
	m := NewCursorMapper(ctx)

	m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawKey, Code: input.BtnLeft, Value: 1},
		sync(100),
	})

	out := m.Reset(500)
	require.Len(t, out, 1)
	cancel := out[0].(input.MotionEvent)
	assert.Equal(t, int32(input.ActionCancel), cancel.Action)
	assert.NotZero(t, cancel.Flags&input.FlagCanceled)
}

type fakePointerPolicy struct {
	controller input.PointerController
}

func (p fakePointerPolicy) GetDisplayInfo(deviceID int32) (input.DisplayInfo, bool) {
	return input.DisplayInfo{}, false
}

func (p fakePointerPolicy) ObtainPointerController(deviceID int32) input.PointerController {
	return p.controller
}
