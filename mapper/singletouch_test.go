package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/input"
)

func newSingleTouchContext() *Context {
	return &Context{
		DeviceID: 1,
		Classes:  input.ClassTouch,
		AbsInfo: map[int]input.RawAbsoluteAxisInfo{
			input.AbsX: {Valid: true, Min: 0, Max: 999},
			input.AbsY: {Valid: true, Min: 0, Max: 1999},
		},
	}
}

func syncAt(when int64) input.RawEvent {
	return input.RawEvent{When: when, Kind: input.RawSync, Code: input.SyncReport}
}

func TestSingleTouchDownMoveUp(t *testing.T) {
	ctx := newSingleTouchContext()
	m := NewSingleTouchMapper(ctx)

	downOut := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawKey, Code: input.BtnTouch, Value: 1},
		{When: 100, Kind: input.RawAbs, Code: input.AbsX, Value: 500},
		{When: 100, Kind: input.RawAbs, Code: input.AbsY, Value: 1000},
		syncAt(100),
	})
	require.Len(t, downOut, 1)
	down, ok := downOut[0].(input.MotionEvent)
	require.True(t, ok)
	assert.Equal(t, int32(input.ActionDown), down.Action)
	require.Len(t, down.Pointers, 1)
	assert.Equal(t, float32(500), down.Pointers[0].X)

	moveOut := m.Process([]input.RawEvent{
		{When: 150, Kind: input.RawAbs, Code: input.AbsX, Value: 510},
		syncAt(150),
	})
	require.Len(t, moveOut, 1)
	move := moveOut[0].(input.MotionEvent)
	assert.Equal(t, int32(input.ActionMove), move.Action)

	upOut := m.Process([]input.RawEvent{
		{When: 200, Kind: input.RawKey, Code: input.BtnTouch, Value: 0},
		syncAt(200),
	})
	require.Len(t, upOut, 1)
	up := upOut[0].(input.MotionEvent)
	assert.Equal(t, int32(input.ActionUp), up.Action)
}

func TestSingleTouchResetCancelsActiveStroke(t *testing.T) {
	ctx := newSingleTouchContext()
	m := NewSingleTouchMapper(ctx)

	m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawKey, Code: input.BtnTouch, Value: 1},
		{When: 100, Kind: input.RawAbs, Code: input.AbsX, Value: 500},
		{When: 100, Kind: input.RawAbs, Code: input.AbsY, Value: 1000},
		syncAt(100),
	})

	out := m.Reset(500)
	require.Len(t, out, 1)
	cancel := out[0].(input.MotionEvent)
	assert.Equal(t, int32(input.ActionCancel), cancel.Action)
}

func TestSingleTouchNoMotionWithoutContact(t *testing.T) {
	ctx := newSingleTouchContext()
	m := NewSingleTouchMapper(ctx)

	out := m.Process([]input.RawEvent{syncAt(100)})
	assert.Nil(t, out)
}
