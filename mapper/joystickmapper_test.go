package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/input"
)

func absBitsFor(codes ...int) input.Bitmask {
	b := input.NewBitmask(input.AbsMax)
	for _, c := range codes {
		b.Set(c)
	}
	return b
}

func TestJoystickMapperNormalizesBipolarAxis(t *testing.T) {
	ctx := &Context{
		DeviceID: 1,
		Caps:     input.Capabilities{Abs: absBitsFor(input.AbsX)},
		AbsInfo: map[int]input.RawAbsoluteAxisInfo{
			input.AbsX: {Valid: true, Min: -128, Max: 127},
		},
	}
	m := NewJoystickMapper(ctx)

	out := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawAbs, Code: input.AbsX, Value: 127},
		{When: 100, Kind: input.RawSync, Code: input.SyncReport},
	})
	require.Len(t, out, 1)
	motion := out[0].(input.MotionEvent)
	assert.InDelta(t, 1.0, motion.Pointers[0].X, 0.05)
}

func TestJoystickMapperAppliesDeadZone(t *testing.T) {
	ctx := &Context{
		DeviceID: 1,
		Caps:     input.Capabilities{Abs: absBitsFor(input.AbsX)},
		AbsInfo: map[int]input.RawAbsoluteAxisInfo{
			input.AbsX: {Valid: true, Min: -100, Max: 100, Flat: 10},
		},
	}
	m := NewJoystickMapper(ctx)

	out := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawAbs, Code: input.AbsX, Value: 5},
		{When: 100, Kind: input.RawSync, Code: input.SyncReport},
	})
	require.Len(t, out, 1)
	motion := out[0].(input.MotionEvent)
	assert.Zero(t, motion.Pointers[0].X)
}

func TestJoystickMapperUnipolarAxisNormalizesToZeroOne(t *testing.T) {
	ctx := &Context{
		DeviceID: 1,
		Caps:     input.Capabilities{Abs: absBitsFor(input.AbsZ)},
		AbsInfo: map[int]input.RawAbsoluteAxisInfo{
			input.AbsZ: {Valid: true, Min: 0, Max: 255},
		},
	}
	m := NewJoystickMapper(ctx)

	out := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawAbs, Code: input.AbsZ, Value: 128},
		{When: 100, Kind: input.RawSync, Code: input.SyncReport},
	})
	require.Len(t, out, 1)
	motion := out[0].(input.MotionEvent)
	assert.InDelta(t, 0.5, motion.Pointers[0].Pressure, 0.02)
}

func TestJoystickMapperIgnoresTouchAxes(t *testing.T) {
	ctx := &Context{
		DeviceID: 1,
		Caps:     input.Capabilities{Abs: absBitsFor(input.AbsMtPositionX)},
		AbsInfo: map[int]input.RawAbsoluteAxisInfo{
			input.AbsMtPositionX: {Valid: true, Min: 0, Max: 1000},
		},
	}
	m := NewJoystickMapper(ctx)
	assert.Empty(t, m.axes)
}

func TestJoystickMapperResetClearsAccumulator(t *testing.T) {
	ctx := &Context{
		DeviceID: 1,
		Caps:     input.Capabilities{Abs: absBitsFor(input.AbsX)},
		AbsInfo: map[int]input.RawAbsoluteAxisInfo{
			input.AbsX: {Valid: true, Min: -100, Max: 100},
		},
	}
	m := NewJoystickMapper(ctx)
	m.Process([]input.RawEvent{{When: 100, Kind: input.RawAbs, Code: input.AbsX, Value: 50}})
	m.Reset(200)
	assert.Empty(t, m.accum)
}

func TestJoystickMapperNoSyncProducesNoEvent(t *testing.T) {
	ctx := &Context{
		DeviceID: 1,
		Caps:     input.Capabilities{Abs: absBitsFor(input.AbsX)},
		AbsInfo: map[int]input.RawAbsoluteAxisInfo{
			input.AbsX: {Valid: true, Min: -100, Max: 100},
		},
	}
	m := NewJoystickMapper(ctx)
	out := m.Process([]input.RawEvent{{When: 100, Kind: input.RawAbs, Code: input.AbsX, Value: 50}})
	assert.Nil(t, out)
}
