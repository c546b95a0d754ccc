package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/input"
)

func TestSwitchMapperEmitsOnePerChange(t *testing.T) {
	ctx := &Context{DeviceID: 1}
	m := NewSwitchMapper(ctx)

	out := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawSw, Code: 0, Value: 1},
		{When: 100, Kind: input.RawSw, Code: 1, Value: 0},
		{When: 100, Kind: input.RawSync, Code: input.SyncReport},
	})
	require.Len(t, out, 2)

	ev0, ok := out[0].(input.SwitchEvent)
	require.True(t, ok)
	assert.Equal(t, int32(0), ev0.SwitchCode)
	assert.Equal(t, int32(1), ev0.SwitchValue)

	ev1 := out[1].(input.SwitchEvent)
	assert.Equal(t, int32(1), ev1.SwitchCode)
	assert.Equal(t, int32(0), ev1.SwitchValue)
}

func TestSwitchMapperIgnoresNonSwitchEvents(t *testing.T) {
	ctx := &Context{DeviceID: 1}
	m := NewSwitchMapper(ctx)

	out := m.Process([]input.RawEvent{
		{When: 100, Kind: input.RawKey, Code: 30, Value: 1},
	})
	assert.Nil(t, out)
}

func TestSwitchMapperResetAndTimeoutAreNoops(t *testing.T) {
	ctx := &Context{DeviceID: 1}
	m := NewSwitchMapper(ctx)

	assert.Nil(t, m.Reset(0))
	assert.Nil(t, m.TimeoutExpired(0))
	assert.Nil(t, m.Configure(ConfigChange(0)))
}
