package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawinput/inputhub/input"
)

func TestSplitRunsGroupsSameDeviceEvents(t *testing.T) {
	events := []input.RawEvent{
		{DeviceID: 1, Kind: input.RawKey, Code: 1, Value: 1},
		{DeviceID: 1, Kind: input.RawSync, Code: input.SyncReport},
		{DeviceID: 2, Kind: input.RawAbs, Code: 5, Value: 10},
	}
	runs, timeoutExpired := splitRuns(events)
	assert.False(t, timeoutExpired)
	if assert.Len(t, runs, 2) {
		assert.Equal(t, runDevice, runs[0].kind)
		assert.Equal(t, int32(1), runs[0].deviceID)
		assert.Len(t, runs[0].events, 2)

		assert.Equal(t, runDevice, runs[1].kind)
		assert.Equal(t, int32(2), runs[1].deviceID)
		assert.Len(t, runs[1].events, 1)
	}
}

func TestSplitRunsTreatsSyntheticsAsBoundaries(t *testing.T) {
	events := []input.RawEvent{
		{DeviceID: 1, Kind: input.RawKey, Code: 1, Value: 1},
		{Kind: input.RawDeviceAdded, DeviceID: 3},
		{DeviceID: 1, Kind: input.RawKey, Code: 1, Value: 0},
		{Kind: input.RawScanComplete},
	}
	runs, timeoutExpired := splitRuns(events)
	assert.False(t, timeoutExpired)
	if assert.Len(t, runs, 4) {
		assert.Equal(t, runDevice, runs[0].kind)
		assert.Equal(t, runDeviceAdded, runs[1].kind)
		assert.Equal(t, int32(3), runs[1].deviceID)
		assert.Equal(t, runDevice, runs[2].kind)
		assert.Equal(t, runScanComplete, runs[3].kind)
	}
}

func TestSplitRunsEmptyBatchIsTimeout(t *testing.T) {
	runs, timeoutExpired := splitRuns(nil)
	assert.Nil(t, runs)
	assert.True(t, timeoutExpired)
}
