package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVelocityTrackerNeedsAtLeastTwoSamples(t *testing.T) {
	vt := NewVelocityTracker()
	_, _, ok := vt.Velocity(1)
	assert.False(t, ok)

	vt.AddMovement(1, 0, 0, 0)
	_, _, ok = vt.Velocity(1)
	assert.False(t, ok)
}

func TestVelocityTrackerLinearMotion(t *testing.T) {
	vt := NewVelocityTracker()
	// Move 100 units/sec in x: x = 100 * t.
	vt.AddMovement(1, 0, 0, 0)
	vt.AddMovement(1, int64(50*1e6), 5, 0)
	vt.AddMovement(1, int64(100*1e6), 10, 0)

	vx, vy, ok := vt.Velocity(1)
	assert.True(t, ok)
	assert.InDelta(t, 100, vx, 1)
	assert.InDelta(t, 0, vy, 1)
}

func TestVelocityTrackerDropsSamplesOutsideWindow(t *testing.T) {
	vt := NewVelocityTracker()
	vt.AddMovement(1, 0, 0, 0)
	// A sample far beyond the 200ms window should evict the first one,
	// leaving only a single sample again.
	vt.AddMovement(1, int64(500*1e6), 10, 10)
	_, _, ok := vt.Velocity(1)
	assert.False(t, ok)
}

func TestVelocityTrackerClear(t *testing.T) {
	vt := NewVelocityTracker()
	vt.AddMovement(1, 0, 0, 0)
	vt.AddMovement(1, int64(50*1e6), 5, 0)
	vt.Clear(1)
	_, _, ok := vt.Velocity(1)
	assert.False(t, ok)
}

func TestVelocityTrackerClearAll(t *testing.T) {
	vt := NewVelocityTracker()
	vt.AddMovement(1, 0, 0, 0)
	vt.AddMovement(1, int64(50*1e6), 5, 0)
	vt.AddMovement(2, 0, 0, 0)
	vt.AddMovement(2, int64(50*1e6), 0, 5)
	vt.ClearAll()
	_, _, ok := vt.Velocity(1)
	assert.False(t, ok)
	_, _, ok = vt.Velocity(2)
	assert.False(t, ok)
}

func TestVelocityTrackerSpeedCombinesAxes(t *testing.T) {
	vt := NewVelocityTracker()
	vt.AddMovement(1, 0, 0, 0)
	vt.AddMovement(1, int64(100*1e6), 3, 4)
	speed, ok := vt.Speed(1)
	assert.True(t, ok)
	assert.InDelta(t, 50, speed, 1)
}

func TestVelocityTrackerHistoryCappedAtWindowSize(t *testing.T) {
	vt := NewVelocityTracker()
	for i := 0; i < velocityHistorySize+5; i++ {
		vt.AddMovement(1, int64(i)*int64(1e6), float32(i), 0)
	}
	assert.Equal(t, velocityHistorySize, len(vt.history[1]))
}
