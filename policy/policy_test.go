package policy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawinput/inputhub/input"
)

func TestStaticReturnsConfiguredDisplay(t *testing.T) {
	p := NewStatic(1080, 1920, input.Rotation90)

	info, ok := p.GetDisplayInfo(0)
	assert.True(t, ok)
	assert.Equal(t, int32(1080), info.Width)
	assert.Equal(t, int32(1920), info.Height)
	assert.Equal(t, input.Rotation90, info.Orientation)
}

func TestStaticSameDisplayForEveryDevice(t *testing.T) {
	p := NewStatic(800, 600, input.Rotation0)

	a, _ := p.GetDisplayInfo(1)
	b, _ := p.GetDisplayInfo(2)
	assert.Equal(t, a, b)
}

func TestStaticObtainPointerControllerIsNil(t *testing.T) {
	p := NewStatic(800, 600, input.Rotation0)
	assert.Nil(t, p.ObtainPointerController(0))
}

func TestStaticSetRotationUpdatesOrientation(t *testing.T) {
	p := NewStatic(800, 600, input.Rotation0)
	p.SetRotation(input.Rotation180)

	info, _ := p.GetDisplayInfo(0)
	assert.Equal(t, input.Rotation180, info.Orientation)
}

func TestStaticSetDisplayReplacesGeometry(t *testing.T) {
	p := NewStatic(800, 600, input.Rotation0)
	p.SetDisplay(1024, 768, input.Rotation270)

	info, _ := p.GetDisplayInfo(0)
	assert.Equal(t, int32(1024), info.Width)
	assert.Equal(t, int32(768), info.Height)
	assert.Equal(t, input.Rotation270, info.Orientation)
}

func TestStaticConcurrentAccessDoesNotRace(t *testing.T) {
	p := NewStatic(800, 600, input.Rotation0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.SetRotation(input.Rotation90)
		}()
		go func() {
			defer wg.Done()
			p.GetDisplayInfo(0)
		}()
	}
	wg.Wait()
}
