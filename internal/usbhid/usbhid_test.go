package usbhid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawinput/inputhub/input"
)

func TestDecodeKeyboardPressAndRelease(t *testing.T) {
	s := &Source{deviceID: 3, protocol: ProtocolKeyboard}

	down := []byte{0, 0, 0x04, 0, 0, 0, 0, 0} // 'a' key down
	events := s.decodeKeyboard(down, 100)
	if assert.Len(t, events, 2) {
		assert.Equal(t, input.RawKey, events[0].Kind)
		assert.Equal(t, int32(input.KeyA), events[0].Code)
		assert.Equal(t, int32(1), events[0].Value)
		assert.Equal(t, input.RawSync, events[1].Kind)
	}

	up := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	events = s.decodeKeyboard(up, 200)
	if assert.Len(t, events, 2) {
		assert.Equal(t, int32(input.KeyA), events[0].Code)
		assert.Equal(t, int32(0), events[0].Value)
	}
}

func TestDecodeKeyboardModifier(t *testing.T) {
	s := &Source{deviceID: 3, protocol: ProtocolKeyboard}

	down := []byte{0x01, 0, 0, 0, 0, 0, 0, 0} // left ctrl
	events := s.decodeKeyboard(down, 100)
	if assert.Len(t, events, 2) {
		assert.Equal(t, int32(input.KeyLeftCtrl), events[0].Code)
		assert.Equal(t, int32(1), events[0].Value)
	}
}

func TestDecodeKeyboardIgnoresUnmappedUsage(t *testing.T) {
	s := &Source{deviceID: 3, protocol: ProtocolKeyboard}

	down := []byte{0, 0, 0xFF, 0, 0, 0, 0, 0} // unmapped usage
	events := s.decodeKeyboard(down, 100)
	assert.Nil(t, events)
}

func TestDecodeMouseMoveAndClick(t *testing.T) {
	s := &Source{deviceID: 5, protocol: ProtocolMouse}

	report := []byte{0x01, 5, 0xFB} // left button down, dx=5, dy=-5
	events := s.decodeMouse(report, 100)
	if assert.Len(t, events, 4) {
		assert.Equal(t, input.RawKey, events[0].Kind)
		assert.Equal(t, int32(input.BtnLeft), events[0].Code)
		assert.Equal(t, int32(1), events[0].Value)
		assert.Equal(t, input.RawRel, events[1].Kind)
		assert.Equal(t, int32(input.RelX), events[1].Code)
		assert.Equal(t, int32(5), events[1].Value)
		assert.Equal(t, int32(input.RelY), events[2].Code)
		assert.Equal(t, int32(-5), events[2].Value)
		assert.Equal(t, input.RawSync, events[3].Kind)
	}
}

func TestDecodeMouseNoChangeProducesNothing(t *testing.T) {
	s := &Source{deviceID: 5, protocol: ProtocolMouse}
	events := s.decodeMouse([]byte{0, 0, 0}, 100)
	assert.Nil(t, events)
}
