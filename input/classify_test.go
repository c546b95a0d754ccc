package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func keyBits(codes ...int) Bitmask {
	b := NewBitmask(KeyMax)
	for _, c := range codes {
		b.Set(c)
	}
	return b
}

func absBits(codes ...int) Bitmask {
	b := NewBitmask(AbsMax)
	for _, c := range codes {
		b.Set(c)
	}
	return b
}

func TestClassifyKeyboard(t *testing.T) {
	caps := Capabilities{Key: keyBits(KeyA, KeyQ), Bus: BusUSB}
	classes := ClassifyDevice(caps, nil)
	assert.True(t, classes.Has(ClassKeyboard))
	assert.True(t, classes.Has(ClassAlphaKey))
	assert.True(t, classes.Has(ClassExternal))
}

func TestClassifyCursor(t *testing.T) {
	caps := Capabilities{
		Key: keyBits(BtnMouse),
		Rel: func() Bitmask {
			b := NewBitmask(RelMax)
			b.Set(RelX)
			b.Set(RelY)
			return b
		}(),
	}
	classes := ClassifyDevice(caps, nil)
	assert.True(t, classes.Has(ClassCursor))
}

func TestClassifyTouchscreenSingleTouch(t *testing.T) {
	caps := Capabilities{
		Key: keyBits(BtnTouch),
		Abs: absBits(AbsX, AbsY),
	}
	classes := ClassifyDevice(caps, nil)
	assert.True(t, classes.Has(ClassTouch))
	assert.False(t, classes.Has(ClassTouchMT))
}

func TestClassifyMultiTouchScreenWithBtnTouch(t *testing.T) {
	caps := Capabilities{
		Key: keyBits(BtnTouch),
		Abs: absBits(AbsMtPositionX, AbsMtPositionY),
	}
	classes := ClassifyDevice(caps, nil)
	assert.True(t, classes.Has(ClassTouchMT))
}

func TestClassifyMultiTouchWithoutBtnTouchAndNoGamepadButtonsIsTouch(t *testing.T) {
	caps := Capabilities{
		Abs: absBits(AbsMtPositionX, AbsMtPositionY),
	}
	classes := ClassifyDevice(caps, nil)
	assert.True(t, classes.Has(ClassTouchMT))
}

func TestClassifyPhantomMultiTouchOnGamepadIsNotTouch(t *testing.T) {
	caps := Capabilities{
		Key: keyBits(BtnA),
		Abs: absBits(AbsMtPositionX, AbsMtPositionY),
	}
	classes := ClassifyDevice(caps, nil)
	assert.False(t, classes.Has(ClassTouchMT))
}

func TestClassifyJoystick(t *testing.T) {
	caps := Capabilities{
		Key: keyBits(BtnA, BtnB),
		Abs: absBits(0x00),
	}
	classes := ClassifyDevice(caps, nil)
	assert.True(t, classes.Has(ClassJoystick))
	assert.False(t, classes.Has(ClassTouch))
}

func TestClassifySwitch(t *testing.T) {
	caps := Capabilities{
		Sw: func() Bitmask {
			b := NewBitmask(SwMax)
			b.Set(0)
			return b
		}(),
	}
	classes := ClassifyDevice(caps, nil)
	assert.True(t, classes.Has(ClassSwitch))
}

func TestClassifyDPadWithNoLayoutUsesIdentityScancodes(t *testing.T) {
	caps := Capabilities{
		Key: keyBits(KeycodeDpadUp, KeycodeDpadDown, KeycodeDpadLeft, KeycodeDpadRight),
	}
	classes := ClassifyDevice(caps, nil)
	assert.True(t, classes.Has(ClassDPad))
}

func TestClassifyDPadIncompleteIsNotDPad(t *testing.T) {
	caps := Capabilities{
		Key: keyBits(KeycodeDpadUp, KeycodeDpadDown),
	}
	classes := ClassifyDevice(caps, nil)
	assert.False(t, classes.Has(ClassDPad))
}

type fakeLayout struct {
	keys map[int]int32
}

func (f fakeLayout) MapKey(scanCode int) (int32, uint32, bool) {
	kc, ok := f.keys[scanCode]
	return kc, 0, ok
}

func (f fakeLayout) MapAxis(absCode int) (AxisMapping, bool) {
	return AxisMapping{}, false
}

func TestClassifyDPadWithLayoutResolvesThroughIt(t *testing.T) {
	layout := fakeLayout{keys: map[int]int32{
		KeycodeDpadUp:    int32(KeycodeDpadUp),
		KeycodeDpadDown:  int32(KeycodeDpadDown),
		KeycodeDpadLeft:  int32(KeycodeDpadLeft),
		KeycodeDpadRight: int32(KeycodeDpadRight),
	}}
	caps := Capabilities{}
	classes := ClassifyDevice(caps, layout)
	assert.True(t, classes.Has(ClassDPad))
}

func TestClassifyExternalRespectsInternalOverride(t *testing.T) {
	caps := Capabilities{Key: keyBits(KeyQ), Bus: BusUSB, Internal: true}
	classes := ClassifyDevice(caps, nil)
	assert.False(t, classes.Has(ClassExternal))
}

func TestSwitchOwnersClaimAndRelease(t *testing.T) {
	owners := NewSwitchOwners()
	assert.True(t, owners.Claim(5, 1))
	assert.True(t, owners.Claim(5, 1))
	assert.False(t, owners.Claim(5, 2))

	owners.Release(1)
	assert.True(t, owners.Claim(5, 2))
}
