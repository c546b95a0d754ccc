package input

// Linux input-event-codes.h constants relevant to classification and
// mapping. Only the subset the core actually branches on is reproduced here;
// grounded on the kernel uapi mirrored by
// other_examples/96c4b000_andrieee44-mylib__linux-input-uapi.go.go.
const (
	EVKey = 0x01
	EVRel = 0x02
	EVAbs = 0x03
	EVSw  = 0x05
	EVLed = 0x11

	KeyMax = 0x2ff
	AbsMax = 0x3f
	RelMax = 0x0f
	SwMax  = 0x10
	LedMax = 0x0f

	KeyReserved = 0
	Key1        = 2
	KeyQ        = 16
	KeyA        = 30
	KeyZ        = 44

	KeyUp    = 103
	KeyLeft  = 105
	KeyRight = 106
	KeyDown  = 108

	KeyHome = 102
	KeyBack = 158

	KeyVolumeUp   = 115
	KeyVolumeDown = 114

	KeyLeftShift  = 42
	KeyRightShift = 54
	KeyLeftCtrl   = 29
	KeyRightCtrl  = 97
	KeyLeftAlt    = 56
	KeyRightAlt   = 100
	KeyLeftMeta   = 125
	KeyRightMeta  = 126
	KeyCapsLock   = 58
	KeyNumLock    = 69
	KeyScrollLock = 70
	KeyFn         = 464
	KeySym        = 465

	BtnMisc    = 0x100
	BtnMouse   = 0x110
	BtnLeft    = 0x110
	BtnRight   = 0x111
	BtnMiddle  = 0x112
	BtnSide    = 0x113
	BtnExtra   = 0x114
	BtnForward = 0x115
	BtnBack    = 0x116
	BtnTask    = 0x117

	BtnJoystick = 0x120
	BtnGamepad  = 0x130
	BtnA        = 0x130
	BtnB        = 0x131
	BtnThumbl   = 0x13d
	BtnThumbr   = 0x13e

	BtnDigi   = 0x140
	BtnTouch  = 0x14a
	BtnStylus = 0x14b
	BtnStylus2 = 0x14c
	BtnToolFinger = 0x145
	BtnToolDoubleTap = 0x14d
	BtnToolTripleTap = 0x14e
	BtnToolQuadTap   = 0x14f

	AbsX  = 0x00
	AbsY  = 0x01
	AbsZ  = 0x02

	AbsRX = 0x03
	AbsRY = 0x04
	AbsRZ = 0x05

	AbsHat0X = 0x10
	AbsHat0Y = 0x11

	AbsPressure   = 0x18
	AbsDistance   = 0x19
	AbsTiltX      = 0x1a
	AbsTiltY      = 0x1b
	AbsToolWidth  = 0x1c

	AbsMtSlot       = 0x2f
	AbsMtTouchMajor = 0x30
	AbsMtTouchMinor = 0x31
	AbsMtWidthMajor = 0x32
	AbsMtWidthMinor = 0x33
	AbsMtOrientation = 0x34
	AbsMtPositionX  = 0x35
	AbsMtPositionY  = 0x36
	AbsMtToolType   = 0x37
	AbsMtBlobID     = 0x38
	AbsMtTrackingID = 0x39
	AbsMtPressure   = 0x3a
	AbsMtDistance   = 0x3b
	AbsMtToolX      = 0x3c
	AbsMtToolY      = 0x3d

	RelX     = 0x00
	RelY     = 0x01
	RelWheel = 0x08
	RelHWheel = 0x06

	LedNuml    = 0x00
	LedCapsl   = 0x01
	LedScrolll = 0x02

	MtToolFinger = 0
	MtToolPen    = 1
	MtToolPalm   = 2

	InputPropDirect     = 0x01
	InputPropPointer    = 0x00
	InputPropButtonpad  = 0x02
	InputPropSemiMT     = 0x03
)

// gamepadKeys is the set used by the Gamepad classification rule: the
// fifteen BTN_GAMEPAD scancodes 0x130-0x13e. No other button range counts
// toward it.
var gamepadKeys = []int{
	BtnA, BtnB, 0x132, 0x133, 0x134, 0x135, 0x136, 0x137, // C, X, Y, Z, TL, TR
	0x138, 0x139, BtnThumbl, BtnThumbr, // TL2, TR2, ThumbL, ThumbR
	0x13a, 0x13b, 0x13c, // Select, Start, Mode
}

// Framework keycodes (not raw scancodes — resolved through a KeyLayout):
// the four DPAD_* codes the DPad rule checks for mappability, plus Home,
// Back, VolumeUp/Down and Forward.
const (
	KeycodeDpadUp    = 19
	KeycodeDpadDown  = 20
	KeycodeDpadLeft  = 21
	KeycodeDpadRight = 22
	KeycodeHome      = 3
	KeycodeBack      = 4
	KeycodeVolumeUp   = 24
	KeycodeVolumeDown = 25
	KeycodeForward    = 125
)
