package input

// The types in this file are pure interfaces the core consumes but never
// implements: loading key layouts, reading per-device configuration
// properties, and obtaining display geometry and a pointer presentation are
// all policy decisions that live above this package (§1, §4, §6). Reference
// file-backed implementations live in package collab.

// AxisMapping is the result of resolving an ABS scancode through a key
// layout's axis table. HighAxis is non-zero only for a split axis (one
// physical ABS code reported as two logical axes around SplitValue, e.g. a
// combined throttle/brake pedal).
type AxisMapping struct {
	Axis     MotionAxis
	HighAxis MotionAxis
	HasHigh  bool
	SplitValue int32
	Flat     int32
	Fuzz     int32
}

// KeyLayout resolves raw scancodes to framework keycodes and resolves ABS
// scancodes to semantic axes. Grounded on the .kl file format documented in
// §6 External Interfaces; a device with no layout loaded yet reports ok=false
// for every lookup.
type KeyLayout interface {
	MapKey(scanCode int) (keyCode int32, flags uint32, ok bool)
	MapAxis(absCode int) (mapping AxisMapping, ok bool)
}

// PropertyMap is a typed view over one device's idc configuration file
// (§6): key.characterMap, device.internal, touch.size.calibration, and the
// rest of the property namespace the mappers consult while building their
// per-device configuration.
type PropertyMap interface {
	GetBool(key string) (value bool, ok bool)
	GetInt(key string) (value int, ok bool)
	GetFloat(key string) (value float64, ok bool)
	GetString(key string) (value string, ok bool)
}

// Rotation is a display's current rotation relative to its natural
// orientation, in quarter turns clockwise.
type Rotation int

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// DisplayInfo is the subset of display geometry the touch mapper's
// coordinate pipeline needs (§4.5.2): the panel's physical size for scaling,
// and current rotation for axis swap/negation.
type DisplayInfo struct {
	Width       int32
	Height      int32
	Orientation Rotation
}

// PointerController presents the effect of cursor and multi-touch spot
// events to whatever consumes them downstream; consumed as a pure interface
// by the cursor mapper and by the gesture detector's spot-mode presentation.
type PointerController interface {
	SetPosition(x, y float32)
	GetPosition() (x, y float32)
	Move(dx, dy float32)
	SetButtonState(buttons uint32)
	SetSpots(coords []PointerCoords, ids PointerBitset)
	ClearSpots()
	Fade()
	Unfade()
}

// Policy supplies display geometry and obtains per-device pointer
// controllers; consumed as a pure interface (§1, §4.5.1).
type Policy interface {
	GetDisplayInfo(deviceID int32) (DisplayInfo, bool)
	ObtainPointerController(deviceID int32) PointerController
}
