// Package mapper implements the per-capability input mappers that turn a
// device's raw event runs into cooked notifications: switch, keyboard,
// cursor, joystick, and the touch mapper with its pointer-gesture detector.
// Grounded on the tagged-dispatch redesign described in the design notes
// this module follows instead of the deep virtual-dispatch stack the
// original reader used — one Mapper implementation per capability, held in
// a per-device slice rather than a polymorphic base class.
package mapper

import "github.com/rawinput/inputhub/input"

// LEDSetter issues an LED state change to the underlying device node.
type LEDSetter interface {
	SetLED(code int, on bool) error
}

// Context is the read-mostly device handle passed to every Mapper call: the
// device's identity and capabilities, its collaborators, and the LED
// surface. It holds no owning pointer back to the Device record — see the
// "cyclic/back references" design note — so a mapper can never reach past
// what it's explicitly given.
type Context struct {
	DeviceID    int32
	Identifier  input.Identifier
	Classes     input.DeviceClasses
	Caps        input.Capabilities
	AbsInfo     map[int]input.RawAbsoluteAxisInfo
	KeyLayout   input.KeyLayout
	Properties  input.PropertyMap
	Policy      input.Policy
	VirtualKeys []input.VirtualKey
	LED         LEDSetter
}

// Abs looks up one axis's info, returning the zero-valid value when the
// device never reported that axis.
func (c *Context) Abs(code int) input.RawAbsoluteAxisInfo {
	if c.AbsInfo == nil {
		return input.RawAbsoluteAxisInfo{}
	}
	return c.AbsInfo[code]
}

// ConfigChange is a bitmask of what a configuration refresh changed,
// mirroring the policy-change bits the reader loop accumulates in step 1 of
// loop_once (§4.2).
type ConfigChange uint32

const (
	ConfigChangeDisplayInfo ConfigChange = 1 << iota
	ConfigChangeKeyboardLayout
	ConfigChangePointerSpeed
)

// Mapper is implemented by every per-capability mapper. Process consumes one
// maximal run of same-device raw events (terminated by the next synthetic
// event or end of batch) and returns the cooked events it produces, in
// order. Reset and TimeoutExpired mirror the reader loop's calls on buffer
// overrun and on poll timeout respectively (§4.1, §4.2).
type Mapper interface {
	Process(events []input.RawEvent) []input.CookedEvent
	Reset(when int64) []input.CookedEvent
	TimeoutExpired(when int64) []input.CookedEvent
	Configure(change ConfigChange) []input.CookedEvent
}
