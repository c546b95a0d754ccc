// Package input holds the core data model shared by the event hub, the
// device registry, and the per-capability mappers: raw kernel-shaped events,
// cooked notifications, and the collaborator interfaces the core consumes
// but never implements.
package input

import "fmt"

// MaxPointers is the largest number of simultaneously tracked pointers
// (fingers) a single frame can carry. It bounds the bitsets below to a
// single uint32 each.
const MaxPointers = 32

// RawEventKind tags a RawEvent's meaning. DeviceAdded, DeviceRemoved and
// ScanComplete are synthesized by the event hub; Key/Abs/Rel/Sw/Sync carry
// a kernel-reported (code, value) pair.
type RawEventKind int

const (
	RawKey RawEventKind = iota
	RawAbs
	RawRel
	RawSw
	RawSync
	RawDeviceAdded
	RawDeviceRemoved
	RawScanComplete
)

func (k RawEventKind) String() string {
	switch k {
	case RawKey:
		return "Key"
	case RawAbs:
		return "Abs"
	case RawRel:
		return "Rel"
	case RawSw:
		return "Sw"
	case RawSync:
		return "Sync"
	case RawDeviceAdded:
		return "DeviceAdded"
	case RawDeviceRemoved:
		return "DeviceRemoved"
	case RawScanComplete:
		return "ScanComplete"
	default:
		return "Unknown"
	}
}

// RawEvent is one kernel-reported (type, code, value, timestamp) tuple, or
// one hub-synthesized lifecycle notification. DeviceID 0 is reserved to mean
// "built-in keyboard". Raw events for a given device are totally ordered.
type RawEvent struct {
	When     int64 // monotonic nanoseconds
	DeviceID int32
	Kind     RawEventKind
	Code     int32
	Value    int32
	Flags    uint32
}

// Sync report sub-codes carried in RawSync events (evdev SYN_* values).
const (
	SyncReport   int32 = 0
	SyncConfig   int32 = 1
	SyncMTReport int32 = 2
	SyncDropped  int32 = 3
)

// DeviceClasses is a bitmask over the capability classes a device was
// assigned during classification (§4.1).
type DeviceClasses uint32

const (
	ClassKeyboard DeviceClasses = 1 << iota
	ClassAlphaKey
	ClassTouch
	ClassCursor
	ClassTouchMT
	ClassDPad
	ClassGamepad
	ClassSwitch
	ClassJoystick
	ClassExternal
)

func (c DeviceClasses) Has(bit DeviceClasses) bool { return c&bit != 0 }

func (c DeviceClasses) String() string {
	names := []struct {
		bit  DeviceClasses
		name string
	}{
		{ClassKeyboard, "Keyboard"}, {ClassAlphaKey, "AlphaKey"},
		{ClassTouch, "Touch"}, {ClassCursor, "Cursor"}, {ClassTouchMT, "TouchMT"},
		{ClassDPad, "DPad"}, {ClassGamepad, "Gamepad"}, {ClassSwitch, "Switch"},
		{ClassJoystick, "Joystick"}, {ClassExternal, "External"},
	}
	s := ""
	for _, n := range names {
		if c.Has(n.bit) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// BusType mirrors the kernel's BUS_* identifiers relevant to classification
// and configuration-file descriptor naming.
type BusType uint16

const (
	BusUSB       BusType = 0x03
	BusBluetooth BusType = 0x05
	BusVirtual   BusType = 0x06
	BusHost      BusType = 0x19
)

// Identifier is the immutable hardware identity of a device, as reported by
// EVIOCGID/EVIOCGNAME/EVIOCGPHYS/EVIOCGUNIQ.
type Identifier struct {
	Name     string
	Bus      BusType
	Vendor   uint16
	Product  uint16
	Version  uint16
	Location string
	UniqueID string
}

// ConfigDescriptor builds the "<bus>:<vendor>:<product>[:version][:name]"
// key used to locate a device's configuration-property file (§6). Pure
// string construction; looking the file up and parsing it is a collaborator
// concern (PropertyMap).
func (id Identifier) ConfigDescriptor() string {
	s := fmt.Sprintf("%04x:%04x:%04x", id.Bus, id.Vendor, id.Product)
	if id.Version != 0 {
		s += fmt.Sprintf(":%04x", id.Version)
	}
	if id.Name != "" {
		s += ":" + id.Name
	}
	return s
}

// RawAbsoluteAxisInfo mirrors struct input_absinfo. When Valid is false the
// other fields are zero and callers must treat the axis as absent.
type RawAbsoluteAxisInfo struct {
	Valid      bool
	Min        int32
	Max        int32
	Flat       int32
	Fuzz       int32
	Resolution int32
}

// ToolType enumerates the MT_TOOL_* / BTN_TOOL_* pointer tool kinds.
type ToolType int32

const (
	ToolFinger ToolType = iota
	ToolStylus
	ToolMouse
	ToolEraser
	ToolPalm
	ToolUnknown
)

// RawPointerAxes is one pointer's raw integer axis set as reported by the
// kernel, before any calibration or coordinate transform.
type RawPointerAxes struct {
	ID          uint32 // framework-assigned pointer id, 0..31
	X, Y        int32
	Pressure    int32
	TouchMajor  int32
	TouchMinor  int32
	ToolMajor   int32
	ToolMinor   int32
	Orientation int32
	Distance    int32
	TiltX       int32
	TiltY       int32
	TrackingID  int32 // kernel MT tracking id, -1 if none
	ToolType    ToolType
	IsHovering  bool
}

// PointerBitset is a bitset over the 0..31 pointer-id space.
type PointerBitset uint32

func (b PointerBitset) Has(id uint32) bool   { return b&(1<<id) != 0 }
func (b PointerBitset) Count() int           { return popcount32(uint32(b)) }
func (b *PointerBitset) Set(id uint32)       { *b |= 1 << id }
func (b *PointerBitset) Clear(id uint32)     { *b &^= 1 << id }
func (b PointerBitset) IsEmpty() bool        { return b == 0 }
func (b PointerBitset) And(o PointerBitset) PointerBitset  { return b & o }
func (b PointerBitset) AndNot(o PointerBitset) PointerBitset { return b &^ o }
func (b PointerBitset) Or(o PointerBitset) PointerBitset   { return b | o }

// FirstMarkedID returns the lowest id set in the bitset and true, or
// (0, false) if empty.
func (b PointerBitset) FirstMarkedID() (uint32, bool) {
	if b == 0 {
		return 0, false
	}
	for i := uint32(0); i < MaxPointers; i++ {
		if b.Has(i) {
			return i, true
		}
	}
	return 0, false
}

// IDs returns the set ids in ascending order.
func (b PointerBitset) IDs() []uint32 {
	out := make([]uint32, 0, b.Count())
	for i := uint32(0); i < MaxPointers; i++ {
		if b.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

func popcount32(v uint32) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}

// FirstUnusedID returns the lowest pointer id not set in `used`, or
// MaxPointers-1 when every id is set.
func FirstUnusedID(used PointerBitset) uint32 {
	for i := uint32(0); i < MaxPointers; i++ {
		if !used.Has(i) {
			return i
		}
	}
	return MaxPointers - 1
}

// RawPointerData is a frame of raw pointer axes, indexed by slot. Invariant:
// |Touching| + |Hovering| == PointerCount; ids are unique; IDToIndex[id] <
// PointerCount whenever id is set in either bitset.
type RawPointerData struct {
	PointerCount int
	Pointers     [MaxPointers]RawPointerAxes
	Touching     PointerBitset
	Hovering     PointerBitset
	IDToIndex    [MaxPointers]int
}

// Clear resets the frame to empty.
func (d *RawPointerData) Clear() {
	*d = RawPointerData{}
	for i := range d.IDToIndex {
		d.IDToIndex[i] = -1
	}
}

// IndexOf returns the slot index for pointer id, or -1 if not present.
func (d *RawPointerData) IndexOf(id uint32) int {
	if id >= MaxPointers {
		return -1
	}
	return d.IDToIndex[id]
}

// MarkID records the mapping from id to slot index and sets the touching
// or hovering bit as directed.
func (d *RawPointerData) MarkID(id uint32, index int, hovering bool) {
	d.IDToIndex[id] = index
	if hovering {
		d.Hovering.Set(id)
	} else {
		d.Touching.Set(id)
	}
}

// IDBits returns the union of touching and hovering pointer ids.
func (d *RawPointerData) IDBits() PointerBitset {
	return d.Touching.Or(d.Hovering)
}

// Semantic motion-axis identifiers used by CookedPointerData, mirroring the
// AMOTION_EVENT_AXIS_* constants of the system this core feeds.
type MotionAxis int

const (
	AxisX MotionAxis = iota
	AxisY
	AxisPressure
	AxisSize
	AxisTouchMajor
	AxisTouchMinor
	AxisToolMajor
	AxisToolMinor
	AxisOrientation
	AxisDistance
	AxisTiltX
	AxisTiltY
	axisCount
)

// PointerCoords is one pointer's cooked, display-space axis values.
type PointerCoords struct {
	values [axisCount]float32
	bits   uint32 // which axes have been explicitly set
}

func (c *PointerCoords) Set(axis MotionAxis, v float32) {
	c.values[axis] = v
	c.bits |= 1 << axis
}

func (c *PointerCoords) Get(axis MotionAxis) float32 { return c.values[axis] }

func (c *PointerCoords) IsSet(axis MotionAxis) bool { return c.bits&(1<<axis) != 0 }

// PointerProperties is a pointer's id and tool type, stable across the
// lifetime of the pointer.
type PointerProperties struct {
	ID       uint32
	ToolType ToolType
}

// CookedPointerData is a frame of display-space pointer data, ready for
// publication as a Motion cooked event.
type CookedPointerData struct {
	PointerCount int
	Coords       [MaxPointers]PointerCoords
	Properties   [MaxPointers]PointerProperties
	Touching     PointerBitset
	Hovering     PointerBitset
	IDToIndex    [MaxPointers]int
}

func (d *CookedPointerData) Clear() {
	*d = CookedPointerData{}
	for i := range d.IDToIndex {
		d.IDToIndex[i] = -1
	}
}

func (d *CookedPointerData) IndexOf(id uint32) int {
	if id >= MaxPointers {
		return -1
	}
	return d.IDToIndex[id]
}

func (d *CookedPointerData) MarkID(id uint32, index int, hovering bool) {
	d.IDToIndex[id] = index
	if hovering {
		d.Hovering.Set(id)
	} else {
		d.Touching.Set(id)
	}
}

func (d *CookedPointerData) IDBits() PointerBitset { return d.Touching.Or(d.Hovering) }

// VirtualKey is one on-bezel capacitive key hit-box, in raw device
// coordinates, computed once surface geometry stabilizes (§4.5.1).
type VirtualKey struct {
	ScanCode  int32
	KeyCode   int32
	Flags     uint32
	HitLeft   int32
	HitRight  int32
	HitTop    int32
	HitBottom int32
}

// Contains reports whether the raw-space point (x, y) falls inside the
// key's hit-box.
func (v VirtualKey) Contains(x, y int32) bool {
	return x >= v.HitLeft && x <= v.HitRight && y >= v.HitTop && y <= v.HitBottom
}
