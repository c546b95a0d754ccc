package input

// KeyAction distinguishes a key down from a key up.
type KeyAction int

const (
	KeyDown KeyAction = iota
	KeyUp
)

// Key/motion flags (subset of the framework's AKEY_EVENT_FLAG_*/
// AMOTION_EVENT_FLAG_* relevant to this core).
const (
	FlagCanceled      uint32 = 1 << 0
	FlagVirtualHardKey uint32 = 1 << 1
)

// Policy flags accompany every cooked event and are unioned, never
// overwritten — see §9 Design Notes (c): "union of flags".
const (
	PolicyFlagWake       uint32 = 1 << 0
	PolicyFlagVirtual    uint32 = 1 << 1
	PolicyFlagFromSystem uint32 = 1 << 2
)

// Meta-state bits (shift/ctrl/alt/meta + the three toggle locks + function
// + sym), combined via bitwise OR by the keyboard mapper's meta-state
// machine (§4.3).
const (
	MetaShiftLeft uint32 = 1 << iota
	MetaShiftRight
	MetaCtrlLeft
	MetaCtrlRight
	MetaAltLeft
	MetaAltRight
	MetaMetaLeft
	MetaMetaRight
	MetaCapsLockOn
	MetaNumLockOn
	MetaScrollLockOn
	MetaFunctionOn
	MetaSymOn
)

const (
	MetaShiftOn = MetaShiftLeft | MetaShiftRight
	MetaCtrlOn  = MetaCtrlLeft | MetaCtrlRight
	MetaAltOn   = MetaAltLeft | MetaAltRight
	MetaMetaOn  = MetaMetaLeft | MetaMetaRight
)

// Button state bits, decoded by the cursor and touch mappers.
const (
	ButtonPrimary uint32 = 1 << iota
	ButtonSecondary
	ButtonTertiary
	ButtonBack
	ButtonForward
)

// MotionAction enumerates the cooked motion action kinds. PointerDown and
// PointerUp carry the affected pointer's index packed into the action word
// by EncodePointerAction; when exactly one pointer is involved the mapper
// transmutes these to plain Down/Up (§4.5.6).
type MotionAction int32

const (
	ActionDown MotionAction = iota
	ActionUp
	ActionMove
	ActionCancel
	ActionPointerDown
	ActionPointerUp
	ActionHoverMove
	ActionHoverEnter
	ActionHoverExit
	ActionScroll
	ActionButtonPress
	ActionButtonRelease
)

const actionPointerIndexShift = 8

// EncodePointerAction packs a pointer index into a PointerDown/PointerUp
// action word.
func EncodePointerAction(action MotionAction, index int) int32 {
	return int32(action) | int32(index)<<actionPointerIndexShift
}

// DecodePointerAction splits an encoded action word back into its base
// action and pointer index.
func DecodePointerAction(encoded int32) (action MotionAction, index int) {
	return MotionAction(encoded & ((1 << actionPointerIndexShift) - 1)), int(encoded >> actionPointerIndexShift)
}

// PointerSample is one pointer's cooked axis values as carried on a
// MotionEvent.
type PointerSample struct {
	ID          uint32
	ToolType    ToolType
	X, Y        float32
	Pressure    float32
	Size        float32
	TouchMajor  float32
	TouchMinor  float32
	ToolMajor   float32
	ToolMinor   float32
	Orientation float32
	Distance    float32
	TiltX       float32
	TiltY       float32
}

// CookedEvent is implemented by every cooked notification kind; Dispatch
// forwards the event to the matching Listener method, avoiding any
// interface{}-typed switch in the reader loop's flush path.
type CookedEvent interface {
	Dispatch(l Listener)
}

type ConfigurationChangedEvent struct {
	When int64
}

func (e ConfigurationChangedEvent) Dispatch(l Listener) { l.NotifyConfigurationChanged(e) }

type DeviceResetEvent struct {
	When     int64
	DeviceID int32
}

func (e DeviceResetEvent) Dispatch(l Listener) { l.NotifyDeviceReset(e) }

type KeyEvent struct {
	When        int64
	DeviceID    int32
	Source      DeviceClasses
	PolicyFlags uint32
	Action      KeyAction
	Flags       uint32
	KeyCode     int32
	ScanCode    int32
	MetaState   uint32
	DownTime    int64
}

func (e KeyEvent) Dispatch(l Listener) { l.NotifyKey(e) }

type MotionEvent struct {
	When         int64
	DeviceID     int32
	Source       DeviceClasses
	PolicyFlags  uint32
	Action       int32 // base action, or PointerDown/Up with index packed in
	Flags        uint32
	MetaState    uint32
	ButtonState  uint32
	EdgeFlags    uint32
	Pointers     []PointerSample
	XPrecision   float32
	YPrecision   float32
	DownTime     int64
}

func (e MotionEvent) Dispatch(l Listener) { l.NotifyMotion(e) }

type SwitchEvent struct {
	When        int64
	PolicyFlags uint32
	SwitchCode  int32
	SwitchValue int32
}

func (e SwitchEvent) Dispatch(l Listener) { l.NotifySwitch(e) }

// Listener is the downstream sink for cooked notifications. Implementations
// must not block the reader thread for long; the reader flushes a full
// loop's queued events to Listener in FIFO order at loop end (§5).
type Listener interface {
	NotifyConfigurationChanged(ConfigurationChangedEvent)
	NotifyDeviceReset(DeviceResetEvent)
	NotifyKey(KeyEvent)
	NotifyMotion(MotionEvent)
	NotifySwitch(SwitchEvent)
}
