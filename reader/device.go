// Package reader implements the device registry and the single-threaded
// reader loop that drives it (§4.2, §5): split a poll batch into per-device
// runs, dispatch each run to its mapper stack, and flush the resulting
// cooked events to a listener in FIFO order.
package reader

import (
	"github.com/rawinput/inputhub/eventhub"
	"github.com/rawinput/inputhub/input"
	"github.com/rawinput/inputhub/mapper"
)

// Device is one registered input device: its classification, its ordered
// mapper stack, and the believed-down state the registry's state queries
// read back. No device ever holds a pointer to the Registry or the Hub —
// only to the mapper.Context it was built from (§9 "cyclic/back
// references").
type Device struct {
	ID         int32
	Identifier input.Identifier
	Classes    input.DeviceClasses

	mappers []mapper.Mapper

	keyCodeDown  map[int32]bool
	scanCodeDown map[int32]bool
	switchState  map[int32]int32
}

// buildMapperStack constructs a device's mapper stack in the order §4.2
// specifies: Switch, Keyboard, Cursor, MultiTouch-or-SingleTouch, Joystick.
func buildMapperStack(ctx *mapper.Context) []mapper.Mapper {
	var stack []mapper.Mapper
	c := ctx.Classes
	if c.Has(input.ClassSwitch) {
		stack = append(stack, mapper.NewSwitchMapper(ctx))
	}
	if c.Has(input.ClassKeyboard) || c.Has(input.ClassAlphaKey) || c.Has(input.ClassDPad) || c.Has(input.ClassGamepad) {
		stack = append(stack, mapper.NewKeyboardMapper(ctx))
	}
	if c.Has(input.ClassCursor) {
		stack = append(stack, mapper.NewCursorMapper(ctx))
	}
	switch {
	case c.Has(input.ClassTouchMT):
		stack = append(stack, mapper.NewMultiTouchMapper(ctx))
	case c.Has(input.ClassTouch):
		stack = append(stack, mapper.NewSingleTouchMapper(ctx))
	}
	if c.Has(input.ClassJoystick) {
		stack = append(stack, mapper.NewJoystickMapper(ctx))
	}
	return stack
}

func newDevice(ctx *mapper.Context) *Device {
	return &Device{
		ID:           ctx.DeviceID,
		Identifier:   ctx.Identifier,
		Classes:      ctx.Classes,
		mappers:      buildMapperStack(ctx),
		keyCodeDown:  make(map[int32]bool),
		scanCodeDown: make(map[int32]bool),
		switchState:  make(map[int32]int32),
	}
}

// Process dispatches one maximal same-device run to every mapper in the
// stack, handling any SYN_DROPPED overrun within the run by resetting every
// mapper at that point (§4.1, §7): the event hub has already suppressed
// everything between the SYN_DROPPED and its closing SYN_REPORT, so the run
// reaching here needs only the reset, not its own filtering.
func (d *Device) Process(events []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	start := 0
	for i, e := range events {
		if e.Kind == input.RawSync && e.Code == input.SyncDropped {
			if i > start {
				out = append(out, d.dispatch(events[start:i])...)
			}
			out = append(out, d.Reset(e.When)...)
			start = i + 1
		}
	}
	if start < len(events) {
		out = append(out, d.dispatch(events[start:])...)
	}
	d.trackState(out)
	return out
}

func (d *Device) dispatch(run []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	for _, m := range d.mappers {
		out = append(out, m.Process(run)...)
	}
	return out
}

// Reset asks every mapper to synthesize up events for anything it believes
// held down, then clears the registry's own believed-down state — switch
// state is left alone, since a switch reports physical state rather than
// something a mapper "holds down".
func (d *Device) Reset(when int64) []input.CookedEvent {
	var out []input.CookedEvent
	for _, m := range d.mappers {
		out = append(out, m.Reset(when)...)
	}
	for k := range d.keyCodeDown {
		delete(d.keyCodeDown, k)
	}
	for k := range d.scanCodeDown {
		delete(d.scanCodeDown, k)
	}
	return out
}

func (d *Device) TimeoutExpired(when int64) []input.CookedEvent {
	var out []input.CookedEvent
	for _, m := range d.mappers {
		out = append(out, m.TimeoutExpired(when)...)
	}
	d.trackState(out)
	return out
}

func (d *Device) Configure(change mapper.ConfigChange) []input.CookedEvent {
	var out []input.CookedEvent
	for _, m := range d.mappers {
		out = append(out, m.Configure(change)...)
	}
	d.trackState(out)
	return out
}

// trackState folds freshly produced cooked events into the believed-down
// maps the state-query methods answer from, mirroring how the original
// reader keeps its own key/switch down-state independent of the listener.
func (d *Device) trackState(events []input.CookedEvent) {
	for _, ce := range events {
		switch e := ce.(type) {
		case input.KeyEvent:
			down := e.Action == input.KeyDown
			d.keyCodeDown[e.KeyCode] = down
			d.scanCodeDown[e.ScanCode] = down
		case input.SwitchEvent:
			d.switchState[e.SwitchCode] = e.SwitchValue
		}
	}
}

func (d *Device) keyCodeState(keyCode int32) bool  { return d.keyCodeDown[keyCode] }
func (d *Device) scanCodeState(scanCode int32) bool { return d.scanCodeDown[scanCode] }
func (d *Device) switchCodeState(switchCode int32) int32 {
	return d.switchState[switchCode]
}

// buildContext turns a hub device snapshot into the read-mostly handle
// every mapper call receives.
func buildContext(info eventhub.DeviceInfo, absInfo map[int]input.RawAbsoluteAxisInfo, led mapper.LEDSetter, policy input.Policy) *mapper.Context {
	return &mapper.Context{
		DeviceID:    info.ID,
		Identifier:  info.Identifier,
		Classes:     info.Classes,
		Caps:        info.Caps,
		AbsInfo:     absInfo,
		KeyLayout:   info.Layout,
		Properties:  info.Props,
		Policy:      policy,
		VirtualKeys: info.VirtualKeys,
		LED:         led,
	}
}
