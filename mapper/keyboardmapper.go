package mapper

import (
	"github.com/rawinput/inputhub/collab"
	"github.com/rawinput/inputhub/input"
)

// LayoutFlagWake is set by a KeyLayout entry that marks a key as capable of
// waking the system on its own, independent of the external-device wake
// policy below. The two sources are unioned, never overwritten — design
// note (c). Shares its bit with collab's .kl WAKE token: same flag, same
// meaning, one definition.
const LayoutFlagWake uint32 = collab.LayoutFlagWake

// dpadRotationTable rotates {UP, RIGHT, DOWN, LEFT} by 90° increments. Index
// by current rotation (0..3), lookup by original dpad slot (0=Up, 1=Right,
// 2=Down, 3=Left) to get the rotated slot.
var dpadRotationTable = [4][4]int{
	{0, 1, 2, 3}, // Rotation0
	{1, 2, 3, 0}, // Rotation90
	{2, 3, 0, 1}, // Rotation180
	{3, 0, 1, 2}, // Rotation270
}

var dpadKeycodesBySlot = [4]int32{
	input.KeycodeDpadUp, input.KeycodeDpadRight, input.KeycodeDpadDown, input.KeycodeDpadLeft,
}

func dpadSlot(keyCode int32) (int, bool) {
	for i, kc := range dpadKeycodesBySlot {
		if kc == keyCode {
			return i, true
		}
	}
	return 0, false
}

type heldKey struct {
	scanCode int32
	keyCode  int32
	flags    uint32
	downTime int64
}

// KeyboardMapper implements §4.3: keycode resolution with orientation-aware
// DPad rotation applied only at key-down, a meta-state machine driving LED
// reflection, and wake-policy gating between internal and external
// keyboards.
type KeyboardMapper struct {
	ctx              *Context
	orientationAware bool

	held []heldKey // ordered by first-seen, like a held-key registry keyed by scancode

	metaState uint32
	capsLock  bool
	numLock   bool
	scrollLock bool

	ledCapsBelief   bool
	ledNumBelief    bool
	ledScrollBelief bool
	ledBeliefValid  bool
}

func NewKeyboardMapper(ctx *Context) *KeyboardMapper {
	orientationAware, _ := getBoolProp(ctx.Properties, "keyboard.orientationAware")
	return &KeyboardMapper{ctx: ctx, orientationAware: orientationAware}
}

func getBoolProp(props input.PropertyMap, key string) (bool, bool) {
	if props == nil {
		return false, false
	}
	return props.GetBool(key)
}

func (m *KeyboardMapper) findHeld(scanCode int32) int {
	for i, h := range m.held {
		if h.scanCode == scanCode {
			return i
		}
	}
	return -1
}

func (m *KeyboardMapper) currentRotation() input.Rotation {
	if !m.orientationAware || m.ctx.Policy == nil {
		return input.Rotation0
	}
	info, ok := m.ctx.Policy.GetDisplayInfo(m.ctx.DeviceID)
	if !ok {
		return input.Rotation0
	}
	return info.Orientation
}

func (m *KeyboardMapper) Process(events []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	for _, e := range events {
		if e.Kind != input.RawKey {
			continue
		}
		out = append(out, m.processKey(e)...)
	}
	return out
}

func (m *KeyboardMapper) processKey(e input.RawEvent) []input.CookedEvent {
	down := e.Value != 0
	if !down {
		return m.processKeyUp(e)
	}
	return m.processKeyDown(e)
}

func (m *KeyboardMapper) processKeyDown(e input.RawEvent) []input.CookedEvent {
	keyCode, layoutFlags, ok := int32(0), uint32(0), false
	if m.ctx.KeyLayout != nil {
		kc, fl, mapped := m.ctx.KeyLayout.MapKey(int(e.Code))
		keyCode, layoutFlags, ok = kc, fl, mapped
	}
	if !ok {
		return nil
	}

	if slot, isDpad := dpadSlot(keyCode); isDpad {
		rot := m.currentRotation()
		rotatedSlot := dpadRotationTable[rot][slot]
		keyCode = dpadKeycodesBySlot[rotatedSlot]
	}

	if idx := m.findHeld(e.Code); idx >= 0 {
		// Repeat: reuse the stored keycode, re-emit a Down with the
		// original down-time.
		h := m.held[idx]
		return []input.CookedEvent{m.buildKeyEvent(e.When, input.KeyDown, h.keyCode, e.Code, h.flags, h.downTime)}
	}

	m.updateMetaOnDown(keyCode)
	m.held = append(m.held, heldKey{scanCode: e.Code, keyCode: keyCode, flags: layoutFlags, downTime: e.When})

	policyFlags := m.wakeFlags(layoutFlags)
	ev := m.buildKeyEvent(e.When, input.KeyDown, keyCode, e.Code, 0, e.When)
	ev.PolicyFlags = policyFlags

	leds := m.ledEvents()
	return append(leds, ev)
}

func (m *KeyboardMapper) processKeyUp(e input.RawEvent) []input.CookedEvent {
	idx := m.findHeld(e.Code)
	if idx < 0 {
		return nil
	}
	h := m.held[idx]
	m.held = append(m.held[:idx], m.held[idx+1:]...)
	m.updateMetaOnUp(h.keyCode)
	ev := m.buildKeyEvent(e.When, input.KeyUp, h.keyCode, e.Code, 0, h.downTime)
	leds := m.ledEvents()
	return append(leds, ev)
}

func (m *KeyboardMapper) buildKeyEvent(when int64, action input.KeyAction, keyCode, scanCode int32, flags uint32, downTime int64) input.KeyEvent {
	return input.KeyEvent{
		When:      when,
		DeviceID:  m.ctx.DeviceID,
		Source:    m.ctx.Classes,
		Action:    action,
		Flags:     flags,
		KeyCode:   keyCode,
		ScanCode:  scanCode,
		MetaState: m.metaState,
		DownTime:  downTime,
	}
}

// wakeFlags unions the layout's own wake flag with the external-device wake
// policy: key-down on an external keyboard lacking a wake flag still
// acquires one; internal keyboards never gain one they didn't already have.
func (m *KeyboardMapper) wakeFlags(layoutFlags uint32) uint32 {
	flags := uint32(0)
	if layoutFlags&LayoutFlagWake != 0 {
		flags |= input.PolicyFlagWake
	}
	if m.ctx.Classes.Has(input.ClassExternal) {
		flags |= input.PolicyFlagWake
	}
	return flags
}

func (m *KeyboardMapper) updateMetaOnDown(keyCode int32) {
	switch keyCode {
	case metaKeyShiftLeft:
		m.metaState |= input.MetaShiftLeft
	case metaKeyShiftRight:
		m.metaState |= input.MetaShiftRight
	case metaKeyCtrlLeft:
		m.metaState |= input.MetaCtrlLeft
	case metaKeyCtrlRight:
		m.metaState |= input.MetaCtrlRight
	case metaKeyAltLeft:
		m.metaState |= input.MetaAltLeft
	case metaKeyAltRight:
		m.metaState |= input.MetaAltRight
	case metaKeyMetaLeft:
		m.metaState |= input.MetaMetaLeft
	case metaKeyMetaRight:
		m.metaState |= input.MetaMetaRight
	case metaKeyCapsLock:
		m.capsLock = !m.capsLock
		m.setMeta(input.MetaCapsLockOn, m.capsLock)
	case metaKeyNumLock:
		m.numLock = !m.numLock
		m.setMeta(input.MetaNumLockOn, m.numLock)
	case metaKeyScrollLock:
		m.scrollLock = !m.scrollLock
		m.setMeta(input.MetaScrollLockOn, m.scrollLock)
	}
}

func (m *KeyboardMapper) updateMetaOnUp(keyCode int32) {
	switch keyCode {
	case metaKeyShiftLeft:
		m.metaState &^= input.MetaShiftLeft
	case metaKeyShiftRight:
		m.metaState &^= input.MetaShiftRight
	case metaKeyCtrlLeft:
		m.metaState &^= input.MetaCtrlLeft
	case metaKeyCtrlRight:
		m.metaState &^= input.MetaCtrlRight
	case metaKeyAltLeft:
		m.metaState &^= input.MetaAltLeft
	case metaKeyAltRight:
		m.metaState &^= input.MetaAltRight
	case metaKeyMetaLeft:
		m.metaState &^= input.MetaMetaLeft
	case metaKeyMetaRight:
		m.metaState &^= input.MetaMetaRight
	}
}

func (m *KeyboardMapper) setMeta(bit uint32, on bool) {
	if on {
		m.metaState |= bit
	} else {
		m.metaState &^= bit
	}
}

// ledEvents issues SetLED writes only when the desired belief differs
// from the cached one, and returns no cooked events — LEDs are a
// side-effecting output, not a notification.
func (m *KeyboardMapper) ledEvents() []input.CookedEvent {
	if m.ctx.LED == nil {
		return nil
	}
	if !m.ledBeliefValid || m.ledCapsBelief != m.capsLock {
		if m.ctx.Caps.Led.Test(input.LedCapsl) {
			m.ctx.LED.SetLED(input.LedCapsl, m.capsLock)
		}
		m.ledCapsBelief = m.capsLock
	}
	if !m.ledBeliefValid || m.ledNumBelief != m.numLock {
		if m.ctx.Caps.Led.Test(input.LedNuml) {
			m.ctx.LED.SetLED(input.LedNuml, m.numLock)
		}
		m.ledNumBelief = m.numLock
	}
	if !m.ledBeliefValid || m.ledScrollBelief != m.scrollLock {
		if m.ctx.Caps.Led.Test(input.LedScrolll) {
			m.ctx.LED.SetLED(input.LedScrolll, m.scrollLock)
		}
		m.ledScrollBelief = m.scrollLock
	}
	m.ledBeliefValid = true
	return nil
}

// Reset synthesizes up events for every key this mapper believes is held,
// as required for SYN_DROPPED recovery (§4.1).
func (m *KeyboardMapper) Reset(when int64) []input.CookedEvent {
	var out []input.CookedEvent
	for _, h := range m.held {
		m.updateMetaOnUp(h.keyCode)
		out = append(out, m.buildKeyEvent(when, input.KeyUp, h.keyCode, h.scanCode, input.FlagCanceled, h.downTime))
	}
	m.held = nil
	return out
}

func (m *KeyboardMapper) TimeoutExpired(when int64) []input.CookedEvent { return nil }

func (m *KeyboardMapper) Configure(change ConfigChange) []input.CookedEvent { return nil }

// Framework keycodes for the modifier/lock keys the meta-state machine
// tracks. These are resolved through the same keycode space a KeyLayout
// produces, distinct from the raw scancodes in evcodes.go.
const (
	metaKeyShiftLeft  = 59
	metaKeyShiftRight = 60
	metaKeyCtrlLeft   = 113
	metaKeyCtrlRight  = 114
	metaKeyAltLeft    = 57
	metaKeyAltRight   = 58
	metaKeyMetaLeft   = 117
	metaKeyMetaRight  = 118
	metaKeyCapsLock   = 115
	metaKeyNumLock    = 143
	metaKeyScrollLock = 116
)
