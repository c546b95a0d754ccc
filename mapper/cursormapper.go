package mapper

import "github.com/rawinput/inputhub/input"

// CursorMode distinguishes an absolute-cursor mouse from a relative
// trackball (§4.4).
type CursorMode int

const (
	CursorModePointer CursorMode = iota
	CursorModeNavigation
)

// trackballMovementScale is 1 / TRACKBALL_MOVEMENT_THRESHOLD.
const trackballMovementScale = 1.0 / 6.0

// CursorMapper implements §4.4: relative X/Y/wheel accumulation, button
// decoding, and pointer-controller-backed absolute cursor motion in Pointer
// mode versus scaled relative motion in Navigation mode.
type CursorMapper struct {
	ctx  *Context
	mode CursorMode

	controller input.PointerController

	accumDX, accumDY    int32
	accumWheel          int32
	accumHWheel         int32
	buttonState         uint32
	prevButtonForEdges  uint32
	wasDown             bool
	lastX, lastY        float32
}

func NewCursorMapper(ctx *Context) *CursorMapper {
	mode := CursorModePointer
	if ctx.Properties != nil {
		if s, ok := ctx.Properties.GetString("cursor.mode"); ok && s == "navigation" {
			mode = CursorModeNavigation
		}
	}
	m := &CursorMapper{ctx: ctx, mode: mode}
	if mode == CursorModePointer && ctx.Policy != nil {
		m.controller = ctx.Policy.ObtainPointerController(ctx.DeviceID)
	}
	return m
}

func (m *CursorMapper) Process(events []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	for _, e := range events {
		switch e.Kind {
		case input.RawRel:
			switch e.Code {
			case input.RelX:
				m.accumDX += e.Value
			case input.RelY:
				m.accumDY += e.Value
			case input.RelWheel:
				m.accumWheel += e.Value
			case input.RelHWheel:
				m.accumHWheel += e.Value
			}
		case input.RawKey:
			m.applyButton(e.Code, e.Value != 0)
		case input.RawSync:
			if e.Code == input.SyncReport {
				out = append(out, m.flushSync(e.When)...)
			}
		}
	}
	return out
}

func (m *CursorMapper) applyButton(code int32, down bool) {
	var bit uint32
	switch code {
	case input.BtnLeft:
		bit = input.ButtonPrimary
	case input.BtnRight, input.BtnStylus:
		bit = input.ButtonSecondary
	case input.BtnMiddle, input.BtnStylus2:
		bit = input.ButtonTertiary
	case input.BtnSide, input.BtnBack:
		bit = input.ButtonBack
	case input.BtnForward, input.BtnExtra:
		bit = input.ButtonForward
	default:
		return
	}
	if down {
		m.buttonState |= bit
	} else {
		m.buttonState &^= bit
	}
}

func (m *CursorMapper) flushSync(when int64) []input.CookedEvent {
	var out []input.CookedEvent

	pressed := m.buttonState &^ m.prevButtonForEdges
	released := m.prevButtonForEdges &^ m.buttonState
	if pressed&input.ButtonBack != 0 {
		out = append(out, keyEvent(m.ctx, when, input.KeyDown, input.KeycodeBack))
	}
	if released&input.ButtonBack != 0 {
		out = append(out, keyEvent(m.ctx, when, input.KeyUp, input.KeycodeBack))
	}
	if pressed&input.ButtonForward != 0 {
		out = append(out, keyEvent(m.ctx, when, input.KeyDown, input.KeycodeForward))
	}
	if released&input.ButtonForward != 0 {
		out = append(out, keyEvent(m.ctx, when, input.KeyUp, input.KeycodeForward))
	}
	m.prevButtonForEdges = m.buttonState

	dx, dy := float32(m.accumDX), float32(m.accumDY)
	wheel, hwheel := float32(m.accumWheel), float32(m.accumHWheel)
	m.accumDX, m.accumDY, m.accumWheel, m.accumHWheel = 0, 0, 0, 0

	isDown := m.buttonState&(input.ButtonPrimary|input.ButtonSecondary|input.ButtonTertiary) != 0
	moved := dx != 0 || dy != 0

	var x, y float32
	switch m.mode {
	case CursorModePointer:
		if m.controller != nil {
			if moved {
				m.controller.Move(dx, dy)
			}
			x, y = m.controller.GetPosition()
		} else {
			x, y = m.lastX+dx, m.lastY+dy
		}
	case CursorModeNavigation:
		x, y = dx*trackballMovementScale, dy*trackballMovementScale
	}
	m.lastX, m.lastY = x, y

	var action int32
	emit := false
	switch {
	case isDown && !m.wasDown:
		action, emit = int32(input.ActionDown), true
	case !isDown && m.wasDown:
		action, emit = int32(input.ActionUp), true
	case isDown && moved:
		action, emit = int32(input.ActionMove), true
	case !isDown && moved && m.mode == CursorModePointer:
		action, emit = int32(input.ActionHoverMove), true
	case !isDown && moved && m.mode == CursorModeNavigation:
		action, emit = int32(input.ActionMove), true
	}
	m.wasDown = isDown

	if emit {
		out = append(out, input.MotionEvent{
			When:        when,
			DeviceID:    m.ctx.DeviceID,
			Source:      m.ctx.Classes,
			Action:      action,
			ButtonState: m.buttonState,
			Pointers: []input.PointerSample{
				{ID: 0, ToolType: input.ToolMouse, X: x, Y: y, Pressure: boolToF32(isDown)},
			},
			DownTime: when,
		})
	}

	if wheel != 0 || hwheel != 0 {
		out = append(out, input.MotionEvent{
			When:        when,
			DeviceID:    m.ctx.DeviceID,
			Source:      m.ctx.Classes,
			Action:      int32(input.ActionScroll),
			ButtonState: m.buttonState,
			Pointers: []input.PointerSample{
				{ID: 0, ToolType: input.ToolMouse, X: x, Y: y},
			},
			DownTime: when,
		})
	}

	return out
}

func boolToF32(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func keyEvent(ctx *Context, when int64, action input.KeyAction, keyCode int32) input.KeyEvent {
	return input.KeyEvent{
		When:     when,
		DeviceID: ctx.DeviceID,
		Source:   ctx.Classes,
		Action:   action,
		KeyCode:  keyCode,
		DownTime: when,
	}
}

func (m *CursorMapper) Reset(when int64) []input.CookedEvent {
	var out []input.CookedEvent
	if m.wasDown {
		out = append(out, input.MotionEvent{
			When: when, DeviceID: m.ctx.DeviceID, Source: m.ctx.Classes,
			Action: int32(input.ActionCancel), Flags: input.FlagCanceled,
			Pointers: []input.PointerSample{{ID: 0, ToolType: input.ToolMouse, X: m.lastX, Y: m.lastY}},
		})
	}
	m.wasDown = false
	m.buttonState = 0
	m.prevButtonForEdges = 0
	return out
}

func (m *CursorMapper) TimeoutExpired(when int64) []input.CookedEvent { return nil }

func (m *CursorMapper) Configure(change ConfigChange) []input.CookedEvent { return nil }
