package mapper

import "github.com/rawinput/inputhub/input"

// SingleTouchMapper decodes the legacy one-finger protocol (BTN_TOUCH,
// ABS_X/Y, ABS_PRESSURE, ABS_TOOL_WIDTH, ABS_DISTANCE, ABS_TILT_X/Y) into
// the shared TouchMapper's RawPointerData, per §2's "decode legacy
// one-finger protocol into the base's RawPointerData".
type SingleTouchMapper struct {
	*TouchMapper

	down     bool
	hovering bool
	x, y     int32
	pressure int32
	toolMajor int32
	distance int32
	tiltX, tiltY int32
}

func NewSingleTouchMapper(ctx *Context) *SingleTouchMapper {
	return &SingleTouchMapper{TouchMapper: newTouchMapper(ctx, input.AbsX, input.AbsY)}
}

func (m *SingleTouchMapper) Process(events []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	for _, e := range events {
		switch {
		case e.Kind == input.RawKey && e.Code == input.BtnTouch:
			m.down = e.Value != 0
		case e.Kind == input.RawKey:
			out = append(out, m.handlePointerButton(e.Code, e.Value, e.When)...)
		case e.Kind == input.RawAbs && e.Code == input.AbsX:
			m.x = e.Value
		case e.Kind == input.RawAbs && e.Code == input.AbsY:
			m.y = e.Value
		case e.Kind == input.RawAbs && e.Code == input.AbsPressure:
			m.pressure = e.Value
		case e.Kind == input.RawAbs && e.Code == input.AbsToolWidth:
			m.toolMajor = e.Value
		case e.Kind == input.RawAbs && e.Code == input.AbsDistance:
			m.distance = e.Value
			m.hovering = e.Value > 0 && !m.down
		case e.Kind == input.RawAbs && e.Code == input.AbsTiltX:
			m.tiltX = e.Value
		case e.Kind == input.RawAbs && e.Code == input.AbsTiltY:
			m.tiltY = e.Value
		case e.Kind == input.RawSync && e.Code == input.SyncReport:
			frame := m.buildFrame()
			out = append(out, m.handleFrame(&frame, e.When)...)
		}
	}
	return out
}

func (m *SingleTouchMapper) buildFrame() input.RawPointerData {
	var raw input.RawPointerData
	raw.Clear()
	if !m.down && !m.hovering {
		return raw
	}
	raw.PointerCount = 1
	raw.Pointers[0] = input.RawPointerAxes{
		ID: 0, X: m.x, Y: m.y, Pressure: m.pressure,
		ToolMajor: m.toolMajor, ToolMinor: m.toolMajor,
		Distance: m.distance, TiltX: m.tiltX, TiltY: m.tiltY,
		TrackingID: -1, ToolType: input.ToolFinger, IsHovering: m.hovering,
	}
	raw.MarkID(0, 0, m.hovering)
	return raw
}

func (m *SingleTouchMapper) Reset(when int64) []input.CookedEvent {
	m.down, m.hovering = false, false
	return m.TouchMapper.Reset(when)
}
