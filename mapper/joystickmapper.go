package mapper

import "github.com/rawinput/inputhub/input"

// joystickFieldOf assigns a normalized axis to one of the fixed PointerSample
// fields the cooked motion schema exposes. Six axes is enough for a
// dual-stick pad plus two triggers; anything beyond that is dropped with no
// event, the same "degrade, don't crash" posture as a ConfigurationError.
func joystickFieldOf(code int) (setter func(*input.PointerSample, float32), ok bool) {
	switch code {
	case input.AbsX:
		return func(p *input.PointerSample, v float32) { p.X = v }, true
	case input.AbsY:
		return func(p *input.PointerSample, v float32) { p.Y = v }, true
	case input.AbsRX:
		return func(p *input.PointerSample, v float32) { p.TiltX = v }, true
	case input.AbsRY:
		return func(p *input.PointerSample, v float32) { p.TiltY = v }, true
	case input.AbsZ:
		return func(p *input.PointerSample, v float32) { p.Pressure = v }, true
	case input.AbsRZ:
		return func(p *input.PointerSample, v float32) { p.Distance = v }, true
	default:
		return nil, false
	}
}

type joystickAxisState struct {
	code    int
	min     int32
	max     int32
	flat    int32
	invert  bool
	splitAt  int32
	hasSplit bool
}

// JoystickMapper implements §2's "absolute axis normalization, per-axis
// dead-zone filter, split-axis and inversion": every reported ABS axis
// (other than the MT/touch axis space the touch mapper owns) is normalized
// against its reported [min, max] into [-1, 1] (or [0, 1] for a
// unipolar axis whose range does not straddle zero), a flat/dead zone is
// subtracted from the magnitude of a bipolar axis (a unipolar axis gets no
// dead zone), and a split axis (one physical control
// reported as two logical directions around a center value) is emitted as
// two independent normalized axes.
type JoystickMapper struct {
	ctx   *Context
	axes  []joystickAxisState
	accum map[int]int32 // last raw value seen per axis code this sync group
}

func NewJoystickMapper(ctx *Context) *JoystickMapper {
	m := &JoystickMapper{ctx: ctx, accum: make(map[int]int32)}
	for code := 0; code <= input.AbsMax; code++ {
		if !ctx.Caps.Abs.Test(code) {
			continue
		}
		if isTouchAxis(code) {
			continue
		}
		info := ctx.Abs(code)
		if !info.Valid {
			continue
		}
		st := joystickAxisState{code: code, min: info.Min, max: info.Max, flat: info.Flat}
		if ctx.Properties != nil {
			if inv, ok := ctx.Properties.GetBool(joystickInvertPropertyName(code)); ok {
				st.invert = inv
			}
		}
		if ctx.KeyLayout != nil {
			if mapping, ok := ctx.KeyLayout.MapAxis(code); ok && mapping.HasHigh {
				st.hasSplit = true
				st.splitAt = mapping.SplitValue
			}
		}
		m.axes = append(m.axes, st)
	}
	return m
}

func isTouchAxis(code int) bool {
	switch code {
	case input.AbsMtSlot, input.AbsMtTouchMajor, input.AbsMtTouchMinor, input.AbsMtWidthMajor,
		input.AbsMtWidthMinor, input.AbsMtOrientation, input.AbsMtPositionX, input.AbsMtPositionY,
		input.AbsMtToolType, input.AbsMtBlobID, input.AbsMtTrackingID, input.AbsMtPressure,
		input.AbsMtDistance, input.AbsMtToolX, input.AbsMtToolY,
		input.AbsPressure, input.AbsDistance, input.AbsToolWidth:
		return true
	default:
		return false
	}
}

func joystickInvertPropertyName(code int) string {
	switch code {
	case input.AbsX:
		return "joystick.invert.x"
	case input.AbsY:
		return "joystick.invert.y"
	case input.AbsRX:
		return "joystick.invert.rx"
	case input.AbsRY:
		return "joystick.invert.ry"
	default:
		return ""
	}
}

func (m *JoystickMapper) normalize(st joystickAxisState, raw int32) float32 {
	if st.min >= 0 {
		span := float32(st.max - st.min)
		if span <= 0 {
			return 0
		}
		v := float32(raw-st.min) / span
		if st.invert {
			v = 1 - v
		}
		return v
	}
	center := float32(st.max+st.min) / 2
	half := float32(st.max-st.min) / 2
	if half <= 0 {
		return 0
	}
	v := (float32(raw) - center) / half
	if float32(st.flat) > 0 {
		dead := float32(st.flat) / half
		if v > dead {
			v = (v - dead) / (1 - dead)
		} else if v < -dead {
			v = (v + dead) / (1 - dead)
		} else {
			v = 0
		}
	}
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	if st.invert {
		v = -v
	}
	return v
}

func (m *JoystickMapper) Process(events []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	for _, e := range events {
		switch e.Kind {
		case input.RawAbs:
			m.accum[int(e.Code)] = e.Value
		case input.RawSync:
			if e.Code == input.SyncReport && len(m.accum) > 0 {
				out = append(out, m.flush(e.When))
			}
		}
	}
	return out
}

func (m *JoystickMapper) flush(when int64) input.CookedEvent {
	sample := input.PointerSample{ID: 0, ToolType: input.ToolUnknown}
	for _, st := range m.axes {
		raw, ok := m.accum[st.code]
		if !ok {
			continue
		}
		setter, ok := joystickFieldOf(st.code)
		if !ok {
			continue
		}
		if st.hasSplit {
			// One physical control split into two logical triggers around
			// splitAt: below goes to Pressure, at-or-above to Distance,
			// each renormalized against its own half of the raw range.
			if raw < st.splitAt {
				sample.Pressure = m.normalize(joystickAxisState{min: st.min, max: st.splitAt, flat: st.flat, invert: st.invert}, raw)
			} else {
				sample.Distance = m.normalize(joystickAxisState{min: st.splitAt, max: st.max, flat: st.flat, invert: st.invert}, raw)
			}
			continue
		}
		setter(&sample, m.normalize(st, raw))
	}
	return input.MotionEvent{
		When:     when,
		DeviceID: m.ctx.DeviceID,
		Source:   m.ctx.Classes,
		Action:   int32(input.ActionMove),
		Pointers: []input.PointerSample{sample},
		DownTime: when,
	}
}

func (m *JoystickMapper) Reset(when int64) []input.CookedEvent {
	m.accum = make(map[int]int32)
	return nil
}

func (m *JoystickMapper) TimeoutExpired(when int64) []input.CookedEvent { return nil }

func (m *JoystickMapper) Configure(change ConfigChange) []input.CookedEvent { return nil }
