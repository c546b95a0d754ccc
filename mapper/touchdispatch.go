package mapper

import "github.com/rawinput/inputhub/input"

// handlePointerButton feeds a touchpad's own BTN_LEFT/RIGHT/MIDDLE key into
// the gesture detector's click-or-drag mode, for a device running in
// touchpad-as-pointer mode (§4.6). No-op for anything else, including a
// plain touchscreen, which never constructs a GestureDetector.
func (m *TouchMapper) handlePointerButton(code, value int32, when int64) []input.CookedEvent {
	if m.deviceType != TouchDevicePointer || m.gesture == nil {
		return nil
	}
	switch code {
	case input.BtnLeft, input.BtnRight, input.BtnMiddle:
	default:
		return nil
	}
	return m.gesture.SetButtonDown(value != 0, when)
}

// handleFrame is the shared entry point both decoders call once per
// sync-delimited raw frame, after they've built a RawPointerData with ids
// already assigned (§4.5.3/§4.5.4). It runs surface configuration, the
// virtual-key state machine, touch dispatch, and the hover model — or, for
// a touchpad-as-pointer device, delegates the whole frame to the gesture
// detector instead.
func (m *TouchMapper) handleFrame(raw *input.RawPointerData, when int64) []input.CookedEvent {
	if !m.surface.configured {
		m.configureSurface()
		if !m.surface.configured {
			return nil
		}
	}

	if m.deviceType == TouchDevicePointer {
		return m.gesture.Process(raw, when)
	}

	wasActive := raw.PointerCount > 0

	if m.suppressedStroke {
		if raw.PointerCount == 0 {
			m.suppressedStroke = false
		}
		m.armVirtualKeyQuiet(when, wasActive)
		m.lastRaw = *raw
		return nil
	}

	var out []input.CookedEvent

	if m.vk == vkDown {
		out = append(out, m.updateVirtualKeyDown(raw, when)...)
		if m.vk == vkDown || m.suppressedStroke {
			m.armVirtualKeyQuiet(when, wasActive)
			m.lastRaw = *raw
			return out
		}
	} else if m.vk == vkIdle {
		if handled, events := m.tryStartVirtualKey(raw, when); handled {
			out = append(out, events...)
			m.armVirtualKeyQuiet(when, wasActive)
			m.lastRaw = *raw
			return out
		}
	}

	cooked := m.cookFrame(raw)
	out = append(out, m.dispatchTouch(raw, &cooked, when)...)
	out = append(out, m.dispatchHover(raw, &cooked, when)...)

	m.lastRaw = *raw
	m.lastCooked = cooked
	m.armVirtualKeyQuiet(when, wasActive)
	return out
}

func (m *TouchMapper) armVirtualKeyQuiet(when int64, active bool) {
	if active {
		m.disableVKUntil = when + virtualKeyQuietTimeNanos
	}
}

// tryStartVirtualKey implements the Idle branch of §4.5.5.
func (m *TouchMapper) tryStartVirtualKey(raw *input.RawPointerData, when int64) (bool, []input.CookedEvent) {
	downIDs := raw.Touching.AndNot(m.lastRaw.Touching)
	if downIDs.IsEmpty() || raw.PointerCount == 0 {
		return false, nil
	}
	id, ok := downIDs.FirstMarkedID()
	if !ok {
		return false, nil
	}
	idx := raw.IndexOf(id)
	if idx < 0 {
		return false, nil
	}
	axes := raw.Pointers[idx]
	if m.insideDisplaySurface(axes.X, axes.Y) {
		return false, nil
	}
	if raw.PointerCount != 1 {
		m.suppressedStroke = true
		return true, nil
	}
	if when < m.disableVKUntil {
		m.suppressedStroke = true
		return true, nil
	}
	vk, hit := m.findVirtualKey(axes.X, axes.Y)
	if !hit {
		m.suppressedStroke = true
		return true, nil
	}
	m.vk = vkDown
	m.vkCurrent = vk
	m.vkDownTime = when
	return true, []input.CookedEvent{input.KeyEvent{
		When:        when,
		DeviceID:    m.ctx.DeviceID,
		Source:      m.ctx.Classes,
		PolicyFlags: input.PolicyFlagVirtual | input.PolicyFlagFromSystem,
		Action:      input.KeyDown,
		Flags:       input.FlagVirtualHardKey,
		KeyCode:     vk.KeyCode,
		ScanCode:    vk.ScanCode,
		DownTime:    when,
	}}
}

// updateVirtualKeyDown implements the VKDown branch of §4.5.5.
func (m *TouchMapper) updateVirtualKeyDown(raw *input.RawPointerData, when int64) []input.CookedEvent {
	if raw.PointerCount == 0 {
		m.vk = vkIdle
		return []input.CookedEvent{input.KeyEvent{
			When: when, DeviceID: m.ctx.DeviceID, Source: m.ctx.Classes,
			PolicyFlags: input.PolicyFlagVirtual | input.PolicyFlagFromSystem,
			Action:      input.KeyUp,
			KeyCode:     m.vkCurrent.KeyCode,
			ScanCode:    m.vkCurrent.ScanCode,
			DownTime:    m.vkDownTime,
		}}
	}

	id, ok := raw.Touching.FirstMarkedID()
	var axes input.RawPointerAxes
	stillInside := false
	if ok {
		if idx := raw.IndexOf(id); idx >= 0 {
			axes = raw.Pointers[idx]
			stillInside = m.vkCurrent.Contains(axes.X, axes.Y)
		}
	}

	if raw.PointerCount >= 2 || !stillInside {
		m.vk = vkIdle
		cancelEvent := input.KeyEvent{
			When: when, DeviceID: m.ctx.DeviceID, Source: m.ctx.Classes,
			PolicyFlags: input.PolicyFlagVirtual | input.PolicyFlagFromSystem,
			Action:      input.KeyUp,
			Flags:       input.FlagCanceled,
			KeyCode:     m.vkCurrent.KeyCode,
			ScanCode:    m.vkCurrent.ScanCode,
			DownTime:    m.vkDownTime,
		}
		if ok && m.insideDisplaySurface(axes.X, axes.Y) {
			m.lastRaw.Clear()
			m.lastCooked.Clear()
			return []input.CookedEvent{cancelEvent}
		}
		m.suppressedStroke = true
		return []input.CookedEvent{cancelEvent}
	}

	// Still inside the same key's rectangle: swallow.
	return nil
}

// dispatchTouch implements §4.5.6: up/move/down id-set arithmetic against
// the previous frame.
func (m *TouchMapper) dispatchTouch(raw *input.RawPointerData, cooked *input.CookedPointerData, when int64) []input.CookedEvent {
	lastTouching := m.lastRaw.Touching
	curTouching := raw.Touching

	upIDs := lastTouching.AndNot(curTouching)
	downIDs := curTouching.AndNot(lastTouching)
	moveIDs := lastTouching.And(curTouching)

	var out []input.CookedEvent

	allUp := curTouching.IsEmpty() && !lastTouching.IsEmpty()
	allDown := !curTouching.IsEmpty() && lastTouching.IsEmpty()

	if allUp {
		out = append(out, m.buildMotion(&m.lastCooked, int32(input.ActionUp), when))
		return out
	}

	for _, id := range upIDs.IDs() {
		idx := m.lastCooked.IndexOf(id)
		if idx < 0 {
			continue
		}
		action := input.EncodePointerAction(input.ActionPointerUp, idx)
		out = append(out, m.buildMotion(&m.lastCooked, action, when))
	}

	if moveIDs.Count() > 0 && m.frameChanged(cooked, &m.lastCooked, moveIDs) {
		out = append(out, m.buildMotion(cooked, int32(input.ActionMove), when))
	}

	if allDown {
		m.strokeDownTime = when
		out = append(out, m.buildMotion(cooked, int32(input.ActionDown), when))
		return out
	}

	for _, id := range downIDs.IDs() {
		idx := cooked.IndexOf(id)
		if idx < 0 {
			continue
		}
		action := input.EncodePointerAction(input.ActionPointerDown, idx)
		out = append(out, m.buildMotion(cooked, action, when))
	}

	return out
}

func (m *TouchMapper) frameChanged(cur, last *input.CookedPointerData, ids input.PointerBitset) bool {
	for _, id := range ids.IDs() {
		ci, li := cur.IndexOf(id), last.IndexOf(id)
		if ci < 0 || li < 0 {
			return true
		}
		if cur.Coords[ci].Get(input.AxisX) != last.Coords[li].Get(input.AxisX) ||
			cur.Coords[ci].Get(input.AxisY) != last.Coords[li].Get(input.AxisY) {
			return true
		}
	}
	return false
}

func (m *TouchMapper) buildMotion(cooked *input.CookedPointerData, action int32, when int64) input.MotionEvent {
	samples := make([]input.PointerSample, 0, cooked.PointerCount)
	for i := 0; i < cooked.PointerCount; i++ {
		c := cooked.Coords[i]
		p := cooked.Properties[i]
		samples = append(samples, input.PointerSample{
			ID:          p.ID,
			ToolType:    p.ToolType,
			X:           c.Get(input.AxisX),
			Y:           c.Get(input.AxisY),
			Pressure:    c.Get(input.AxisPressure),
			Size:        c.Get(input.AxisSize),
			TouchMajor:  c.Get(input.AxisTouchMajor),
			TouchMinor:  c.Get(input.AxisTouchMinor),
			ToolMajor:   c.Get(input.AxisToolMajor),
			ToolMinor:   c.Get(input.AxisToolMinor),
			Orientation: c.Get(input.AxisOrientation),
			Distance:    c.Get(input.AxisDistance),
		})
	}
	return input.MotionEvent{
		When:     when,
		DeviceID: m.ctx.DeviceID,
		Source:   m.ctx.Classes,
		Action:   action,
		Pointers: samples,
		DownTime: m.strokeDownTime,
	}
}

// dispatchHover implements §4.5.7: tool-present-without-contact transitions.
func (m *TouchMapper) dispatchHover(raw *input.RawPointerData, cooked *input.CookedPointerData, when int64) []input.CookedEvent {
	lastHover := m.lastRaw.Hovering
	curHover := raw.Hovering

	var out []input.CookedEvent

	exitIDs := lastHover.AndNot(curHover)
	enterIDs := curHover.AndNot(lastHover)
	moveIDs := lastHover.And(curHover)

	for range exitIDs.IDs() {
		out = append(out, m.buildMotion(&m.lastCooked, int32(input.ActionHoverExit), when))
	}
	for range enterIDs.IDs() {
		out = append(out, m.buildMotion(cooked, int32(input.ActionHoverEnter), when))
	}
	if moveIDs.Count() > 0 {
		out = append(out, m.buildMotion(cooked, int32(input.ActionHoverMove), when))
	}
	return out
}

func (m *TouchMapper) Reset(when int64) []input.CookedEvent {
	var out []input.CookedEvent
	if m.vk == vkDown {
		out = append(out, input.KeyEvent{
			When: when, DeviceID: m.ctx.DeviceID, Source: m.ctx.Classes,
			PolicyFlags: input.PolicyFlagVirtual | input.PolicyFlagFromSystem,
			Action:      input.KeyUp,
			Flags:       input.FlagCanceled,
			KeyCode:     m.vkCurrent.KeyCode,
			ScanCode:    m.vkCurrent.ScanCode,
			DownTime:    m.vkDownTime,
		})
		m.vk = vkIdle
	}
	if !m.lastRaw.Touching.IsEmpty() {
		out = append(out, m.buildMotion(&m.lastCooked, int32(input.ActionCancel), when))
	}
	m.suppressedStroke = false
	m.lastRaw.Clear()
	m.lastCooked.Clear()
	if m.gesture != nil {
		out = append(out, m.gesture.Reset(when)...)
	}
	return out
}

func (m *TouchMapper) TimeoutExpired(when int64) []input.CookedEvent {
	if m.gesture != nil {
		return m.gesture.TimeoutExpired(when)
	}
	return nil
}

func (m *TouchMapper) Configure(change ConfigChange) []input.CookedEvent {
	if change&ConfigChangeDisplayInfo != 0 {
		m.configureSurface()
	}
	return nil
}
