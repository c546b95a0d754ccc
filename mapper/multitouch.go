package mapper

import "github.com/rawinput/inputhub/input"

type mtSlot struct {
	trackingID int32
	axes       input.RawPointerAxes
}

// MultiTouchMapper decodes both MT-B (slot-based, ABS_MT_SLOT +
// ABS_MT_TRACKING_ID) and MT-A (anonymous per-finger blocks terminated by
// SYN_MT_REPORT) dialects into the shared TouchMapper's RawPointerData
// (§2, §4.5.4). Protocol is chosen once at construction based on whether
// the device reports ABS_MT_SLOT.
type MultiTouchMapper struct {
	*TouchMapper

	protocolB bool

	// Protocol B state.
	slots        []mtSlot
	currentSlot  int
	trackingToID map[int32]uint32
	usedIDs      uint32mask

	// Protocol A state.
	blockAxes input.RawPointerAxes
	blockSeen bool
	blocks    []input.RawPointerAxes
}

func NewMultiTouchMapper(ctx *Context) *MultiTouchMapper {
	m := &MultiTouchMapper{
		TouchMapper:  newTouchMapper(ctx, input.AbsMtPositionX, input.AbsMtPositionY),
		trackingToID: make(map[int32]uint32),
	}
	if ctx.Caps.Abs.Test(input.AbsMtSlot) {
		m.protocolB = true
		maxSlots := 16
		if info := ctx.Abs(input.AbsMtSlot); info.Valid && info.Max > 0 {
			maxSlots = int(info.Max) + 1
		}
		m.slots = make([]mtSlot, maxSlots)
		for i := range m.slots {
			m.slots[i].trackingID = -1
		}
	}
	return m
}

func (m *MultiTouchMapper) Process(events []input.RawEvent) []input.CookedEvent {
	if m.protocolB {
		return m.processProtocolB(events)
	}
	return m.processProtocolA(events)
}

func (m *MultiTouchMapper) processProtocolB(events []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	for _, e := range events {
		switch {
		case e.Kind == input.RawAbs && e.Code == input.AbsMtSlot:
			if int(e.Value) >= 0 && int(e.Value) < len(m.slots) {
				m.currentSlot = int(e.Value)
			}
		case e.Kind == input.RawAbs && e.Code == input.AbsMtTrackingID:
			m.setSlotTrackingID(m.currentSlot, e.Value)
		case e.Kind == input.RawAbs:
			m.applyAxis(&m.slots[m.currentSlot].axes, e.Code, e.Value)
		case e.Kind == input.RawKey:
			out = append(out, m.handlePointerButton(e.Code, e.Value, e.When)...)
		case e.Kind == input.RawSync && e.Code == input.SyncReport:
			frame := m.buildFrameProtocolB()
			out = append(out, m.handleFrame(&frame, e.When)...)
		}
	}
	return out
}

func (m *MultiTouchMapper) setSlotTrackingID(slot int, trackingID int32) {
	if slot < 0 || slot >= len(m.slots) {
		return
	}
	old := m.slots[slot].trackingID
	if trackingID == -1 {
		if old != -1 {
			if id, ok := m.trackingToID[old]; ok {
				m.usedIDs.clear(id)
				delete(m.trackingToID, old)
			}
		}
		m.slots[slot] = mtSlot{trackingID: -1}
		return
	}
	m.slots[slot].trackingID = trackingID
}

func (m *MultiTouchMapper) pointerIDForTrackingID(trackingID int32) uint32 {
	if id, ok := m.trackingToID[trackingID]; ok {
		return id
	}
	id := m.usedIDs.firstUnused()
	m.usedIDs.set(id)
	m.trackingToID[trackingID] = id
	return id
}

func (m *MultiTouchMapper) buildFrameProtocolB() input.RawPointerData {
	var raw input.RawPointerData
	raw.Clear()
	for i := range m.slots {
		s := &m.slots[i]
		if s.trackingID == -1 {
			continue
		}
		id := m.pointerIDForTrackingID(s.trackingID)
		axes := s.axes
		axes.ID = id
		axes.TrackingID = s.trackingID
		axes.ToolType = mtToolType(axes)
		axes.IsHovering = axes.ToolType != input.ToolFinger && axes.Pressure == 0
		idx := raw.PointerCount
		raw.Pointers[idx] = axes
		raw.PointerCount++
		raw.MarkID(id, idx, axes.IsHovering)
	}
	return raw
}

func mtToolType(axes input.RawPointerAxes) input.ToolType {
	return axes.ToolType
}

func (m *MultiTouchMapper) applyAxis(axes *input.RawPointerAxes, code, value int32) {
	switch code {
	case input.AbsMtPositionX:
		axes.X = value
	case input.AbsMtPositionY:
		axes.Y = value
	case input.AbsMtPressure:
		axes.Pressure = value
	case input.AbsMtTouchMajor:
		axes.TouchMajor = value
	case input.AbsMtTouchMinor:
		axes.TouchMinor = value
	case input.AbsMtWidthMajor:
		axes.ToolMajor = value
	case input.AbsMtWidthMinor:
		axes.ToolMinor = value
	case input.AbsMtOrientation:
		axes.Orientation = value
	case input.AbsMtDistance:
		axes.Distance = value
	case input.AbsMtToolType:
		axes.ToolType = mtKernelToolType(value)
	}
}

func mtKernelToolType(v int32) input.ToolType {
	switch v {
	case input.MtToolFinger:
		return input.ToolFinger
	case input.MtToolPen:
		return input.ToolStylus
	case input.MtToolPalm:
		return input.ToolPalm
	default:
		return input.ToolUnknown
	}
}

// processProtocolA handles the anonymous-blob MT-A dialect: each finger is
// one run of ABS_MT_* values terminated by SYN_MT_REPORT (SyncMTReport);
// since the kernel assigns no tracking id, pointer ids are recovered with
// the same greedy nearest-match algorithm §4.5.3 specifies for
// single-touch-like devices.
func (m *MultiTouchMapper) processProtocolA(events []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	for _, e := range events {
		switch {
		case e.Kind == input.RawAbs:
			m.applyAxis(&m.blockAxes, e.Code, e.Value)
			m.blockSeen = true
		case e.Kind == input.RawKey:
			out = append(out, m.handlePointerButton(e.Code, e.Value, e.When)...)
		case e.Kind == input.RawSync && e.Code == input.SyncMTReport:
			if m.blockSeen {
				m.blocks = append(m.blocks, m.blockAxes)
			}
			m.blockAxes = input.RawPointerAxes{}
			m.blockSeen = false
		case e.Kind == input.RawSync && e.Code == input.SyncReport:
			frame := m.buildFrameProtocolA()
			out = append(out, m.handleFrame(&frame, e.When)...)
			m.blocks = nil
		}
	}
	return out
}

func (m *MultiTouchMapper) buildFrameProtocolA() input.RawPointerData {
	var raw input.RawPointerData
	raw.Clear()
	n := len(m.blocks)
	if n == 0 {
		return raw
	}
	curX := make([]int32, n)
	curY := make([]int32, n)
	for i, b := range m.blocks {
		curX[i], curY[i] = b.X, b.Y
	}
	lastIDs := m.lastRaw.Touching.Or(m.lastRaw.Hovering).IDs()
	lastX := make([]int32, len(lastIDs))
	lastY := make([]int32, len(lastIDs))
	for i, id := range lastIDs {
		idx := m.lastRaw.IndexOf(id)
		if idx >= 0 {
			lastX[i] = m.lastRaw.Pointers[idx].X
			lastY[i] = m.lastRaw.Pointers[idx].Y
		}
	}
	ids := assignPointerIDsGreedy(curX, curY, lastIDs, lastX, lastY)

	raw.PointerCount = n
	for i, b := range m.blocks {
		b.ID = ids[i]
		b.TrackingID = -1
		b.ToolType = mtToolType(b)
		if b.ToolType == input.ToolFinger && b.Pressure == 0 {
			b.ToolType = input.ToolFinger
		}
		raw.Pointers[i] = b
		raw.MarkID(ids[i], i, false)
	}
	return raw
}

func (m *MultiTouchMapper) Reset(when int64) []input.CookedEvent {
	m.slots = nil
	m.trackingToID = make(map[int32]uint32)
	m.usedIDs = 0
	m.blocks = nil
	m.blockSeen = false
	if m.protocolB {
		maxSlots := 16
		if info := m.ctx.Abs(input.AbsMtSlot); info.Valid && info.Max > 0 {
			maxSlots = int(info.Max) + 1
		}
		m.slots = make([]mtSlot, maxSlots)
		for i := range m.slots {
			m.slots[i].trackingID = -1
		}
	}
	return m.TouchMapper.Reset(when)
}
