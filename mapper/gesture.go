package mapper

import "github.com/rawinput/inputhub/input"

// gestureState is the pointer-gesture detector's 9-mode state machine
// (§4.6), evaluated once per touch sync frame for a touchpad-as-pointer
// device.
type gestureState int

const (
	gestureNeutral gestureState = iota
	gestureTap
	gestureTapDrag
	gestureButtonClickOrDrag
	gestureHover
	gesturePress
	gestureSwipe
	gestureFreeform
	gestureQuiet
)

const (
	tapIntervalNanos              = int64(150 * 1e6)
	tapDragIntervalNanos          = int64(300 * 1e6)
	tapSlop                       = float32(10)
	multitouchSettleIntervalNanos = int64(100 * 1e6)
	multitouchMinDistance         = float32(3)
	dragMinSwitchSpeed            = float32(50)
	quietIntervalNanos            = int64(100 * 1e6)
	swipeTransitionAngleCosine    = float32(0.2588)
	pointerGestureMovementScale   = float32(1)
)

type gestureFinger struct {
	id       uint32
	startX   float32
	startY   float32
	lastX    float32
	lastY    float32
}

// GestureDetector converts multi-finger touchpad motion into cursor-relative
// gesture events (§4.6). It owns no pointer id allocation of its own: it
// consumes the TouchMapper's already-cooked frames and returns its gesture
// events as MotionEvents; it does not drive a PointerController.
type GestureDetector struct {
	ctx *Context
	tm  *TouchMapper

	state gestureState

	fingers []gestureFinger

	buttonDown   uint32
	activeFinger uint32
	hasActive    bool

	tapX, tapY           float32
	tapDownTime, tapUpTime int64
	haveTap              bool

	settleStart int64

	referenceGestureX, referenceGestureY float32
	referenceTouchX, referenceTouchY     float32

	freeformIDs map[uint32]uint32
	nextFreeformID uint32

	gestureDownTime int64

	quietUntil int64

	velocity *VelocityTracker

	cursorX, cursorY float32
}

func NewGestureDetector(ctx *Context, tm *TouchMapper) *GestureDetector {
	return &GestureDetector{
		ctx:         ctx,
		tm:          tm,
		velocity:    NewVelocityTracker(),
		freeformIDs: make(map[uint32]uint32),
	}
}

// Process runs one frame of raw pointer data through the state machine and
// returns the cooked events it produces.
func (g *GestureDetector) Process(raw *input.RawPointerData, when int64) []input.CookedEvent {
	cooked := g.tm.cookFrame(raw)
	ids := raw.Touching.IDs()

	var out []input.CookedEvent

	if g.state == gestureTap && when > g.tapUpTime+tapDragIntervalNanos {
		out = append(out, g.emit(input.ActionUp, when))
		g.state = gestureNeutral
		g.haveTap = false
	}
	if g.state == gestureQuiet && when > g.quietUntil {
		g.state = gestureNeutral
	}

	switch {
	case g.buttonDown != 0:
		out = append(out, g.processButtonClickOrDrag(&cooked, ids, when)...)
	case len(ids) == 0:
		out = append(out, g.processNoFingers(when)...)
	case len(ids) == 1:
		out = append(out, g.processOneFinger(&cooked, ids[0], when)...)
	default:
		out = append(out, g.processMultiFinger(&cooked, ids, when)...)
	}

	g.tm.lastRaw = *raw
	g.tm.lastCooked = cooked
	return out
}

// SetButtonDown reports the touchpad's own BTN_LEFT/RIGHT/MIDDLE state so
// the detector can enter/leave ButtonClickOrDrag (§4.6 mode 3).
func (g *GestureDetector) SetButtonDown(down bool, when int64) []input.CookedEvent {
	if down {
		g.buttonDown = 1
		return nil
	}
	wasDown := g.buttonDown != 0
	g.buttonDown = 0
	if !wasDown || len(g.fingers) < 2 {
		return nil
	}
	out := []input.CookedEvent{g.emit(input.ActionUp, when)}
	g.enterQuiet(when)
	return out
}

// processNoFingers implements AOSP's NEUTRAL case: no fingers down and the
// touchpad's own button is not pressed. Lifting out of Hover or TapDrag
// within the tap interval and tap slop of where the finger went down
// produces a Tap (§4.6 mode 4) instead of falling straight through to
// Neutral; a tap's own Up is emitted later, on expiry (Process/TimeoutExpired).
func (g *GestureDetector) processNoFingers(when int64) []input.CookedEvent {
	var out []input.CookedEvent
	prevState := g.state
	hadOneFinger := len(g.fingers) == 1

	switch g.state {
	case gestureHover:
		out = append(out, g.emit(input.ActionHoverExit, when))
	case gestureTapDrag, gesturePress, gestureSwipe, gestureFreeform:
		if g.state == gestureSwipe || g.state == gestureFreeform {
			g.enterQuiet(when)
		}
		out = append(out, g.emit(input.ActionUp, when))
	}

	if (prevState == gestureHover || prevState == gestureTapDrag) && hadOneFinger &&
		when <= g.tapDownTime+tapIntervalNanos {
		dx, dy := g.cursorX-g.tapX, g.cursorY-g.tapY
		if absf(dx) <= tapSlop && absf(dy) <= tapSlop {
			g.state = gestureTap
			g.tapUpTime = when
			g.haveTap = true
			out = append(out, g.emit(input.ActionDown, when))
		}
	}

	if g.state != gestureTap {
		g.state = gestureNeutral
	}
	g.fingers = nil
	g.freeformIDs = make(map[uint32]uint32)
	g.velocity.ClearAll()
	return out
}

func (g *GestureDetector) processOneFinger(cooked *input.CookedPointerData, id uint32, when int64) []input.CookedEvent {
	idx := cooked.IndexOf(id)
	if idx < 0 {
		return nil
	}
	x, y := cooked.Coords[idx].Get(input.AxisX), cooked.Coords[idx].Get(input.AxisY)
	g.velocity.AddMovement(id, when, x, y)

	prevFingerCount := len(g.fingers)
	prevState := g.state

	if prevFingerCount != 1 || g.fingers[0].id != id {
		g.onNewFingerSet([]gestureFinger{{id: id, startX: x, startY: y, lastX: x, lastY: y}}, when)
	} else {
		g.fingers[0].lastX, g.fingers[0].lastY = x, y
	}

	var out []input.CookedEvent

	if prevState == gestureTap && g.haveTap {
		dx, dy := x-g.tapX, y-g.tapY
		within := absf(dx) <= tapSlop*pointerGestureMovementScale && absf(dy) <= tapSlop*pointerGestureMovementScale
		if within && when-g.tapDownTime <= tapDragIntervalNanos {
			g.state = gestureTapDrag
			g.cursorX, g.cursorY = x, y
			out = append(out, g.emit(input.ActionDown, when))
			return out
		}
	}

	switch g.state {
	case gestureTapDrag:
		g.cursorX, g.cursorY = x, y
		out = append(out, g.emit(input.ActionMove, when))
	default:
		g.state = gestureHover
		g.cursorX, g.cursorY = x, y
		out = append(out, g.emit(input.ActionHoverMove, when))
	}
	return out
}

func (g *GestureDetector) onNewFingerSet(next []gestureFinger, when int64) {
	if len(g.fingers) == 1 && (g.state == gestureHover || g.state == gestureTapDrag) {
		f := g.fingers[0]
		dx, dy := f.lastX-f.startX, f.lastY-f.startY
		movedLittle := absf(dx) <= tapSlop && absf(dy) <= tapSlop
		if movedLittle && when-g.gestureDownTime <= tapIntervalNanos {
			g.state = gestureTap
			g.tapX, g.tapY = f.lastX, f.lastY
			g.tapDownTime = g.gestureDownTime
			g.tapUpTime = when
			g.haveTap = true
		}
	}
	if len(g.fingers) == 0 && len(next) == 1 {
		// A finger just touched down from empty; anchor the tap-down time
		// and position so a subsequent lift within the tap interval/slop
		// can be recognized as a Tap in processNoFingers.
		g.tapDownTime = when
		g.tapX, g.tapY = next[0].startX, next[0].startY
		g.haveTap = false
	}
	g.fingers = next
	g.gestureDownTime = when
}

func (g *GestureDetector) processButtonClickOrDrag(cooked *input.CookedPointerData, ids []uint32, when int64) []input.CookedEvent {
	wasClickOrDrag := g.state == gestureButtonClickOrDrag
	g.state = gestureButtonClickOrDrag

	if len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if idx := cooked.IndexOf(id); idx >= 0 {
			g.velocity.AddMovement(id, when, cooked.Coords[idx].Get(input.AxisX), cooked.Coords[idx].Get(input.AxisY))
		}
	}

	if !g.hasActive || !containsID(ids, g.activeFinger) {
		g.activeFinger = ids[0]
		g.hasActive = true
	} else if len(ids) > 1 {
		activeSpeed, _ := g.velocity.Speed(g.activeFinger)
		for _, id := range ids {
			if id == g.activeFinger {
				continue
			}
			speed, ok := g.velocity.Speed(id)
			if ok && speed > dragMinSwitchSpeed && speed > activeSpeed {
				g.activeFinger = id
				activeSpeed = speed
			}
		}
	}

	idx := cooked.IndexOf(g.activeFinger)
	if idx < 0 {
		return nil
	}
	x, y := cooked.Coords[idx].Get(input.AxisX), cooked.Coords[idx].Get(input.AxisY)
	g.cursorX, g.cursorY = x, y
	if !wasClickOrDrag {
		return []input.CookedEvent{g.emit(input.ActionDown, when)}
	}
	return []input.CookedEvent{g.emit(input.ActionMove, when)}
}

func (g *GestureDetector) processMultiFinger(cooked *input.CookedPointerData, ids []uint32, when int64) []input.CookedEvent {
	prevCount := len(g.fingers)

	if prevCount < 2 {
		g.startPress(cooked, ids, when)
		return []input.CookedEvent{g.emit(input.ActionDown, when)}
	}

	if len(ids) != prevCount {
		if when-g.settleStart <= multitouchSettleIntervalNanos {
			out := g.cancelPrevious(when)
			g.startPress(cooked, ids, when)
			out = append(out, g.emit(input.ActionDown, when))
			return out
		}
		g.resyncFingers(cooked, ids)
	}

	g.updateFingerPositions(cooked, ids, when)

	if g.state == gesturePress {
		if g.tryPromote(when) {
			return []input.CookedEvent{g.emit(input.ActionMove, when)}
		}
		return nil
	}

	return []input.CookedEvent{g.emit(input.ActionMove, when)}
}

func (g *GestureDetector) startPress(cooked *input.CookedPointerData, ids []uint32, when int64) {
	g.state = gesturePress
	g.settleStart = when
	g.gestureDownTime = when
	g.fingers = g.fingers[:0]
	var sumX, sumY float32
	for _, id := range ids {
		idx := cooked.IndexOf(id)
		if idx < 0 {
			continue
		}
		x, y := cooked.Coords[idx].Get(input.AxisX), cooked.Coords[idx].Get(input.AxisY)
		g.fingers = append(g.fingers, gestureFinger{id: id, startX: x, startY: y, lastX: x, lastY: y})
		g.velocity.AddMovement(id, when, x, y)
		sumX += x
		sumY += y
	}
	n := float32(len(g.fingers))
	if n > 0 {
		g.referenceGestureX, g.referenceGestureY = sumX/n, sumY/n
		g.referenceTouchX, g.referenceTouchY = sumX/n, sumY/n
	}
	g.cursorX, g.cursorY = g.referenceGestureX, g.referenceGestureY
}

func (g *GestureDetector) resyncFingers(cooked *input.CookedPointerData, ids []uint32) {
	next := make([]gestureFinger, 0, len(ids))
	for _, id := range ids {
		idx := cooked.IndexOf(id)
		if idx < 0 {
			continue
		}
		x, y := cooked.Coords[idx].Get(input.AxisX), cooked.Coords[idx].Get(input.AxisY)
		if f, ok := g.findFinger(id); ok {
			f.lastX, f.lastY = x, y
			next = append(next, f)
		} else {
			next = append(next, gestureFinger{id: id, startX: x, startY: y, lastX: x, lastY: y})
		}
	}
	g.fingers = next
}

func (g *GestureDetector) findFinger(id uint32) (gestureFinger, bool) {
	for _, f := range g.fingers {
		if f.id == id {
			return f, true
		}
	}
	return gestureFinger{}, false
}

func (g *GestureDetector) updateFingerPositions(cooked *input.CookedPointerData, ids []uint32, when int64) {
	var commonDX, commonDY float32
	haveCommon := false
	for i := range g.fingers {
		f := &g.fingers[i]
		idx := cooked.IndexOf(f.id)
		if idx < 0 {
			continue
		}
		x, y := cooked.Coords[idx].Get(input.AxisX), cooked.Coords[idx].Get(input.AxisY)
		g.velocity.AddMovement(f.id, when, x, y)
		dx, dy := x-f.lastX, y-f.lastY
		f.lastX, f.lastY = x, y
		if !haveCommon {
			commonDX, commonDY = dx, dy
			haveCommon = true
		} else {
			commonDX = sameSignMin(commonDX, dx)
			commonDY = sameSignMin(commonDY, dy)
		}
	}
	if g.state != gesturePress {
		g.referenceGestureX += commonDX * pointerGestureMovementScale
		g.referenceGestureY += commonDY * pointerGestureMovementScale
		g.referenceTouchX += commonDX
		g.referenceTouchY += commonDY
		g.cursorX, g.cursorY = g.referenceGestureX, g.referenceGestureY
	}
}

// tryPromote implements the Press→Swipe/Freeform promotion rule.
func (g *GestureDetector) tryPromote(when int64) bool {
	movedCount := 0
	for _, f := range g.fingers {
		dx, dy := f.lastX-f.startX, f.lastY-f.startY
		if hypot(dx, dy) > multitouchMinDistance {
			movedCount++
		}
	}
	if movedCount < 2 {
		return false
	}

	if len(g.fingers) > 2 {
		g.state = gestureFreeform
		g.assignFreeformIDs()
		return true
	}

	f0, f1 := g.fingers[0], g.fingers[1]
	sep := hypot(f1.lastX-f0.lastX, f1.lastY-f0.lastY)
	if sep > g.tm.surface.pointerGestureMaxSwipeWidth {
		g.state = gestureFreeform
		g.assignFreeformIDs()
		return true
	}

	dx0, dy0 := f0.lastX-f0.startX, f0.lastY-f0.startY
	dx1, dy1 := f1.lastX-f1.startX, f1.lastY-f1.startY
	m0, m1 := hypot(dx0, dy0), hypot(dx1, dy1)
	if m0 == 0 || m1 == 0 {
		return false
	}
	cosine := (dx0*dx1 + dy0*dy1) / (m0 * m1)
	if cosine >= swipeTransitionAngleCosine {
		g.state = gestureSwipe
	} else {
		g.state = gestureFreeform
		g.assignFreeformIDs()
	}
	return true
}

func (g *GestureDetector) assignFreeformIDs() {
	for _, f := range g.fingers {
		if _, ok := g.freeformIDs[f.id]; !ok {
			g.freeformIDs[f.id] = g.nextFreeformID
			g.nextFreeformID++
		}
	}
}

func (g *GestureDetector) cancelPrevious(when int64) []input.CookedEvent {
	out := []input.CookedEvent{g.emit(input.ActionCancel, when)}
	g.fingers = nil
	g.freeformIDs = make(map[uint32]uint32)
	g.velocity.ClearAll()
	return out
}

func (g *GestureDetector) enterQuiet(when int64) {
	g.state = gestureQuiet
	g.quietUntil = when + quietIntervalNanos
	g.fingers = nil
	g.freeformIDs = make(map[uint32]uint32)
}

// emit builds the single gesture-pointer MotionEvent for Press/Swipe modes,
// or one sample per finger when in Freeform, all keyed by the gesture's own
// synthetic pointer id space rather than the underlying touch ids.
func (g *GestureDetector) emit(action input.MotionAction, when int64) input.CookedEvent {
	var samples []input.PointerSample
	if g.state == gestureFreeform {
		for _, f := range g.fingers {
			gid := g.freeformIDs[f.id]
			dx, dy := f.lastX-g.referenceTouchX, f.lastY-g.referenceTouchY
			samples = append(samples, input.PointerSample{
				ID: gid, ToolType: input.ToolFinger,
				X: g.referenceGestureX + dx*g.tm.surface.xMovementScale,
				Y: g.referenceGestureY + dy*g.tm.surface.yMovementScale,
				Pressure: 1,
			})
		}
	} else {
		samples = []input.PointerSample{{ID: 0, ToolType: input.ToolFinger, X: g.cursorX, Y: g.cursorY, Pressure: 1}}
	}
	return input.MotionEvent{
		When: when, DeviceID: g.ctx.DeviceID, Source: g.ctx.Classes,
		Action: int32(action), Pointers: samples, DownTime: g.gestureDownTime,
	}
}

func (g *GestureDetector) Reset(when int64) []input.CookedEvent {
	var out []input.CookedEvent
	if g.state != gestureNeutral && g.state != gestureQuiet {
		out = append(out, g.emit(input.ActionCancel, when))
	}
	g.state = gestureNeutral
	g.fingers = nil
	g.freeformIDs = make(map[uint32]uint32)
	g.hasActive = false
	g.haveTap = false
	g.buttonDown = 0
	g.velocity.ClearAll()
	return out
}

func (g *GestureDetector) TimeoutExpired(when int64) []input.CookedEvent {
	var out []input.CookedEvent
	if g.state == gestureTap && when > g.tapUpTime+tapDragIntervalNanos {
		out = append(out, g.emit(input.ActionUp, when))
		g.state = gestureNeutral
		g.haveTap = false
	}
	if g.state == gestureQuiet && when > g.quietUntil {
		g.state = gestureNeutral
	}
	return out
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sameSignMin(a, b float32) float32 {
	if (a < 0) != (b < 0) {
		return 0
	}
	if absf(a) < absf(b) {
		return a
	}
	return b
}

func containsID(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
