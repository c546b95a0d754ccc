package mapper

import (
	"math"

	"github.com/rawinput/inputhub/input"
)

// TouchDeviceType is the touch.deviceType configuration property (§6):
// whether the surface behaves as a screen overlay, a touchpad (dispatched
// like a screen by this mapper), or a pointer device whose frames go to the
// gesture detector and which obtains a pointer controller from the policy.
type TouchDeviceType int

const (
	TouchDeviceDefault TouchDeviceType = iota
	TouchDeviceScreen
	TouchDevicePad
	TouchDevicePointer
)

// GestureMode chooses how a Pointer-type touch device presents multi-finger
// gestures: as a managed system cursor, or as raw finger "spots".
type GestureMode int

const (
	GestureModeDefault GestureMode = iota
	GestureModePointer
	GestureModeSpots
)

// surfaceConfig holds everything recomputed by configureSurface on a
// rotation, display-size, or raw-axis-range change (§4.5.1).
type surfaceConfig struct {
	rawXMin, rawXMax, rawYMin, rawYMax int32
	rawToolMajorMax                    int32

	displayWidth, displayHeight int32
	rotation                    input.Rotation

	xScale, yScale  float32
	geometricScale  float32
	toolSizeLinearScale float32

	orientedRawWidth, orientedRawHeight float32

	swipeMaxWidthRatio       float32
	pointerGestureMaxSwipeWidth float32

	xMovementScale, yMovementScale float32

	configured bool
}

const defaultSwipeMaxWidthRatio = 0.25

func (m *TouchMapper) configureSurface() {
	xInfo := m.ctx.Abs(m.xAbsCode)
	yInfo := m.ctx.Abs(m.yAbsCode)
	if !xInfo.Valid || !yInfo.Valid {
		return
	}

	sc := &m.surface
	sc.rawXMin, sc.rawXMax = xInfo.Min, xInfo.Max
	sc.rawYMin, sc.rawYMax = yInfo.Min, yInfo.Max

	toolMajorInfo := m.ctx.Abs(input.AbsMtTouchMajor)
	if !toolMajorInfo.Valid {
		toolMajorInfo = m.ctx.Abs(input.AbsToolWidth)
	}
	if toolMajorInfo.Valid && toolMajorInfo.Max > 0 {
		sc.rawToolMajorMax = toolMajorInfo.Max
	}

	rot := input.Rotation0
	if m.orientationAware && m.ctx.Policy != nil {
		if info, ok := m.ctx.Policy.GetDisplayInfo(m.ctx.DeviceID); ok {
			rot = info.Orientation
			sc.displayWidth, sc.displayHeight = info.Width, info.Height
		}
	}
	if sc.displayWidth == 0 {
		sc.displayWidth = sc.rawXMax - sc.rawXMin + 1
	}
	if sc.displayHeight == 0 {
		sc.displayHeight = sc.rawYMax - sc.rawYMin + 1
	}
	sc.rotation = rot

	rawW := float32(sc.rawXMax - sc.rawXMin + 1)
	rawH := float32(sc.rawYMax - sc.rawYMin + 1)
	orientedRawW, orientedRawH := input.RotatedSize(rawW, rawH, rot)
	sc.orientedRawWidth, sc.orientedRawHeight = orientedRawW, orientedRawH

	dispW, dispH := float32(sc.displayWidth), float32(sc.displayHeight)
	sc.xScale = dispW / orientedRawW
	sc.yScale = dispH / orientedRawH
	sc.geometricScale = (sc.xScale + sc.yScale) / 2

	if sc.rawToolMajorMax > 0 {
		minDisp := dispW
		if dispH < minDisp {
			minDisp = dispH
		}
		sc.toolSizeLinearScale = minDisp / float32(sc.rawToolMajorMax)
	}

	if sc.swipeMaxWidthRatio == 0 {
		sc.swipeMaxWidthRatio = defaultSwipeMaxWidthRatio
	}
	sc.pointerGestureMaxSwipeWidth = sc.swipeMaxWidthRatio * float32(math.Hypot(float64(rawW), float64(rawH)))

	sc.xMovementScale = sc.xScale
	sc.yMovementScale = sc.yScale

	sc.configured = true

	m.rebuildVirtualKeys()
}

// rotateXY applies the §4.5.2 surface rotation table to one raw pointer
// position, returning display-space coordinates plus the orientation
// adjustment to add to a raw orientation value already in radians.
func (m *TouchMapper) rotateXY(rawX, rawY int32) (x, y float32, orientationAdjust float32) {
	sc := &m.surface
	switch sc.rotation {
	case input.Rotation0:
		return float32(rawX-sc.rawXMin) * sc.xScale, float32(rawY-sc.rawYMin) * sc.yScale, 0
	case input.Rotation90:
		return float32(rawY-sc.rawYMin) * sc.yScale, float32(sc.rawXMax-rawX) * sc.xScale, -math.Pi / 2
	case input.Rotation180:
		return float32(sc.rawXMax-rawX) * sc.xScale, float32(sc.rawYMax-rawY) * sc.yScale, 0
	case input.Rotation270:
		return float32(sc.rawYMax-rawY) * sc.yScale, float32(rawX-sc.rawXMin) * sc.xScale, math.Pi / 2
	default:
		return float32(rawX-sc.rawXMin) * sc.xScale, float32(rawY-sc.rawYMin) * sc.yScale, 0
	}
}

// rebuildVirtualKeys converts each configured virtual-key definition's
// display-space hit box into raw-space, per §4.5.1. Definitions arrive
// already as input.VirtualKey from the collaborator loader (ctx.VirtualKeys)
// with display-space center/size stashed in HitLeft/HitTop/HitRight/
// HitBottom as (centerX, centerY, width, height); the converted keys go
// into m.virtualKeysRaw and ctx.VirtualKeys is left unchanged.
func (m *TouchMapper) rebuildVirtualKeys() {
	if !m.surface.configured {
		return
	}
	out := make([]input.VirtualKey, 0, len(m.ctx.VirtualKeys))
	for _, vk := range m.ctx.VirtualKeys {
		centerX, centerY, w, h := vk.HitLeft, vk.HitTop, vk.HitRight, vk.HitBottom
		halfWRaw := float32(w) / 2 / m.surface.xScale
		halfHRaw := float32(h) / 2 / m.surface.yScale
		centerXRaw := float32(centerX)/m.surface.xScale + float32(m.surface.rawXMin)
		centerYRaw := float32(centerY)/m.surface.yScale + float32(m.surface.rawYMin)
		out = append(out, input.VirtualKey{
			ScanCode:  vk.ScanCode,
			KeyCode:   vk.KeyCode,
			Flags:     vk.Flags,
			HitLeft:   int32(centerXRaw - halfWRaw),
			HitRight:  int32(centerXRaw + halfWRaw),
			HitTop:    int32(centerYRaw - halfHRaw),
			HitBottom: int32(centerYRaw + halfHRaw),
		})
	}
	m.virtualKeysRaw = out
}

func (m *TouchMapper) insideDisplaySurface(rawX, rawY int32) bool {
	sc := &m.surface
	return rawX >= sc.rawXMin && rawX <= sc.rawXMax && rawY >= sc.rawYMin && rawY <= sc.rawYMax
}

func (m *TouchMapper) findVirtualKey(rawX, rawY int32) (input.VirtualKey, bool) {
	for _, vk := range m.virtualKeysRaw {
		if vk.Contains(rawX, rawY) {
			return vk, true
		}
	}
	return input.VirtualKey{}, false
}
