package mapper

import (
	"math"

	"github.com/rawinput/inputhub/input"
)

type vkState int

const (
	vkIdle vkState = iota
	vkDown
)

const virtualKeyQuietTimeNanos = int64(100 * 1e6)

// TouchMapper holds everything shared by the single-touch and multi-touch
// decoders (§4.5): calibration, surface configuration, the virtual-key
// discrimination state machine, pointer cooking, dispatch, the hover model,
// and — when the device is configured as a touchpad-as-pointer — the
// pointer-gesture detector. SingleTouchMapper and MultiTouchMapper each
// embed one and differ only in how they decode a sync-delimited raw event
// run into a RawPointerData frame.
type TouchMapper struct {
	ctx *Context

	deviceType  TouchDeviceType
	gestureMode GestureMode
	orientationAware bool

	calibration input.Calibration
	surface     surfaceConfig
	virtualKeysRaw []input.VirtualKey

	xAbsCode, yAbsCode int

	lastRaw    input.RawPointerData
	lastCooked input.CookedPointerData

	vk          vkState
	vkCurrent   input.VirtualKey
	vkDownTime  int64
	disableVKUntil int64
	suppressedStroke bool

	strokeDownTime int64

	controller input.PointerController
	gesture    *GestureDetector
}

func newTouchMapper(ctx *Context, xAbsCode, yAbsCode int) *TouchMapper {
	m := &TouchMapper{ctx: ctx, xAbsCode: xAbsCode, yAbsCode: yAbsCode}
	m.lastRaw.Clear()
	m.lastCooked.Clear()

	m.deviceType = parseTouchDeviceType(ctx.Properties)
	m.gestureMode = parseGestureMode(ctx.Properties)
	m.orientationAware, _ = getBoolProp(ctx.Properties, "touch.orientationAware")
	m.calibration = input.LoadCalibration(ctx.Properties)

	if m.deviceType == TouchDevicePointer {
		if ctx.Policy != nil {
			m.controller = ctx.Policy.ObtainPointerController(ctx.DeviceID)
		}
		m.gesture = NewGestureDetector(ctx, m)
	}

	m.configureSurface()
	return m
}

func parseTouchDeviceType(props input.PropertyMap) TouchDeviceType {
	if props == nil {
		return TouchDeviceDefault
	}
	s, ok := props.GetString("touch.deviceType")
	if !ok {
		return TouchDeviceDefault
	}
	switch s {
	case "touchScreen":
		return TouchDeviceScreen
	case "touchPad":
		return TouchDevicePad
	case "pointer":
		return TouchDevicePointer
	default:
		return TouchDeviceDefault
	}
}

func parseGestureMode(props input.PropertyMap) GestureMode {
	if props == nil {
		return GestureModeDefault
	}
	s, ok := props.GetString("touch.gestureMode")
	if !ok {
		return GestureModeDefault
	}
	switch s {
	case "pointer":
		return GestureModePointer
	case "spots":
		return GestureModeSpots
	default:
		return GestureModeDefault
	}
}

// cookFrame runs the §4.5.2 coordinate pipeline over every pointer in raw,
// producing display-space cooked data. Pointer ids are assumed already
// assigned by the caller's decoder (singletouch.go / multitouch.go).
func (m *TouchMapper) cookFrame(raw *input.RawPointerData) input.CookedPointerData {
	var cooked input.CookedPointerData
	cooked.Clear()
	cooked.PointerCount = raw.PointerCount

	for i := 0; i < raw.PointerCount; i++ {
		axes := raw.Pointers[i]
		coords := m.cookPointer(axes, raw.PointerCount)
		cooked.Coords[i] = coords
		cooked.Properties[i] = input.PointerProperties{ID: axes.ID, ToolType: axes.ToolType}
		hovering := raw.Hovering.Has(axes.ID)
		cooked.MarkID(axes.ID, i, hovering)
	}
	return cooked
}

func (m *TouchMapper) cookPointer(axes input.RawPointerAxes, pointerCount int) input.PointerCoords {
	var c input.PointerCoords
	sc := &m.surface

	toolMajor, toolMinor := m.cookToolSize(axes, pointerCount)
	pressure := m.cookPressure(axes)
	touchMajor, touchMinor := m.cookTouchSize(toolMajor, toolMinor, pressure)
	orientation := m.cookOrientation(axes, touchMajor, touchMinor, toolMajor, toolMinor)
	distance := m.cookDistance(axes)

	x, y, rotAdjust := m.rotateXY(axes.X, axes.Y)
	orientation += rotAdjust

	c.Set(input.AxisX, x)
	c.Set(input.AxisY, y)
	c.Set(input.AxisPressure, pressure)
	c.Set(input.AxisTouchMajor, touchMajor)
	c.Set(input.AxisTouchMinor, touchMinor)
	c.Set(input.AxisToolMajor, toolMajor*sc.geometricScale)
	c.Set(input.AxisToolMinor, toolMinor*sc.geometricScale)
	c.Set(input.AxisOrientation, orientation)
	c.Set(input.AxisDistance, distance)
	c.Set(input.AxisSize, m.cookSize(axes))
	return c
}

func (m *TouchMapper) cookToolSize(axes input.RawPointerAxes, pointerCount int) (major, minor float32) {
	sc := &m.surface
	rawMajor, rawMinor := float32(axes.ToolMajor), float32(axes.ToolMinor)
	if rawMinor == 0 {
		rawMinor = rawMajor
	}
	switch m.calibration.Size {
	case input.SizeCalibrationGeometric:
		major, minor = rawMajor*sc.geometricScale, rawMinor*sc.geometricScale
	case input.SizeCalibrationDiameter, input.SizeCalibrationBox:
		scale := m.calibration.SizeScale
		if scale == 0 {
			scale = float64(sc.toolSizeLinearScale)
		}
		major = float32(float64(rawMajor)*scale + m.calibration.SizeBias)
		minor = float32(float64(rawMinor)*scale + m.calibration.SizeBias)
	case input.SizeCalibrationArea:
		scale := m.calibration.SizeScale
		if scale == 0 {
			scale = 1
		}
		linScale := float64(sc.toolSizeLinearScale)
		major = float32(math.Sqrt(float64(rawMajor)*scale+m.calibration.SizeBias)*linScale + m.calibration.SizeBias)
		minor = major
	default:
		major, minor = rawMajor, rawMinor
	}
	if m.calibration.SizeIsSummed && pointerCount > 0 {
		major /= float32(pointerCount)
		minor /= float32(pointerCount)
	}
	return major, minor
}

func (m *TouchMapper) cookPressure(axes input.RawPointerAxes) float32 {
	switch m.calibration.Pressure {
	case input.PressureCalibrationPhysical, input.PressureCalibrationAmplitude:
		scale := m.calibration.PressureScale
		if scale == 0 {
			scale = 1
		}
		return float32(float64(axes.Pressure) * scale)
	default:
		if isDownAxes(axes) {
			return 1
		}
		return 0
	}
}

func isDownAxes(axes input.RawPointerAxes) bool { return !axes.IsHovering }

func (m *TouchMapper) cookTouchSize(toolMajor, toolMinor, pressure float32) (major, minor float32) {
	switch m.calibration.Coverage {
	case input.CoverageCalibrationBox:
		return toolMajor, toolMinor
	default:
		major, minor = toolMajor*pressure, toolMinor*pressure
	}
	if major > toolMajor {
		major = toolMajor
	}
	if minor > toolMinor {
		minor = toolMinor
	}
	return major, minor
}

func (m *TouchMapper) cookOrientation(axes input.RawPointerAxes, touchMajor, touchMinor, toolMajor, toolMinor float32) float32 {
	switch m.calibration.Orientation {
	case input.OrientationCalibrationInterpolated:
		info := m.ctx.Abs(input.AbsMtOrientation)
		if !info.Valid || info.Max == 0 {
			return 0
		}
		return float32(axes.Orientation) * (math.Pi / 2) / float32(info.Max)
	case input.OrientationCalibrationVector:
		c := int8(axes.Orientation & 0xff)
		wide := int8((axes.Orientation >> 8) & 0xff)
		angle := math.Atan2(float64(c), float64(wide))
		return float32(angle)
	default:
		return 0
	}
}

func (m *TouchMapper) cookDistance(axes input.RawPointerAxes) float32 {
	if m.calibration.Distance != input.DistanceCalibrationScaled {
		return 0
	}
	scale := m.calibration.DistanceScale
	if scale == 0 {
		scale = 1
	}
	return float32(float64(axes.Distance) * scale)
}

func (m *TouchMapper) cookSize(axes input.RawPointerAxes) float32 {
	info := m.ctx.Abs(input.AbsMtTouchMajor)
	if !info.Valid || info.Max == 0 {
		return 0
	}
	avg := (float32(axes.TouchMajor) + float32(axes.TouchMinor)) / 2
	return avg / float32(info.Max)
}
