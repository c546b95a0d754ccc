package input

// Calibration choices for the touch mapper's coordinate pipeline (§4.5.1).
// *.calibration properties in a device's PropertyMap select a concrete
// choice. A Default value is not resolved against the raw axes the device
// reports: the touch mapper's cooking functions handle it in their fallback
// branch (for example, Default pressure is 1 while touching, 0 otherwise).

type SizeCalibration int

const (
	SizeCalibrationDefault SizeCalibration = iota
	SizeCalibrationNone
	SizeCalibrationGeometric
	SizeCalibrationDiameter
	SizeCalibrationBox
	SizeCalibrationArea
)

type PressureCalibration int

const (
	PressureCalibrationDefault PressureCalibration = iota
	PressureCalibrationNone
	PressureCalibrationPhysical
	PressureCalibrationAmplitude
)

type OrientationCalibration int

const (
	OrientationCalibrationDefault OrientationCalibration = iota
	OrientationCalibrationNone
	OrientationCalibrationInterpolated
	OrientationCalibrationVector
)

type DistanceCalibration int

const (
	DistanceCalibrationDefault DistanceCalibration = iota
	DistanceCalibrationNone
	DistanceCalibrationScaled
)

type CoverageCalibration int

const (
	CoverageCalibrationDefault CoverageCalibration = iota
	CoverageCalibrationNone
	CoverageCalibrationBox
)

// Calibration bundles every axis-model choice plus the scale/bias constants
// a property file may supply alongside them. Zero value is "everything
// default".
type Calibration struct {
	Size        SizeCalibration
	SizeIsSummed bool
	SizeScale   float64
	SizeBias    float64

	Pressure      PressureCalibration
	PressureScale float64

	Orientation OrientationCalibration

	Distance      DistanceCalibration
	DistanceScale float64

	Coverage CoverageCalibration

	// GeometricScale/GeometricBias are not set by LoadCalibration and not
	// applied by the touch mapper, whose Geometric size model uses its own
	// surface-derived scale.
	GeometricScale float64
	GeometricBias  float64
}

// LoadCalibration reads touch.size.*, touch.pressure.*, touch.orientation.*
// and touch.distance.* properties from props, leaving any property that is
// absent at its Default zero value.
func LoadCalibration(props PropertyMap) Calibration {
	var c Calibration
	if s, ok := props.GetString("touch.size.calibration"); ok {
		c.Size = parseSizeCalibration(s)
	}
	if v, ok := props.GetFloat("touch.size.scale"); ok {
		c.SizeScale = v
	}
	if v, ok := props.GetFloat("touch.size.bias"); ok {
		c.SizeBias = v
	}
	if v, ok := props.GetBool("touch.size.isSummed"); ok {
		c.SizeIsSummed = v
	}
	if s, ok := props.GetString("touch.pressure.calibration"); ok {
		c.Pressure = parsePressureCalibration(s)
	}
	if v, ok := props.GetFloat("touch.pressure.scale"); ok {
		c.PressureScale = v
	}
	if s, ok := props.GetString("touch.orientation.calibration"); ok {
		c.Orientation = parseOrientationCalibration(s)
	}
	if s, ok := props.GetString("touch.distance.calibration"); ok {
		c.Distance = parseDistanceCalibration(s)
	}
	if v, ok := props.GetFloat("touch.distance.scale"); ok {
		c.DistanceScale = v
	}
	if s, ok := props.GetString("touch.coverage.calibration"); ok {
		c.Coverage = parseCoverageCalibration(s)
	}
	return c
}

func parseSizeCalibration(s string) SizeCalibration {
	switch s {
	case "none":
		return SizeCalibrationNone
	case "geometric":
		return SizeCalibrationGeometric
	case "diameter":
		return SizeCalibrationDiameter
	case "box":
		return SizeCalibrationBox
	case "area":
		return SizeCalibrationArea
	default:
		return SizeCalibrationDefault
	}
}

func parsePressureCalibration(s string) PressureCalibration {
	switch s {
	case "none":
		return PressureCalibrationNone
	case "physical":
		return PressureCalibrationPhysical
	case "amplitude":
		return PressureCalibrationAmplitude
	default:
		return PressureCalibrationDefault
	}
}

func parseOrientationCalibration(s string) OrientationCalibration {
	switch s {
	case "none":
		return OrientationCalibrationNone
	case "interpolated":
		return OrientationCalibrationInterpolated
	case "vector":
		return OrientationCalibrationVector
	default:
		return OrientationCalibrationDefault
	}
}

func parseDistanceCalibration(s string) DistanceCalibration {
	switch s {
	case "none":
		return DistanceCalibrationNone
	case "scaled":
		return DistanceCalibrationScaled
	default:
		return DistanceCalibrationDefault
	}
}

func parseCoverageCalibration(s string) CoverageCalibration {
	switch s {
	case "none":
		return CoverageCalibrationNone
	case "box":
		return CoverageCalibrationBox
	default:
		return CoverageCalibrationDefault
	}
}
