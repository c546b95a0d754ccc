package input

// RotateCoordinates maps a raw-space point (x, y) in a surface of the given
// width/height into display space under the requested rotation, per §9
// Design Note. width/height are the raw surface's dimensions before
// rotation is applied. No mapper calls it: the touch mapper applies its own
// rotateXY table, which also offsets by the raw minimum and scales to the
// display.
func RotateCoordinates(x, y, width, height float32, rot Rotation) (rx, ry float32) {
	switch rot {
	case Rotation0:
		return x, y
	case Rotation90:
		return y, width - x
	case Rotation180:
		return width - x, height - y
	case Rotation270:
		return height - y, x
	default:
		return x, y
	}
}

// RotatedSize returns the surface's (width, height) as seen after rotation,
// swapping the two for the quarter-turn rotations.
func RotatedSize(width, height float32, rot Rotation) (rw, rh float32) {
	switch rot {
	case Rotation90, Rotation270:
		return height, width
	default:
		return width, height
	}
}
