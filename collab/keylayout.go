package collab

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rawinput/inputhub/input"
)

// FileKeyLayout parses a .kl-style text file (§6): one `key <scancode>
// <KEYCODE> [flags...]` or `axis <code> <AXIS> [flat <n>] [fuzz <n>]
// [split <value> <HIGH_AXIS>]` line per mapping, `#` starts a comment. This
// line format has no analogue in any pack dependency's config support
// (viper's formats are all structured key/value, not this grammar), so it
// is parsed directly with bufio/strings, same as the daemon's own simple
// on-disk formats.
type FileKeyLayout struct {
	keys map[int]keyEntry
	axes map[int]input.AxisMapping
}

type keyEntry struct {
	keyCode int32
	flags   uint32
}

var keycodeNames = map[string]int32{
	"HOME": input.KeycodeHome, "BACK": input.KeycodeBack,
	"DPAD_UP": input.KeycodeDpadUp, "DPAD_DOWN": input.KeycodeDpadDown,
	"DPAD_LEFT": input.KeycodeDpadLeft, "DPAD_RIGHT": input.KeycodeDpadRight,
	"VOLUME_UP": input.KeycodeVolumeUp, "VOLUME_DOWN": input.KeycodeVolumeDown,
	"FORWARD": input.KeycodeForward,
}

var axisNames = map[string]input.MotionAxis{
	"X": input.AxisX, "Y": input.AxisY, "PRESSURE": input.AxisPressure,
	"SIZE": input.AxisSize, "DISTANCE": input.AxisDistance,
	"TILT_X": input.AxisTiltX, "TILT_Y": input.AxisTiltY,
}

var flagNames = map[string]uint32{
	"WAKE": LayoutFlagWake,
}

// LayoutFlagWake marks a key as one that should wake the device policy
// layer, mirrored from the `WAKE` flag token recognized in .kl files.
const LayoutFlagWake = 1 << 0

// LoadKeyLayout parses path. A missing file yields an empty layout, not an
// error — KeyLayout.MapKey/MapAxis simply report ok=false for everything,
// which is the documented degrade for ConfigurationError (§7).
func LoadKeyLayout(path string) (*FileKeyLayout, error) {
	l := &FileKeyLayout{keys: make(map[int]keyEntry), axes: make(map[int]input.AxisMapping)}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, input.NewError(input.ConfigurationError, -1, path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "key":
			if err := l.parseKeyLine(fields); err != nil {
				return l, input.NewError(input.ConfigurationError, -1, path,
					fmt.Errorf("line %d: %w", lineNo, err))
			}
		case "axis":
			if err := l.parseAxisLine(fields); err != nil {
				return l, input.NewError(input.ConfigurationError, -1, path,
					fmt.Errorf("line %d: %w", lineNo, err))
			}
		}
	}
	return l, scanner.Err()
}

func (l *FileKeyLayout) parseKeyLine(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("key line needs at least a scancode and keycode")
	}
	scanCode, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("bad scancode %q: %w", fields[1], err)
	}
	keyCode, ok := keycodeNames[fields[2]]
	if !ok {
		return fmt.Errorf("unknown keycode %q", fields[2])
	}
	var flags uint32
	for _, tok := range fields[3:] {
		if f, ok := flagNames[tok]; ok {
			flags |= f
		}
	}
	l.keys[scanCode] = keyEntry{keyCode: keyCode, flags: flags}
	return nil
}

func (l *FileKeyLayout) parseAxisLine(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("axis line needs at least a code and axis name")
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("bad abs code %q: %w", fields[1], err)
	}
	axis, ok := axisNames[fields[2]]
	if !ok {
		return fmt.Errorf("unknown axis %q", fields[2])
	}
	mapping := input.AxisMapping{Axis: axis}
	for i := 3; i+1 < len(fields); i += 2 {
		switch fields[i] {
		case "flat":
			if v, err := strconv.Atoi(fields[i+1]); err == nil {
				mapping.Flat = int32(v)
			}
		case "fuzz":
			if v, err := strconv.Atoi(fields[i+1]); err == nil {
				mapping.Fuzz = int32(v)
			}
		case "split":
			if v, err := strconv.Atoi(fields[i+1]); err == nil {
				mapping.SplitValue = int32(v)
			}
			if i+2 < len(fields) {
				if high, ok := axisNames[fields[i+2]]; ok {
					mapping.HighAxis = high
					mapping.HasHigh = true
				}
			}
		}
	}
	l.axes[code] = mapping
	return nil
}

func (l *FileKeyLayout) MapKey(scanCode int) (int32, uint32, bool) {
	e, ok := l.keys[scanCode]
	return e.keyCode, e.flags, ok
}

func (l *FileKeyLayout) MapAxis(absCode int) (input.AxisMapping, bool) {
	m, ok := l.axes[absCode]
	return m, ok
}

var _ input.KeyLayout = (*FileKeyLayout)(nil)
