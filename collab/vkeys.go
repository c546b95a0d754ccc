package collab

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rawinput/inputhub/input"
)

// LoadVirtualKeys parses a virtualkeys file (§6): each line
// `0x01:<scancode>:<center_x>:<center_y>:<width>:<height>`, coordinates in
// display pixels at the device's natural orientation. The "0x01" field is
// the kernel's key-event-type tag and is otherwise unused here.
//
// Missing or unparsable files are VirtualKeyFileError (§7): treated as "no
// virtual keys" rather than failing the device, so the error is logged by
// the caller and an empty slice returned rather than surfaced as a hard
// failure.
func LoadVirtualKeys(path string, layout input.KeyLayout) ([]input.VirtualKey, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, input.NewError(input.VirtualKeyFileError, -1, path, err)
	}
	defer f.Close()

	var out []input.VirtualKey
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		vk, err := parseVirtualKeyLine(line, layout)
		if err != nil {
			return nil, input.NewError(input.VirtualKeyFileError, -1, path,
				fmt.Errorf("line %d: %w", lineNo, err))
		}
		out = append(out, vk)
	}
	if err := scanner.Err(); err != nil {
		return nil, input.NewError(input.VirtualKeyFileError, -1, path, err)
	}
	return out, nil
}

// parseVirtualKeyLine returns a VirtualKey whose HitLeft/HitTop/HitRight/
// HitBottom fields temporarily stash (centerX, centerY, width, height) in
// display space; TouchMapper.rebuildVirtualKeys converts them to a raw-space
// rectangle once surface geometry is known (§4.5.1).
func parseVirtualKeyLine(line string, layout input.KeyLayout) (input.VirtualKey, error) {
	fields := strings.Split(line, ":")
	if len(fields) != 6 {
		return input.VirtualKey{}, fmt.Errorf("expected 6 colon-separated fields, got %d", len(fields))
	}
	ints := make([]int64, 5)
	for i, f := range fields[1:] {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return input.VirtualKey{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		ints[i] = v
	}
	scanCode := int32(ints[0])
	var keyCode int32 = scanCode
	var flags uint32
	if layout != nil {
		if kc, fl, ok := layout.MapKey(int(scanCode)); ok {
			keyCode, flags = kc, fl
		}
	}
	return input.VirtualKey{
		ScanCode:  scanCode,
		KeyCode:   keyCode,
		Flags:     flags,
		HitLeft:   int32(ints[1]),
		HitTop:    int32(ints[2]),
		HitRight:  int32(ints[3]),
		HitBottom: int32(ints[4]),
	}, nil
}
