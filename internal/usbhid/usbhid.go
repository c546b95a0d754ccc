// Package usbhid is an alternate RawEventSource (§4.1) for boot-protocol
// USB HID keyboards and mice that never bind a kernel hid-generic driver —
// and so never appear under /dev/input at all — read directly over libusb
// instead. It speaks the USB HID 1.11 boot protocol (an 8-byte keyboard
// report, a 3/4-byte mouse report) rather than evdev, decoding each report
// into the same input.RawEvent shape eventhub.Hub produces, terminated by a
// synthetic SYN_REPORT, so a reader.Device built from one of these devices
// processes them exactly like any other run.
//
// Grounded on aoa/aoa.go's gousb.Context/gousb.Device lifecycle (open by
// VID/PID, SetAutoDetach, wrapped transfer errors) — here adapted from
// AOA's host-to-accessory control OUT transfers to a claimed interface's
// interrupt IN endpoint.
package usbhid

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"

	"github.com/rawinput/inputhub/input"
)

// Protocol identifies which boot-protocol report shape a Source decodes.
// The caller supplies it at Open time since the core has no general USB HID
// report-descriptor parser — only the two fixed boot layouts.
type Protocol int

const (
	ProtocolKeyboard Protocol = iota
	ProtocolMouse
)

const readTimeout = 200 * time.Millisecond

// Source is one opened boot-protocol HID device.
type Source struct {
	ctx      *gousb.Context
	dev      *gousb.Device
	intf     *gousb.Interface
	done     func()
	in       *gousb.InEndpoint
	protocol Protocol

	deviceID int32
	lastMods byte
	lastKeys [6]byte
	lastBtns byte
}

// Open claims the default interface of the first device matching
// vendor/product and finds its interrupt IN endpoint.
func Open(vendor, product gousb.ID, protocol Protocol, deviceID int32) (*Source, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(vendor, product)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open usb device %s:%s: %w", vendor, product, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("no device matching %s:%s", vendor, product)
	}
	dev.SetAutoDetach(true)

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("claim default interface: %w", err)
	}

	in, err := firstInEndpoint(intf)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, err
	}

	return &Source{ctx: ctx, dev: dev, intf: intf, done: done, in: in, protocol: protocol, deviceID: deviceID}, nil
}

// firstInEndpoint picks the interface's interrupt IN endpoint by the USB
// spec's direction bit (0x80) on the endpoint address, rather than any
// particular endpoint number a device might choose.
func firstInEndpoint(intf *gousb.Interface) (*gousb.InEndpoint, error) {
	for _, ep := range intf.Setting.Endpoints {
		if ep.Address&0x80 != 0 {
			in, err := intf.InEndpoint(int(ep.Number))
			if err != nil {
				return nil, fmt.Errorf("open in endpoint %d: %w", ep.Number, err)
			}
			return in, nil
		}
	}
	return nil, fmt.Errorf("no interrupt IN endpoint")
}

// Close releases the USB interface and context.
func (s *Source) Close() {
	s.done()
	s.dev.Close()
	s.ctx.Close()
}

// ReadBatch blocks for up to readTimeout waiting for one boot report and
// decodes it into a raw event run closed by SYN_REPORT. No report within
// the timeout returns a nil batch, matching poll_once's zero-count timeout
// case (§4.1).
func (s *Source) ReadBatch(when int64) ([]input.RawEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	report := make([]byte, s.in.Desc.MaxPacketSize)
	n, err := s.in.ReadContext(ctx, report)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	report = report[:n]

	switch s.protocol {
	case ProtocolKeyboard:
		return s.decodeKeyboard(report, when), nil
	case ProtocolMouse:
		return s.decodeMouse(report, when), nil
	default:
		return nil, nil
	}
}

// bootModifierKeys maps the keyboard boot report's modifier bitmask (byte 0)
// to the Linux keycodes this core actually defines (input/evcodes.go keeps
// only the subset the mappers branch on, not the full USB HID usage table).
var bootModifierKeys = [8]int32{
	input.KeyLeftCtrl, input.KeyLeftShift, input.KeyLeftAlt, input.KeyLeftMeta,
	input.KeyRightCtrl, input.KeyRightShift, input.KeyRightAlt, input.KeyRightMeta,
}

// bootUsageKeys maps a handful of USB HID keyboard usage IDs this core has a
// keycode for. Anything else in the 6-key array is silently ignored rather
// than invented — the same scope cut input/evcodes.go documents for itself.
var bootUsageKeys = map[byte]int32{
	0x04: input.KeyA,
	0x1D: input.KeyZ,
	0x1E: input.Key1,
	0x14: input.KeyQ,
	0x4F: input.KeyRight,
	0x50: input.KeyLeft,
	0x51: input.KeyDown,
	0x52: input.KeyUp,
	0x39: input.KeyCapsLock,
	0x53: input.KeyNumLock,
	0x47: input.KeyScrollLock,
}

func (s *Source) decodeKeyboard(report []byte, when int64) []input.RawEvent {
	if len(report) < 8 {
		return nil
	}
	var out []input.RawEvent
	mods := report[0]
	var keys [6]byte
	copy(keys[:], report[2:8])

	for bit, code := range bootModifierKeys {
		now := mods&(1<<uint(bit)) != 0
		was := s.lastMods&(1<<uint(bit)) != 0
		if now != was {
			out = append(out, keyEvent(s.deviceID, code, now, when))
		}
	}

	wasDown := usageSet(s.lastKeys)
	nowDown := usageSet(keys)
	for usage := range wasDown {
		if !nowDown[usage] {
			if code, ok := bootUsageKeys[usage]; ok {
				out = append(out, keyEvent(s.deviceID, code, false, when))
			}
		}
	}
	for usage := range nowDown {
		if !wasDown[usage] {
			if code, ok := bootUsageKeys[usage]; ok {
				out = append(out, keyEvent(s.deviceID, code, true, when))
			}
		}
	}

	s.lastMods, s.lastKeys = mods, keys
	if len(out) == 0 {
		return nil
	}
	return append(out, syncReport(s.deviceID, when))
}

func usageSet(keys [6]byte) map[byte]bool {
	m := make(map[byte]bool, 6)
	for _, k := range keys {
		if k != 0 {
			m[k] = true
		}
	}
	return m
}

func keyEvent(deviceID int32, code int32, down bool, when int64) input.RawEvent {
	v := int32(0)
	if down {
		v = 1
	}
	return input.RawEvent{When: when, DeviceID: deviceID, Kind: input.RawKey, Code: code, Value: v}
}

func syncReport(deviceID int32, when int64) input.RawEvent {
	return input.RawEvent{When: when, DeviceID: deviceID, Kind: input.RawSync, Code: input.SyncReport}
}

func (s *Source) decodeMouse(report []byte, when int64) []input.RawEvent {
	if len(report) < 3 {
		return nil
	}
	var out []input.RawEvent
	btns := report[0]
	dx, dy := int8(report[1]), int8(report[2])
	var wheel int8
	if len(report) >= 4 {
		wheel = int8(report[3])
	}

	buttons := []int32{input.BtnLeft, input.BtnRight, input.BtnMiddle}
	for bit, code := range buttons {
		now := btns&(1<<uint(bit)) != 0
		was := s.lastBtns&(1<<uint(bit)) != 0
		if now != was {
			out = append(out, keyEvent(s.deviceID, code, now, when))
		}
	}
	s.lastBtns = btns

	if dx != 0 {
		out = append(out, input.RawEvent{When: when, DeviceID: s.deviceID, Kind: input.RawRel, Code: input.RelX, Value: int32(dx)})
	}
	if dy != 0 {
		out = append(out, input.RawEvent{When: when, DeviceID: s.deviceID, Kind: input.RawRel, Code: input.RelY, Value: int32(dy)})
	}
	if wheel != 0 {
		out = append(out, input.RawEvent{When: when, DeviceID: s.deviceID, Kind: input.RawRel, Code: input.RelWheel, Value: int32(wheel)})
	}

	if len(out) == 0 {
		return nil
	}
	return append(out, syncReport(s.deviceID, when))
}
