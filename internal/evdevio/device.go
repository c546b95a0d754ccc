package evdevio

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/rawinput/inputhub/input"
)

// kernelID mirrors struct input_id.
type kernelID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// kernelAbsInfo mirrors struct input_absinfo.
type kernelAbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Device is one open /dev/input/eventN node plus its probed capabilities.
type Device struct {
	file *os.File
	Path string
}

// Open opens path for read-write access; read-write is required for
// SetLED, which writes EV_LED events to the node.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Device{file: f, Path: path}, nil
}

func (d *Device) Close() error { return d.file.Close() }

func (d *Device) Fd() uintptr { return d.file.Fd() }

// Grab requests (or releases) exclusive access to the device, mirroring
// EVIOCGRAB(1)/EVIOCGRAB(0).
func (d *Device) Grab(exclusive bool) error {
	v := int32(0)
	if exclusive {
		v = 1
	}
	return ioctl(d.Fd(), eviocgrab, unsafe.Pointer(&v))
}

// Identify reads the device's name, identity, physical location and unique
// id via EVIOCGNAME/EVIOCGID/EVIOCGPHYS/EVIOCGUNIQ. Phys and Uniq are often
// absent; errors reading them are not fatal.
func (d *Device) Identify() (input.Identifier, error) {
	name, err := ioctlString(d.Fd(), eviocgname0, 256)
	if err != nil {
		return input.Identifier{}, input.NewError(input.IoFailure, -1, d.Path, err)
	}
	var id kernelID
	if err := ioctl(d.Fd(), eviocgid, unsafe.Pointer(&id)); err != nil {
		return input.Identifier{}, input.NewError(input.IoFailure, -1, d.Path, err)
	}
	phys, _ := ioctlString(d.Fd(), eviocgphys0, 256)
	uniq, _ := ioctlString(d.Fd(), eviocguniq0, 256)
	return input.Identifier{
		Name:     name,
		Bus:      input.BusType(id.BusType),
		Vendor:   id.Vendor,
		Product:  id.Product,
		Version:  id.Version,
		Location: phys,
		UniqueID: uniq,
	}, nil
}

// Capabilities probes the EV_KEY/EV_ABS/EV_REL/EV_SW/EV_LED/INPUT_PROP
// bitmasks via EVIOCGBIT/EVIOCGPROP.
func (d *Device) Capabilities(bus input.BusType, internal bool) (input.Capabilities, error) {
	caps := input.Capabilities{
		Key:      input.NewBitmask(input.KeyMax),
		Abs:      input.NewBitmask(input.AbsMax),
		Rel:      input.NewBitmask(input.RelMax),
		Sw:       input.NewBitmask(input.SwMax),
		Led:      input.NewBitmask(input.LedMax),
		Prop:     input.NewBitmask(input.InputPropSemiMT),
		Bus:      bus,
		Internal: internal,
	}
	probes := []struct {
		typ int
		bm  *input.Bitmask
	}{
		{input.EVKey, &caps.Key},
		{input.EVAbs, &caps.Abs},
		{input.EVRel, &caps.Rel},
		{input.EVSw, &caps.Sw},
		{input.EVLed, &caps.Led},
	}
	for _, p := range probes {
		if err := d.probeBits(p.typ, p.bm); err != nil {
			return caps, input.NewError(input.IoFailure, -1, d.Path, err)
		}
	}
	return caps, nil
}

func (d *Device) probeBits(evType int, bm *input.Bitmask) error {
	words := bm.Words()
	byteLen := len(words) * 8
	buf := make([]byte, byteLen)
	req := typedIoctl(eviocgbit0, evType, byteLen)
	if err := ioctlBytes(d.Fd(), req, buf); err != nil {
		return err
	}
	for i := range words {
		var w uint64
		for b := 0; b < 8 && i*8+b < byteLen; b++ {
			w |= uint64(buf[i*8+b]) << (8 * b)
		}
		words[i] = w
	}
	return nil
}

// AbsInfo reads the EVIOCGABS info for one axis code.
func (d *Device) AbsInfo(code int) (input.RawAbsoluteAxisInfo, error) {
	var raw kernelAbsInfo
	req := typedIoctl(eviocgabs0, code, 24)
	if err := ioctl(d.Fd(), req, unsafe.Pointer(&raw)); err != nil {
		return input.RawAbsoluteAxisInfo{}, input.NewError(input.IoFailure, -1, d.Path, err)
	}
	return input.RawAbsoluteAxisInfo{
		Valid:      true,
		Min:        raw.Minimum,
		Max:        raw.Maximum,
		Flat:       raw.Flat,
		Fuzz:       raw.Fuzz,
		Resolution: raw.Resolution,
	}, nil
}

// CurrentKeyState fills a key-state bitmask via EVIOCGKEY with the device's
// current key-down set.
func (d *Device) CurrentKeyState() (input.Bitmask, error) {
	bm := input.NewBitmask(input.KeyMax)
	words := bm.Words()
	byteLen := len(words) * 8
	buf := make([]byte, byteLen)
	req := sizedIoctl(eviocgkey0, byteLen)
	if err := ioctlBytes(d.Fd(), req, buf); err != nil {
		return bm, input.NewError(input.IoFailure, -1, d.Path, err)
	}
	for i := range words {
		var w uint64
		for b := 0; b < 8 && i*8+b < byteLen; b++ {
			w |= uint64(buf[i*8+b]) << (8 * b)
		}
		words[i] = w
	}
	return bm, nil
}

// SwitchState fills a switch-state bitmask via EVIOCGSW, used on
// device-added to report the initial lid/dock switch states (§4.1).
func (d *Device) SwitchState() (input.Bitmask, error) {
	bm := input.NewBitmask(input.SwMax)
	words := bm.Words()
	byteLen := len(words) * 8
	buf := make([]byte, byteLen)
	req := sizedIoctl(eviocgsw0, byteLen)
	if err := ioctlBytes(d.Fd(), req, buf); err != nil {
		return bm, input.NewError(input.IoFailure, -1, d.Path, err)
	}
	for i := range words {
		var w uint64
		for b := 0; b < 8 && i*8+b < byteLen; b++ {
			w |= uint64(buf[i*8+b]) << (8 * b)
		}
		words[i] = w
	}
	return bm, nil
}
