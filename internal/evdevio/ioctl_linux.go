// Package evdevio wraps the kernel evdev ioctl surface: capability
// probing, absolute-axis info, device identity, current-state queries, and
// LED output. Grounded on the vendored pure-Go evdev client mirrored at
// other_examples/1cae0242_viamrobotics-rdk__vendor-github.com-viamrobotics-evdev-evdev.go.go,
// adapted from its per-type bitmask maps to the input.Bitmask shape the rest
// of this module shares.
package evdevio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request codes from linux/input.h. The _IOC encodings are reproduced
// directly rather than computed, since this module never builds on a
// non-Linux GOOS.
const (
	eviocgversion = 0x80044501
	eviocgid      = 0x80084502
	eviocgrab     = 0x40044590
	eviocgname0   = 0x80004506 // size encoded into low bits per call
	eviocgphys0   = 0x80004507
	eviocguniq0   = 0x80004508
	eviocgkey0    = 0x80004518
	eviocgled0    = 0x80004519
	eviocgsw0     = 0x8000451b
	eviocgbit0    = 0x80004520 // type encoded into the request, size into the count
	eviocgabs0    = 0x80184540 // axis encoded into the request
)

// sizedIoctl builds an ioctl request code for the EVIOCG* macros whose
// payload size is baked into the request number (_IOC_SIZE field).
func sizedIoctl(base uintptr, size int) uintptr {
	const iocSizeShift = 16
	const iocSizeMask = 0x3fff
	return (base &^ (iocSizeMask << iocSizeShift)) | (uintptr(size&iocSizeMask) << iocSizeShift)
}

// typedIoctl additionally adds an EV_* type (or ABS_* axis) to the base
// number byte of the request, as EVIOCGBIT(ev, len) and EVIOCGABS(abs) do.
func typedIoctl(base uintptr, typ int, size int) uintptr {
	req := sizedIoctl(base, size)
	return req + uintptr(typ&0xff)
}

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlBytes(fd uintptr, req uintptr, buf []byte) error {
	if len(buf) == 0 {
		return ioctl(fd, req, nil)
	}
	return ioctl(fd, req, unsafe.Pointer(&buf[0]))
}

func ioctlString(fd uintptr, req uintptr, maxLen int) (string, error) {
	buf := make([]byte, maxLen)
	req = sizedIoctl(req, maxLen)
	if err := ioctlBytes(fd, req, buf); err != nil {
		return "", err
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n]), nil
}
