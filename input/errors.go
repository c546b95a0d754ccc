package input

import "fmt"

// ErrorKind classifies a core failure for logging and for the degrade
// decisions described in §7 Error Handling Design.
type ErrorKind int

const (
	// IoFailure covers a failed read/write/ioctl against a device or inotify
	// fd. The affected device is dropped as if unplugged; the hub keeps
	// running.
	IoFailure ErrorKind = iota
	// MalformedEvent covers a structurally invalid raw event (unknown type,
	// out-of-range code, truncated read). The event is discarded, not the
	// device.
	MalformedEvent
	// BufferOverrun covers a SYN_DROPPED notification: the kernel discarded
	// events faster than they were read. The device's mappers are reset and
	// its events are dropped up to the next SYN_REPORT (§4.1).
	BufferOverrun
	// ConfigurationError covers a malformed idc/kl/vks file. The device
	// falls back to defaults for whatever the file would have supplied.
	ConfigurationError
	// VirtualKeyFileError covers a malformed or unreadable virtualkeys file.
	// The touch mapper runs with no virtual keys rather than failing the
	// device.
	VirtualKeyFileError
)

func (k ErrorKind) String() string {
	switch k {
	case IoFailure:
		return "io_failure"
	case MalformedEvent:
		return "malformed_event"
	case BufferOverrun:
		return "buffer_overrun"
	case ConfigurationError:
		return "configuration_error"
	case VirtualKeyFileError:
		return "virtual_key_file_error"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the ErrorKind and device it applies
// to, so callers can decide whether to drop an event, resync a device, or
// drop the device entirely without string-matching.
type Error struct {
	Kind     ErrorKind
	DeviceID int32
	Path     string
	Err      error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: device %d (%s): %v", e.Kind, e.DeviceID, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: device %d: %v", e.Kind, e.DeviceID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error for the given kind.
func NewError(kind ErrorKind, deviceID int32, path string, err error) *Error {
	return &Error{Kind: kind, DeviceID: deviceID, Path: path, Err: err}
}
