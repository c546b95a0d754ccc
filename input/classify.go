package input

// Capabilities bundles the capability bitmasks probed via EVIOCGBIT for one
// device, plus the ambient facts classification needs (bus type, and
// whether configuration marked it internal).
type Capabilities struct {
	Key      Bitmask
	Abs      Bitmask
	Rel      Bitmask
	Sw       Bitmask
	Led      Bitmask
	Prop     Bitmask
	Bus      BusType
	Internal bool // from configuration property "device.internal"
}

// switchOwners tracks, process-wide, which device id first reported a given
// switch code — "the first device reporting a given switch code owns it"
// (§4.1). Classification is otherwise a pure function of Capabilities; this
// is the one piece of cross-device state it needs, so it is threaded in by
// the caller rather than hidden behind a package global.
type SwitchOwners struct {
	owner map[int]int32 // switch code -> device id
}

func NewSwitchOwners() *SwitchOwners {
	return &SwitchOwners{owner: make(map[int]int32)}
}

// Claim returns true if deviceID owns switchCode (either already owning it,
// or claiming it now because no one else does).
func (s *SwitchOwners) Claim(switchCode int, deviceID int32) bool {
	if owner, ok := s.owner[switchCode]; ok {
		return owner == deviceID
	}
	s.owner[switchCode] = deviceID
	return true
}

// Release forgets every switch code owned by deviceID, e.g. on removal.
func (s *SwitchOwners) Release(deviceID int32) {
	for code, owner := range s.owner {
		if owner == deviceID {
			delete(s.owner, code)
		}
	}
}

// ClassifyDevice applies the §4.1 classification rules in order. layout may
// be nil; the DPad/Gamepad rules then degrade to raw-scancode tests against
// the conventional Android keycode-to-scancode identity mapping used by
// generic keyboards, which is a reasonable default when no KeyLayout is
// available yet.
func ClassifyDevice(caps Capabilities, layout KeyLayout) DeviceClasses {
	var classes DeviceClasses

	// Keyboard / AlphaKey.
	if caps.Key.AnyInRange(KeyReserved+1, BtnMisc-1) {
		classes |= ClassKeyboard
	}
	if caps.Key.Test(KeyQ) {
		classes |= ClassKeyboard | ClassAlphaKey
	}

	// Cursor: BTN_MOUSE && REL_X && REL_Y.
	if caps.Key.Test(BtnMouse) && caps.Rel.Test(RelX) && caps.Rel.Test(RelY) {
		classes |= ClassCursor
	}

	// TouchMT: ABS_MT_POSITION_X && ABS_MT_POSITION_Y, combined with
	// BTN_TOUCH present OR no gamepad buttons present (to tell a real
	// touchscreen apart from a PS-style controller's phantom MT axes).
	if caps.Abs.Test(AbsMtPositionX) && caps.Abs.Test(AbsMtPositionY) {
		hasGamepadButtons := caps.Key.AnySet(gamepadKeys...)
		if caps.Key.Test(BtnTouch) || !hasGamepadButtons {
			classes |= ClassTouchMT
		}
	}

	// Touch (single-touch): BTN_TOUCH && ABS_X && ABS_Y.
	if caps.Key.Test(BtnTouch) && caps.Abs.Test(AbsX) && caps.Abs.Test(AbsY) {
		classes |= ClassTouch
	}

	// Joystick: gamepad buttons present && !Touch && any ABS bit in
	// [0, ABS_MAX].
	if caps.Key.AnySet(gamepadKeys...) && !classes.Has(ClassTouch) && caps.Abs.AnyInRange(0, AbsMax) {
		classes |= ClassJoystick
	}

	// Switch: any bit set in the switch bitmask. Ownership arbitration
	// happens one layer up (SwitchOwners), since that needs the device id.
	if caps.Sw.Any() {
		classes |= ClassSwitch
	}

	// DPad: all four DPAD_* keycodes mappable.
	if layoutMapsAll(caps, layout, KeycodeDpadUp, KeycodeDpadDown, KeycodeDpadLeft, KeycodeDpadRight) {
		classes |= ClassDPad
	}

	// Gamepad: any of the gamepadKeys scancodes mappable.
	if layout != nil {
		for _, kc := range gamepadKeys {
			if _, _, ok := layout.MapKey(kc); ok {
				classes |= ClassGamepad
				break
			}
		}
	} else if caps.Key.AnySet(gamepadKeys...) {
		classes |= ClassGamepad
	}

	// External: bus is USB or Bluetooth, unless configuration says
	// device.internal=true.
	if !caps.Internal && (caps.Bus == BusUSB || caps.Bus == BusBluetooth) {
		classes |= ClassExternal
	}

	return classes
}

// layoutMapsAll reports whether every raw keycode in want resolves through
// layout. With no layout loaded yet it falls back to testing want itself as
// the scancode space, the conventional identity mapping generic keyboards
// use.
func layoutMapsAll(caps Capabilities, layout KeyLayout, want ...int) bool {
	if layout == nil {
		for _, w := range want {
			if !caps.Key.Test(w) {
				return false
			}
		}
		return true
	}
	for _, w := range want {
		if _, _, ok := layout.MapKey(w); !ok {
			return false
		}
	}
	return true
}
