package eventhub

import (
	"fmt"

	"github.com/rawinput/inputhub/collab"
	"github.com/rawinput/inputhub/input"
	"github.com/rawinput/inputhub/internal/evdevio"
)

// drainAdded and drainRemoved flush the synthetic DeviceAdded/DeviceRemoved
// events queued by the last discovery pass, each batch closed off by
// exactly one ScanComplete (§4.1).
func (h *Hub) drainAdded() []input.RawEvent {
	h.mu.Lock()
	ids := h.pendingAdded
	h.pendingAdded = nil
	h.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}
	out := make([]input.RawEvent, 0, len(ids)+1)
	for _, id := range ids {
		out = append(out, input.RawEvent{DeviceID: id, Kind: input.RawDeviceAdded})
	}
	out = append(out, input.RawEvent{Kind: input.RawScanComplete})
	return out
}

func (h *Hub) drainRemoved() []input.RawEvent {
	h.mu.Lock()
	ids := h.pendingRemoved
	h.pendingRemoved = nil
	h.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}
	out := make([]input.RawEvent, 0, len(ids)+1)
	for _, id := range ids {
		out = append(out, input.RawEvent{DeviceID: id, Kind: input.RawDeviceRemoved})
	}
	out = append(out, input.RawEvent{Kind: input.RawScanComplete})
	return out
}

// openNewPaths opens, probes, classifies and registers every path not
// already tracked, mirroring EventHub::openDeviceLocked (§4.1).
func (h *Hub) openNewPaths(paths []string) {
	for _, path := range paths {
		h.mu.Lock()
		_, known := h.byPath[path]
		h.mu.Unlock()
		if known {
			continue
		}
		if err := h.openOne(path); err != nil {
			h.log.Warn("failed to open device", "path", path, "err", err)
		}
	}
}

func (h *Hub) openOne(path string) error {
	dev, err := evdevio.Open(path)
	if err != nil {
		return err
	}
	ident, err := dev.Identify()
	if err != nil {
		dev.Close()
		return err
	}

	props, err := collab.LoadProperties(collab.ConfigPath(h.cfg.ConfigDir, ident))
	if err != nil {
		h.log.Warn("failed to load device properties, using defaults", "device", ident.Name, "err", err)
		props = nil
	}
	var internal bool
	if props != nil {
		internal, _ = props.GetBool("device.internal")
	}

	caps, err := dev.Capabilities(ident.Bus, internal)
	if err != nil {
		dev.Close()
		return err
	}

	descriptor := sanitizedDescriptor(ident)
	layout, err := collab.LoadKeyLayout(fmt.Sprintf("%s/%s.kl", h.cfg.KeyLayoutDir, descriptor))
	if err != nil {
		h.log.Warn("failed to load key layout", "device", ident.Name, "err", err)
		layout = nil
	}
	var vkeys []input.VirtualKey
	if layout != nil {
		vkeys, err = collab.LoadVirtualKeys(fmt.Sprintf("%s/%s.vks", h.cfg.VirtualKeyDir, descriptor), layout)
		if err != nil {
			h.log.Warn("failed to load virtual keys", "device", ident.Name, "err", err)
		}
	}

	classes := input.ClassifyDevice(caps, layout)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.mu.Unlock()

	if err := h.poller.Add(id, dev.Fd()); err != nil {
		dev.Close()
		return err
	}

	od := &openDevice{
		id:         id,
		path:       path,
		dev:        dev,
		identifier: ident,
		caps:       caps,
		classes:    classes,
		layout:     layout,
		props:      propertyMapOrNil(props),
		vkeys:      vkeys,
	}

	h.mu.Lock()
	h.devices[id] = od
	h.byPath[path] = id
	h.pendingAdded = append(h.pendingAdded, id)
	h.mu.Unlock()

	h.log.Info("device opened", "path", path, "id", id, "name", ident.Name, "classes", classes)
	return nil
}

// propertyMapOrNil avoids handing back a non-nil input.PropertyMap wrapping
// a nil *FileProperties, which would make every collaborators.go nil-check
// against the interface lie.
func propertyMapOrNil(p *collab.FileProperties) input.PropertyMap {
	if p == nil {
		return nil
	}
	return p
}

func sanitizedDescriptor(id input.Identifier) string {
	d := id.ConfigDescriptor()
	out := make([]byte, 0, len(d))
	for i := 0; i < len(d); i++ {
		c := d[i]
		if c == ' ' || c == '/' {
			c = '_'
		}
		out = append(out, c)
	}
	return string(out)
}

// closePaths unregisters and closes every tracked device at one of paths.
func (h *Hub) closePaths(paths []string) {
	for _, path := range paths {
		h.mu.Lock()
		id, ok := h.byPath[path]
		if ok {
			delete(h.byPath, path)
		}
		h.mu.Unlock()
		if !ok {
			continue
		}
		h.closeID(id)
	}
}

func (h *Hub) closeID(id int32) {
	h.mu.Lock()
	d, ok := h.devices[id]
	if ok {
		delete(h.devices, id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	h.poller.Remove(id)
	h.switches.Release(id)
	d.dev.Close()
	h.mu.Lock()
	h.pendingRemoved = append(h.pendingRemoved, id)
	h.mu.Unlock()
	h.log.Info("device closed", "path", d.path, "id", id)
}

// DeviceInfo is the read-only snapshot of one open device exposed to the
// registry for mapper construction and state queries (§4.2).
type DeviceInfo struct {
	ID          int32
	Identifier  input.Identifier
	Caps        input.Capabilities
	Classes     input.DeviceClasses
	Layout      input.KeyLayout
	Props       input.PropertyMap
	VirtualKeys []input.VirtualKey
}

// Snapshot returns the info of the open device with the given id, or false
// if no such device is open; used for registry bootstrapping after a
// DeviceAdded event.
func (h *Hub) Snapshot(id int32) (DeviceInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.devices[id]
	if !ok {
		return DeviceInfo{}, false
	}
	return DeviceInfo{
		ID: d.id, Identifier: d.identifier, Caps: d.caps, Classes: d.classes,
		Layout: d.layout, Props: d.props, VirtualKeys: d.vkeys,
	}, true
}

// ClaimSwitch arbitrates first-claimer ownership of a switch code (§4.1),
// called by the registry when it creates a switch-class device, once for
// each code in the device's initial switch values.
func (h *Hub) ClaimSwitch(switchCode int, deviceID int32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.switches.Claim(switchCode, deviceID)
}

// SetLED drives an LED on the underlying device, used by the keyboard
// mapper's belief-tracking LED sync.
func (h *Hub) SetLED(deviceID int32, code int, on bool) error {
	h.mu.Lock()
	d, ok := h.devices[deviceID]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("device %d not open", deviceID)
	}
	return d.dev.SetLED(code, on)
}

// CurrentKeyState reads a device's current key-down bitmask. SYN_DROPPED
// recovery does not call it: the reader resets the device's mappers instead.
func (h *Hub) CurrentKeyState(deviceID int32) (input.Bitmask, error) {
	h.mu.Lock()
	d, ok := h.devices[deviceID]
	h.mu.Unlock()
	if !ok {
		return input.Bitmask{}, fmt.Errorf("device %d not open", deviceID)
	}
	return d.dev.CurrentKeyState()
}

// AbsInfoMap probes EVIOCGABS for every ABS code the device's capability
// bitmask reports, for the registry to build a mapper Context's AbsInfo
// table from at device-added time.
func (h *Hub) AbsInfoMap(deviceID int32) (map[int]input.RawAbsoluteAxisInfo, error) {
	h.mu.Lock()
	d, ok := h.devices[deviceID]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("device %d not open", deviceID)
	}
	out := make(map[int]input.RawAbsoluteAxisInfo)
	for code := 0; code <= input.AbsMax; code++ {
		if !d.caps.Abs.Test(code) {
			continue
		}
		info, err := d.dev.AbsInfo(code)
		if err != nil {
			continue
		}
		out[code] = info
	}
	return out, nil
}

// InitialSwitchValues reads the current state of every switch code the
// device reports, for the registry to synthesize the initial SwitchEvent
// notifications a newly added switch-class device should produce.
func (h *Hub) InitialSwitchValues(deviceID int32) (map[int]int32, error) {
	h.mu.Lock()
	d, ok := h.devices[deviceID]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("device %d not open", deviceID)
	}
	bm, err := d.dev.SwitchState()
	if err != nil {
		return nil, err
	}
	out := make(map[int]int32)
	for code := 0; code <= input.SwMax; code++ {
		if d.caps.Sw.Test(code) {
			v := int32(0)
			if bm.Test(code) {
				v = 1
			}
			out[code] = v
		}
	}
	return out, nil
}
