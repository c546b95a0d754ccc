package reader

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rawinput/inputhub/eventhub"
	"github.com/rawinput/inputhub/input"
	"github.com/rawinput/inputhub/mapper"
)

// ledAdapter binds a device id to the Hub's per-device SetLED so a
// mapper.Context only ever sees the narrow mapper.LEDSetter it needs.
type ledAdapter struct {
	hub      *eventhub.Hub
	deviceID int32
}

func (l ledAdapter) SetLED(code int, on bool) error { return l.hub.SetLED(l.deviceID, code, on) }

// Registry owns every live Device and is the single lock guarding them, per
// §5: public state queries may run on any goroutine; the reader loop is the
// only goroutine that ever mutates a Device.
type Registry struct {
	mu      sync.Mutex
	hub     *eventhub.Hub
	policy  input.Policy
	devices map[int32]*Device
	order   []int32 // insertion order, for deterministic dump/ids output

	monitors map[int]func(input.CookedEvent)
	nextMon  int

	pendingConfigChange mapper.ConfigChange
}

func NewRegistry(hub *eventhub.Hub, policy input.Policy) *Registry {
	return &Registry{
		hub:      hub,
		policy:   policy,
		devices:  make(map[int32]*Device),
		monitors: make(map[int]func(input.CookedEvent)),
	}
}

// CreateDevice builds a Device's mapper stack from a hub snapshot and
// registers it; called by the reader loop on a RawDeviceAdded synthetic.
func (r *Registry) CreateDevice(info eventhub.DeviceInfo) (*Device, []input.CookedEvent) {
	absInfo, err := r.hub.AbsInfoMap(info.ID)
	if err != nil {
		absInfo = nil
	}
	ctx := buildContext(info, absInfo, ledAdapter{hub: r.hub, deviceID: info.ID}, r.policy)
	d := newDevice(ctx)

	var out []input.CookedEvent
	if info.Classes.Has(input.ClassSwitch) {
		if values, err := r.hub.InitialSwitchValues(info.ID); err == nil {
			for code, v := range values {
				if !r.hub.ClaimSwitch(code, info.ID) {
					continue
				}
				ev := input.SwitchEvent{SwitchCode: int32(code), SwitchValue: v}
				d.switchState[int32(code)] = v
				out = append(out, ev)
			}
		}
	}

	r.mu.Lock()
	r.devices[d.ID] = d
	r.order = append(r.order, d.ID)
	r.mu.Unlock()

	return d, out
}

// RemoveDevice drops a Device from the registry; called by the reader loop
// in the iteration that reaches the DeviceRemoved synthetic for it, before
// that iteration's cooked events are flushed. The Device is not kept for a
// further tick.
func (r *Registry) RemoveDevice(id int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// withDevice runs fn with the registry locked, for the reader loop's own
// mutating calls (Process/Reset/TimeoutExpired/Configure).
func (r *Registry) withDevice(id int32, fn func(d *Device)) bool {
	// Devices are mutated only from the reader's single thread, but state
	// queries read their maps concurrently, so the mutation itself takes
	// the registry lock too, per §5's single-lock model.
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return false
	}
	fn(d)
	return true
}

// GetKeyCodeState reports whether keyCode is currently believed down.
// deviceID < 0 searches every device, mirroring the "any device" query
// convention for the aggregate virtual keyboard.
func (r *Registry) GetKeyCodeState(deviceID int32, keyCode int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deviceID >= 0 {
		d, ok := r.devices[deviceID]
		return ok && d.keyCodeState(keyCode)
	}
	for _, d := range r.devices {
		if d.keyCodeState(keyCode) {
			return true
		}
	}
	return false
}

// GetScanCodeState reports whether scanCode is currently believed down.
func (r *Registry) GetScanCodeState(deviceID int32, scanCode int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deviceID >= 0 {
		d, ok := r.devices[deviceID]
		return ok && d.scanCodeState(scanCode)
	}
	for _, d := range r.devices {
		if d.scanCodeState(scanCode) {
			return true
		}
	}
	return false
}

// GetSwitchState reports switchCode's last known value (0 or 1) on
// deviceID, or across every switch-owning device if deviceID < 0.
func (r *Registry) GetSwitchState(deviceID int32, switchCode int32) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deviceID >= 0 {
		d, ok := r.devices[deviceID]
		if !ok {
			return 0
		}
		return d.switchCodeState(switchCode)
	}
	for _, d := range r.devices {
		if v := d.switchCodeState(switchCode); v != 0 {
			return v
		}
	}
	return 0
}

// HasKeys reports, for each keyCode, whether some candidate device is
// keyboard-capable. The registry has no reverse (keycode -> scancode)
// lookup through KeyLayout, so this degrades to "is there a keyboard-class
// device at all" rather than confirming the specific keycode is wired on
// that device's layout — the same fallback ClassifyDevice itself uses when
// no layout has loaded yet.
func (r *Registry) HasKeys(deviceID int32, keyCodes []int32) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidates := r.keyboardCandidatesLocked(deviceID)
	result := make([]bool, len(keyCodes))
	for i := range keyCodes {
		result[i] = len(candidates) > 0
	}
	return result
}

func (r *Registry) keyboardCandidatesLocked(deviceID int32) []*Device {
	if deviceID >= 0 {
		if d, ok := r.devices[deviceID]; ok && d.Classes.Has(input.ClassKeyboard) {
			return []*Device{d}
		}
		return nil
	}
	var out []*Device
	for _, d := range r.devices {
		if d.Classes.Has(input.ClassKeyboard) {
			out = append(out, d)
		}
	}
	return out
}

// DeviceSummary is the read-only snapshot returned by GetInputDeviceInfo.
type DeviceSummary struct {
	ID         int32
	Identifier input.Identifier
	Classes    input.DeviceClasses
}

func (r *Registry) GetInputDeviceInfo(deviceID int32) (DeviceSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[deviceID]
	if !ok {
		return DeviceSummary{}, false
	}
	return DeviceSummary{ID: d.ID, Identifier: d.Identifier, Classes: d.Classes}, true
}

func (r *Registry) GetInputDeviceIDs() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int32, len(r.order))
	copy(ids, r.order)
	return ids
}

// Dump renders a human-readable snapshot of every registered device, in the
// same spirit as the original reader's `dumpsys input` text report.
func (r *Registry) Dump() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	ids := make([]int32, len(r.order))
	copy(ids, r.order)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		d := r.devices[id]
		fmt.Fprintf(&b, "Device %d: %q classes=%s\n", d.ID, d.Identifier.Name, d.Classes)
	}
	return b.String()
}

// Monitor registers fn to receive every cooked event as it is flushed,
// returning an unsubscribe function. Intended for debug tooling, not the
// primary listener.
func (r *Registry) Monitor(fn func(input.CookedEvent)) func() {
	r.mu.Lock()
	id := r.nextMon
	r.nextMon++
	r.monitors[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.monitors, id)
		r.mu.Unlock()
	}
}

func (r *Registry) broadcast(events []input.CookedEvent) {
	r.mu.Lock()
	fns := make([]func(input.CookedEvent), 0, len(r.monitors))
	for _, fn := range r.monitors {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, ce := range events {
		for _, fn := range fns {
			fn(ce)
		}
	}
}

// RequestRefreshConfiguration ORs change into the pending bits the next
// loop_once will pick up in its step 1 (§4.2). Safe from any goroutine; it
// also wakes the reader so a currently-blocked wait doesn't delay the
// refresh.
func (r *Registry) RequestRefreshConfiguration(change mapper.ConfigChange) {
	r.mu.Lock()
	r.pendingConfigChange |= change
	r.mu.Unlock()
	r.hub.Wake()
}

func (r *Registry) takePendingConfigChange() mapper.ConfigChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.pendingConfigChange
	r.pendingConfigChange = 0
	return c
}
