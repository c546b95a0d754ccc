// Package eventhub implements the RawEventSource contract of §4.1: device
// discovery, a single blocking multiplexed wait across every open evdev
// node, classification, wake-lock handoff, and SYN_DROPPED overrun
// filtering.
package eventhub

import (
	"errors"
	"runtime"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/rawinput/inputhub/input"
	"github.com/rawinput/inputhub/internal/envconfig"
	"github.com/rawinput/inputhub/internal/evdevio"
	"github.com/rawinput/inputhub/internal/wakelock"
)

// openDevice is everything the hub tracks for one live node.
type openDevice struct {
	id         int32
	path       string
	dev        *evdevio.Device
	identifier input.Identifier
	caps       input.Capabilities
	classes    input.DeviceClasses
	layout     input.KeyLayout
	props      input.PropertyMap
	vkeys      []input.VirtualKey
	dropping   bool // true between SYN_DROPPED and the next SYN_REPORT (§4.1 overrun recovery)
}

// Hub owns every open device node, the epoll-based poller, the directory
// watch, the wake lock, and device-id/switch-ownership bookkeeping.
type Hub struct {
	cfg  envconfig.Config
	log  *charmlog.Logger
	lock wakelock.Lock

	poller *evdevio.Poller
	watch  *watcher

	mu       sync.Mutex
	devices  map[int32]*openDevice
	byPath   map[string]int32
	nextID   int32
	switches *input.SwitchOwners

	pendingAdded   []int32
	pendingRemoved []int32

	scanned     bool
	reopenAsked bool
}

// New creates a Hub; it does not scan or open anything until the first
// PollOnce.
func New(cfg envconfig.Config, logger *charmlog.Logger) (*Hub, error) {
	poller, err := evdevio.NewPoller()
	if err != nil {
		return nil, err
	}
	w, err := newWatcher(cfg.DeviceDir)
	if err != nil {
		poller.Close()
		return nil, err
	}
	h := &Hub{
		cfg:      cfg,
		log:      logger,
		lock:     *wakelock.New(cfg.WakeLockName),
		poller:   poller,
		watch:    w,
		devices:  make(map[int32]*openDevice),
		byPath:   make(map[string]int32),
		nextID:   1,
		switches: input.NewSwitchOwners(),
	}
	// Held at all times except during the blocking wait inside PollOnce,
	// mirroring the constructor/destructor acquire-release pairing of the
	// grounding source rather than re-acquiring it around every call.
	h.lock.Acquire()
	return h, nil
}

func (h *Hub) Close() error {
	h.watch.close()
	for _, d := range h.devices {
		d.dev.Close()
	}
	h.lock.Release()
	return h.poller.Close()
}

// Wake unblocks an in-progress PollOnce with zero events.
func (h *Hub) Wake() { h.poller.Wake() }

// RequestReopen asks the next PollOnce to rescan the device directory even
// if the watch reported nothing; idempotent, like Wake.
func (h *Hub) RequestReopen() {
	h.mu.Lock()
	h.reopenAsked = true
	h.mu.Unlock()
	h.poller.Wake()
}

// PollOnce implements §4.1's `poll_once(timeout, buffer, capacity) → count`
// contract: it blocks up to timeout for readiness, applies the SMP settle
// delay, reads every ready device, and appends synthetic lifecycle events
// for anything discovery found. The wake lock is held throughout, released
// only for the inner Wait call.
func (h *Hub) PollOnce(timeout time.Duration, capacity int) ([]input.RawEvent, error) {
	if !h.scanned {
		h.mu.Lock()
		h.scanned = true
		h.mu.Unlock()
		h.openNewPaths(mustScan(h.cfg.DeviceDir))
	} else {
		h.mu.Lock()
		reopen := h.reopenAsked
		h.reopenAsked = false
		h.mu.Unlock()
		created, removed := h.watch.poll()
		if reopen {
			created = append(created, mustScan(h.cfg.DeviceDir)...)
		}
		h.openNewPaths(created)
		h.closePaths(removed)
	}

	h.lock.Release()
	timeoutMillis := int(timeout / time.Millisecond)
	ready, err := h.poller.Wait(timeoutMillis)
	h.lock.Acquire()
	if err != nil {
		return nil, err
	}

	if runtime.NumCPU() >= 2 {
		time.Sleep(h.settleDelay())
	}

	out := make([]input.RawEvent, 0, capacity)
	out = append(out, h.drainAdded()...)
	out = append(out, h.drainRemoved()...)

	for _, id := range ready {
		h.mu.Lock()
		d, ok := h.devices[id]
		h.mu.Unlock()
		if !ok {
			continue
		}
		events, err := d.dev.ReadEvents(id)
		if err != nil {
			h.handleReadError(d, err)
			continue
		}
		out = append(out, h.filterOverrun(d, events)...)
		if len(out) >= capacity {
			break
		}
	}

	return out, nil
}

func (h *Hub) settleDelay() time.Duration {
	if h.cfg.SMPSettleDelay > 0 {
		return h.cfg.SMPSettleDelay
	}
	return 250 * time.Microsecond
}

// filterOverrun implements the SYN_DROPPED half of §4.1's overrun recovery:
// drop raw events for this device until the next SYN_REPORT, while still
// letting the SYN_DROPPED event itself (and the closing SYN_REPORT) through
// so the reader can reset the device's mappers and resynchronize framing.
func (h *Hub) filterOverrun(d *openDevice, events []input.RawEvent) []input.RawEvent {
	out := make([]input.RawEvent, 0, len(events))
	for _, e := range events {
		if e.Kind == input.RawSync && e.Code == input.SyncDropped {
			d.dropping = true
			out = append(out, e)
			continue
		}
		if d.dropping {
			if e.Kind == input.RawSync && e.Code == input.SyncReport {
				d.dropping = false
				out = append(out, e)
			}
			continue
		}
		out = append(out, e)
	}
	return out
}

func (h *Hub) handleReadError(d *openDevice, err error) {
	var coreErr *input.Error
	if errors.As(err, &coreErr) && coreErr.Kind == input.MalformedEvent {
		h.log.Warn("discarding malformed read", "path", d.path, "err", err)
		return
	}
	h.log.Warn("device read failed", "path", d.path, "err", err)
	h.closePaths([]string{d.path})
}

func mustScan(dir string) []string {
	paths, err := scanDir(dir)
	if err != nil {
		return nil
	}
	return paths
}
