package reader

import (
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/rawinput/inputhub/eventhub"
	"github.com/rawinput/inputhub/input"
)

// defaultPollCapacity bounds how many RawEvents one PollOnce call may
// return, matching the original reader's fixed-size event buffer.
const defaultPollCapacity = 256

// Reader drives the single-threaded loop_once algorithm of §4.2 against a
// Hub and a Registry, flushing cooked events to a Listener in FIFO order at
// the end of every iteration. Exactly one goroutine may call Run/LoopOnce
// (§5); the Registry's own lock is what makes its state queries safe from
// any other goroutine concurrently.
type Reader struct {
	hub      *eventhub.Hub
	registry *Registry
	listener input.Listener
	log      *charmlog.Logger

	policyTimeout time.Duration
}

func New(hub *eventhub.Hub, registry *Registry, listener input.Listener, logger *charmlog.Logger) *Reader {
	return &Reader{
		hub:           hub,
		registry:      registry,
		listener:      listener,
		log:           logger,
		policyTimeout: 100 * time.Millisecond,
	}
}

// Run calls LoopOnce until stop is closed.
func (r *Reader) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		if err := r.LoopOnce(); err != nil {
			r.log.Warn("loop_once failed", "err", err)
		}
	}
}

// LoopOnce implements the seven steps of §4.2's loop_once.
func (r *Reader) LoopOnce() error {
	// Step 1: acquire pending configuration-change bits and refresh.
	change := r.registry.takePendingConfigChange()
	var queue []input.CookedEvent
	if change != 0 {
		for _, id := range r.registry.GetInputDeviceIDs() {
			r.registry.withDevice(id, func(d *Device) {
				queue = append(queue, d.Configure(change)...)
			})
		}
	}

	// Step 2: compute the wait timeout. This core has no per-device
	// requested-timeout feature yet, so the policy timeout is the only
	// input to min().
	timeout := r.policyTimeout

	// Step 3: poll, then split into maximal same-device runs terminated by
	// any synthetic event.
	events, err := r.hub.PollOnce(timeout, defaultPollCapacity)
	if err != nil {
		return err
	}
	runs, timeoutExpired := splitRuns(events)

	// Step 4 & 5: dispatch each run, handling synthetics inline so ordering
	// against the surrounding device runs is preserved.
	for _, run := range runs {
		switch run.kind {
		case runDevice:
			r.registry.withDevice(run.deviceID, func(d *Device) {
				queue = append(queue, d.Process(run.events)...)
			})
		case runDeviceAdded:
			if info, ok := r.hub.Snapshot(run.deviceID); ok {
				_, added := r.registry.CreateDevice(info)
				queue = append(queue, added...)
			}
		case runDeviceRemoved:
			r.registry.RemoveDevice(run.deviceID)
		case runScanComplete:
			queue = append(queue, input.ConfigurationChangedEvent{When: time.Now().UnixNano()})
		}
	}

	// Step 6: if the wait timed out with nothing ready, tell every device.
	if timeoutExpired {
		now := time.Now().UnixNano()
		for _, id := range r.registry.GetInputDeviceIDs() {
			r.registry.withDevice(id, func(d *Device) {
				queue = append(queue, d.TimeoutExpired(now)...)
			})
		}
	}

	// Step 7: flush.
	r.flush(queue)
	return nil
}

func (r *Reader) flush(events []input.CookedEvent) {
	if len(events) == 0 {
		return
	}
	r.registry.broadcast(events)
	for _, ce := range events {
		ce.Dispatch(r.listener)
	}
}

type runKind int

const (
	runDevice runKind = iota
	runDeviceAdded
	runDeviceRemoved
	runScanComplete
)

type run struct {
	kind     runKind
	deviceID int32
	events   []input.RawEvent
}

// splitRuns implements §4.2 step 3: maximal runs of same-device events,
// each terminated by any synthetic event (DeviceAdded/DeviceRemoved/
// ScanComplete), which becomes its own single-event run in emission order.
// timeoutExpired reports whether the batch was empty, meaning the wait
// returned on timeout rather than on readiness.
func splitRuns(events []input.RawEvent) (runs []run, timeoutExpired bool) {
	if len(events) == 0 {
		return nil, true
	}
	var cur []input.RawEvent
	var curID int32
	haveCur := false
	flush := func() {
		if haveCur && len(cur) > 0 {
			runs = append(runs, run{kind: runDevice, deviceID: curID, events: cur})
		}
		cur = nil
		haveCur = false
	}
	for _, e := range events {
		switch e.Kind {
		case input.RawDeviceAdded:
			flush()
			runs = append(runs, run{kind: runDeviceAdded, deviceID: e.DeviceID})
		case input.RawDeviceRemoved:
			flush()
			runs = append(runs, run{kind: runDeviceRemoved, deviceID: e.DeviceID})
		case input.RawScanComplete:
			flush()
			runs = append(runs, run{kind: runScanComplete})
		default:
			if haveCur && e.DeviceID != curID {
				flush()
			}
			curID = e.DeviceID
			haveCur = true
			cur = append(cur, e)
		}
	}
	flush()
	return runs, false
}
