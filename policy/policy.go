// Package policy provides a minimal, headless input.Policy: fixed display
// geometry from configuration and no pointer presentation. A GUI front end
// can supply a richer implementation; the daemon only needs one that never
// blocks the reader thread, per §1/§4.
package policy

import (
	"sync"

	"github.com/rawinput/inputhub/input"
)

// Static is an input.Policy backed by one configured DisplayInfo, shared by
// every device, with orientation changeable at runtime (e.g. from a
// detected screen-rotation signal).
type Static struct {
	mu      sync.RWMutex
	display input.DisplayInfo
}

func NewStatic(width, height int32, orientation input.Rotation) *Static {
	return &Static{display: input.DisplayInfo{Width: width, Height: height, Orientation: orientation}}
}

func (s *Static) GetDisplayInfo(deviceID int32) (input.DisplayInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display, true
}

// ObtainPointerController returns nil: this headless policy presents no
// cursor or touch spots. A mapper checks ctx.Policy for nil before calling
// this, so it degrades to producing coordinate events with no on-screen
// presentation rather than failing.
func (s *Static) ObtainPointerController(deviceID int32) input.PointerController { return nil }

// SetRotation updates the shared display orientation, e.g. in response to
// an accelerometer-driven rotation lock toggle.
func (s *Static) SetRotation(r input.Rotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display.Orientation = r
}

// SetDisplay replaces the shared geometry wholesale, e.g. after an operator
// updates it through the control API. Callers still need to push
// ConfigChangeDisplayInfo through the registry for mappers to pick it up.
func (s *Static) SetDisplay(width, height int32, r input.Rotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display = input.DisplayInfo{Width: width, Height: height, Orientation: r}
}

var _ input.Policy = (*Static)(nil)
