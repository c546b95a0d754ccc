package mapper

import "github.com/rawinput/inputhub/input"

// SwitchMapper emits one SwitchEvent per EV_SW change (§2: "Mapper: Switch —
// emit switch notifications"). It carries no per-frame state; switch-code
// ownership arbitration happens once, when the registry creates the
// device, via input.SwitchOwners.
type SwitchMapper struct {
	ctx *Context
}

func NewSwitchMapper(ctx *Context) *SwitchMapper {
	return &SwitchMapper{ctx: ctx}
}

func (m *SwitchMapper) Process(events []input.RawEvent) []input.CookedEvent {
	var out []input.CookedEvent
	for _, e := range events {
		if e.Kind != input.RawSw {
			continue
		}
		out = append(out, input.SwitchEvent{
			When:        e.When,
			PolicyFlags: 0,
			SwitchCode:  e.Code,
			SwitchValue: e.Value,
		})
	}
	return out
}

func (m *SwitchMapper) Reset(when int64) []input.CookedEvent            { return nil }
func (m *SwitchMapper) TimeoutExpired(when int64) []input.CookedEvent   { return nil }
func (m *SwitchMapper) Configure(change ConfigChange) []input.CookedEvent { return nil }
