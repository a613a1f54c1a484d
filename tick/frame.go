// Package tick carries the state that lives for exactly one simulation step.
package tick

import (
	"context"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

// Frame is created once per tick and handed to every component's StartTick.
// Anything memoised on it dies with it, which is how per-tick caches are
// cleared.
type Frame struct {
	Ctx   context.Context
	Tick  int
	World world.View

	focus map[string]string
}

func New(ctx context.Context, tick int, view world.View) *Frame {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Frame{
		Ctx:   ctx,
		Tick:  tick,
		World: view,
		focus: make(map[string]string),
	}
}

// FocusTarget returns the memoised shared target for a squad. ok is false
// when nothing was resolved yet this tick; an empty id with ok=true means
// "resolved to no target".
func (f *Frame) FocusTarget(squadID string) (id string, ok bool) {
	id, ok = f.focus[squadID]
	return id, ok
}

func (f *Frame) SetFocusTarget(squadID, id string) {
	f.focus[squadID] = id
}

// ForgetFocusTarget drops one squad's memo, forcing the next lookup to
// resolve again.
func (f *Frame) ForgetFocusTarget(squadID string) {
	delete(f.focus, squadID)
}
