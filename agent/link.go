package agent

import (
	"context"
	"fmt"

	"github.com/BenvolioDAT/BeeHiveMind-sub002/ipc"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/model"
	"github.com/BenvolioDAT/BeeHiveMind-sub002/world"
)

// Sender delivers one message to the host. *ipc.Connection satisfies it.
type Sender interface {
	Send(msgType string, data any) error
}

var _ Sender = (*ipc.Connection)(nil)

// hostLink forwards pathing steps and combat actions to the host as ipc
// commands. The host executes them in the order received.
type hostLink struct {
	out  Sender
	sent int
}

var (
	_ world.Pathing = (*hostLink)(nil)
	_ world.Actions = (*hostLink)(nil)
)

func (l *hostLink) MoveTo(_ context.Context, unit model.Unit, dest model.Position, opts world.MoveOptions) error {
	return l.send(ipc.TypeMove, ipc.MoveCommand{
		UnitID:      unit.ID,
		Zone:        dest.Zone,
		X:           dest.X,
		Y:           dest.Y,
		Range:       opts.Range,
		ReusePath:   opts.ReusePath,
		IgnoreUnits: opts.IgnoreUnits,
		Flee:        opts.Flee,
		Costs:       opts.Costs,
	})
}

func (l *hostLink) Attack(_ context.Context, unitID, targetID string) error {
	return l.send(ipc.TypeAttack, ipc.TargetCommand{UnitID: unitID, TargetID: targetID})
}

func (l *hostLink) RangedAttack(_ context.Context, unitID, targetID string) error {
	return l.send(ipc.TypeRangedAttack, ipc.TargetCommand{UnitID: unitID, TargetID: targetID})
}

func (l *hostLink) Heal(_ context.Context, unitID, targetID string) error {
	return l.send(ipc.TypeHeal, ipc.TargetCommand{UnitID: unitID, TargetID: targetID})
}

func (l *hostLink) RangedHeal(_ context.Context, unitID, targetID string) error {
	return l.send(ipc.TypeRangedHeal, ipc.TargetCommand{UnitID: unitID, TargetID: targetID})
}

func (l *hostLink) send(msgType string, cmd any) error {
	if err := l.out.Send(msgType, cmd); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	l.sent++
	return nil
}
