package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"railway-lite/board"
)

// TurnExecutor applies validated plans to live game state through the
// collaborator services. It never rolls back actions that already completed;
// partial progress is reported, not undone.
type TurnExecutor struct {
	turns TurnService
	loads LoadService
}

func NewTurnExecutor(turns TurnService, loads LoadService) *TurnExecutor {
	return &TurnExecutor{turns: turns, loads: loads}
}

// Execute applies actions strictly in order, stopping at the first failure.
// The result always carries the elapsed duration and how many actions fully
// completed.
func (e *TurnExecutor) Execute(ctx context.Context, plan TurnPlan, snap *WorldSnapshot) ExecutionResult {
	start := time.Now()
	res := ExecutionResult{Success: true}

	for _, action := range plan.Actions {
		var err error
		switch p := action.Params.(type) {
		case PassParams:
			// no side effects
		case DeliverParams:
			err = e.deliver(ctx, snap, p)
		case PickupParams:
			err = e.pickupAndDeliver(ctx, snap, p)
		case BuildParams:
			err = e.turns.BuildTrack(ctx, snap.GameID(), snap.BotPlayerID(), p.Segments, p.Cost)
		case UpgradeParams:
			err = e.turns.PurchaseTrainType(ctx, snap.GameID(), snap.BotUserID(), p.Kind, p.Target)
		default:
			err = fmt.Errorf("unknown action parameters for %s", action.Action)
		}
		if err != nil {
			res.Success = false
			res.Error = fmt.Sprintf("%s: %v", action.Action, err)
			break
		}
		res.ActionsCompleted++
	}

	res.Duration = time.Since(start)
	return res
}

// moveAlongPath persists one move per hop after the starting point. Each hop
// is billed at the same weight the reachability graph assigned its edge, so a
// path admitted within the movement budget stays affordable here.
func (e *TurnExecutor) moveAlongPath(ctx context.Context, snap *WorldSnapshot, path []board.GridPoint) error {
	for i := 1; i < len(path); i++ {
		hop := path[i]
		err := e.turns.MoveTrain(ctx, MoveRequest{
			GameID:       snap.GameID(),
			UserID:       snap.BotUserID(),
			To:           hop,
			MovementCost: hopCost(snap, path[i-1], hop),
		})
		if err != nil {
			return fmt.Errorf("move to %s: %w", hop, err)
		}
	}
	return nil
}

// hopCost mirrors the graph's edge weights: hops between mileposts of the
// same major city are free, everything else pays the destination's terrain
// entry cost.
func hopCost(snap *WorldSnapshot, from, to board.GridPoint) int {
	if cat := snap.Catalog(); cat != nil {
		if city := cat.MajorCityAt(from); city != "" && city == cat.MajorCityAt(to) {
			return 0
		}
	}
	cost := 1
	if mp, ok := snap.MilepostAt(to); ok {
		if c := mp.Terrain.EntryCost(); c > 0 {
			cost = c
		}
	}
	return cost
}

func (e *TurnExecutor) deliver(ctx context.Context, snap *WorldSnapshot, p DeliverParams) error {
	if err := e.moveAlongPath(ctx, snap, p.Path); err != nil {
		return err
	}
	if err := e.turns.DeliverLoad(ctx, snap.GameID(), snap.BotUserID(), p.City, p.Load, p.DemandCardID); err != nil {
		return fmt.Errorf("deliver %s at %s: %w", p.Load, p.City, err)
	}
	// Returning the consumed unit to the pool is informational only.
	if err := e.loads.ReturnLoad(ctx, p.City, p.Load); err != nil {
		log.Printf("[Executor] return load failed (ignored): city=%s load=%s err=%v", p.City, p.Load, err)
	}
	return nil
}

func (e *TurnExecutor) pickupAndDeliver(ctx context.Context, snap *WorldSnapshot, p PickupParams) error {
	if err := e.moveAlongPath(ctx, snap, p.Path); err != nil {
		return err
	}

	loads := append(snap.CarriedLoads(), p.Load)
	if err := e.turns.UpdateCarriedLoads(ctx, snap.GameID(), snap.BotPlayerID(), loads); err != nil {
		return fmt.Errorf("update carried loads: %w", err)
	}

	if p.FromDropped {
		if err := e.loads.PickupDroppedLoad(ctx, snap.GameID(), snap.BotPlayerID(), p.PickupCity, p.Load); err != nil {
			return fmt.Errorf("pick up dropped %s at %s: %w", p.Load, p.PickupCity, err)
		}
	} else {
		if err := e.loads.TakeCityLoad(ctx, p.PickupCity, p.Load); err != nil {
			return fmt.Errorf("take %s from %s stock: %w", p.Load, p.PickupCity, err)
		}
	}

	if p.Deliver != nil {
		return e.deliver(ctx, snap, *p.Deliver)
	}
	return nil
}
