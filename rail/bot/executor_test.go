package bot

import (
	"context"
	"strings"
	"testing"

	"railway-lite/board"
	"railway-lite/rail"
)

func TestExecutePassHasNoSideEffects(t *testing.T) {
	turns := &fakeTurnService{}
	loads := &fakeLoadService{}
	ex := NewTurnExecutor(turns, loads)
	snap := newTestSnapshot(nil)

	plan := TurnPlan{Actions: []Feasible{{Action: ActionPassTurn, Description: "Pass the turn", Params: PassParams{}}}}
	res := ex.Execute(context.Background(), plan, snap)

	if !res.Success || res.ActionsCompleted != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(turns.moves) != 0 || turns.deliveries != 0 || turns.builds != 0 || loads.takes != 0 {
		t.Fatal("pass must not touch the store")
	}
}

func TestExecuteDelivery(t *testing.T) {
	turns := &fakeTurnService{}
	loads := &fakeLoadService{}
	ex := NewTurnExecutor(turns, loads)
	snap := newTestSnapshot(nil)

	path := []board.GridPoint{{Row: 1, Col: 2}, {Row: 2, Col: 3}, {Row: 2, Col: 4}}
	plan := TurnPlan{Actions: []Feasible{{
		Action:      ActionDeliverLoad,
		Description: "Deliver coal to Aurora for 22",
		Params: DeliverParams{
			Load: board.LoadCoal, City: "Aurora", DemandCardID: "d1",
			Payment: 22, Path: path, MoveCost: 1,
		},
	}}}
	res := ex.Execute(context.Background(), plan, snap)

	if !res.Success || res.ActionsCompleted != 1 {
		t.Fatalf("result = %+v", res)
	}
	// One persisted hop per path point after the start.
	if len(turns.moves) != 2 {
		t.Fatalf("moves = %+v", turns.moves)
	}
	if turns.moves[0].To != path[1] || turns.moves[1].To != path[2] {
		t.Fatalf("hops = %+v", turns.moves)
	}
	// (1,2) to (2,3) stays inside Aurora, (2,4) is clear ground.
	if turns.moves[0].MovementCost != 0 || turns.moves[1].MovementCost != 1 {
		t.Fatalf("movement costs = %+v", turns.moves)
	}
	if turns.deliveries != 1 {
		t.Fatalf("deliveries = %d", turns.deliveries)
	}
	if loads.returns != 1 {
		t.Fatalf("returns = %d", loads.returns)
	}
}

func TestExecuteDeliveryReturnLoadBestEffort(t *testing.T) {
	turns := &fakeTurnService{}
	loads := &fakeLoadService{returnErr: errBoom}
	ex := NewTurnExecutor(turns, loads)
	snap := newTestSnapshot(nil)

	plan := TurnPlan{Actions: []Feasible{{
		Action: ActionDeliverLoad,
		Params: DeliverParams{
			Load: board.LoadCoal, City: "Aurora", DemandCardID: "d1",
			Path: []board.GridPoint{{Row: 1, Col: 2}},
		},
	}}}
	res := ex.Execute(context.Background(), plan, snap)
	if !res.Success {
		t.Fatalf("return-load failure must not fail the turn: %+v", res)
	}
}

func TestExecuteStopsAtFirstFailure(t *testing.T) {
	turns := &fakeTurnService{buildErr: errBoom}
	loads := &fakeLoadService{}
	ex := NewTurnExecutor(turns, loads)
	snap := newTestSnapshot(nil)

	plan := TurnPlan{Actions: []Feasible{
		{
			Action: ActionDeliverLoad,
			Params: DeliverParams{
				Load: board.LoadCoal, City: "Aurora", DemandCardID: "d1",
				Path: []board.GridPoint{{Row: 1, Col: 2}},
			},
		},
		{
			Action: ActionBuildTrack,
			Params: BuildParams{
				Segments: []rail.TrackSegment{{From: board.GridPoint{Row: 1, Col: 3}, To: board.GridPoint{Row: 1, Col: 4}, Cost: 1}},
				Cost:     1,
			},
		},
		{Action: ActionPassTurn, Params: PassParams{}},
	}}
	res := ex.Execute(context.Background(), plan, snap)

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.ActionsCompleted != 1 {
		t.Fatalf("completed = %d, want 1", res.ActionsCompleted)
	}
	if !strings.Contains(res.Error, "buildTrack") {
		t.Fatalf("error = %q", res.Error)
	}
	// The delivery before the failure went through; nothing after it ran.
	if turns.deliveries != 1 {
		t.Fatalf("deliveries = %d", turns.deliveries)
	}
}

func TestExecutePickupFromCityStock(t *testing.T) {
	turns := &fakeTurnService{}
	loads := &fakeLoadService{}
	ex := NewTurnExecutor(turns, loads)
	snap := newTestSnapshot(nil)

	plan := TurnPlan{Actions: []Feasible{{
		Action: ActionPickupAndDeliver,
		Params: PickupParams{
			Load: board.LoadWheat, PickupCity: "Aurora",
			Path: []board.GridPoint{{Row: 1, Col: 2}},
		},
	}}}
	res := ex.Execute(context.Background(), plan, snap)

	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if turns.loadWrites != 1 || loads.takes != 1 || loads.pickups != 0 {
		t.Fatalf("loadWrites=%d takes=%d pickups=%d", turns.loadWrites, loads.takes, loads.pickups)
	}
}

func TestExecutePickupFromDropped(t *testing.T) {
	turns := &fakeTurnService{}
	loads := &fakeLoadService{}
	ex := NewTurnExecutor(turns, loads)
	snap := newTestSnapshot(nil)

	plan := TurnPlan{Actions: []Feasible{{
		Action: ActionPickupAndDeliver,
		Params: PickupParams{
			Load: board.LoadWheat, PickupCity: "Aurora", FromDropped: true,
			Path: []board.GridPoint{{Row: 1, Col: 2}},
			Deliver: &DeliverParams{
				Load: board.LoadWheat, City: "Aurora", DemandCardID: "d1",
				Path: []board.GridPoint{{Row: 1, Col: 2}},
			},
		},
	}}}
	res := ex.Execute(context.Background(), plan, snap)

	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if loads.pickups != 1 || loads.takes != 0 {
		t.Fatalf("pickups=%d takes=%d", loads.pickups, loads.takes)
	}
	// The chained delivery leg ran too.
	if turns.deliveries != 1 {
		t.Fatalf("deliveries = %d", turns.deliveries)
	}
}

func TestExecuteUpgrade(t *testing.T) {
	turns := &fakeTurnService{}
	ex := NewTurnExecutor(turns, &fakeLoadService{})
	snap := newTestSnapshot(nil)

	plan := TurnPlan{Actions: []Feasible{{
		Action: ActionUpgradeTrain,
		Params: UpgradeParams{Kind: board.UpgradeKindUpgrade, Target: board.TrainFastFreight, Cost: 20},
	}}}
	res := ex.Execute(context.Background(), plan, snap)
	if !res.Success || turns.upgrades != 1 {
		t.Fatalf("result=%+v upgrades=%d", res, turns.upgrades)
	}
}

func TestExecuteMoveBillsGraphEdgeWeights(t *testing.T) {
	// Hops between mileposts of one major city are free, matching the
	// weights reachability priced the path with; entering a city from
	// outside pays the full entry cost.
	turns := &fakeTurnService{}
	ex := NewTurnExecutor(turns, &fakeLoadService{})
	snap := newTestSnapshot(nil)

	path := []board.GridPoint{{Row: 1, Col: 1}, {Row: 1, Col: 3}, {Row: 1, Col: 4}, {Row: 1, Col: 3}}
	plan := TurnPlan{Actions: []Feasible{{
		Action:      ActionDeliverLoad,
		Description: "Deliver coal to Aurora for 22",
		Params: DeliverParams{
			Load: board.LoadCoal, City: "Aurora", DemandCardID: "d1",
			Payment: 22, Path: path,
		},
	}}}
	if res := ex.Execute(context.Background(), plan, snap); !res.Success {
		t.Fatalf("result = %+v", res)
	}
	want := []int{0, 1, 5}
	if len(turns.moves) != len(want) {
		t.Fatalf("moves = %+v", turns.moves)
	}
	for i, w := range want {
		if turns.moves[i].MovementCost != w {
			t.Fatalf("hop %d cost = %d, want %d", i, turns.moves[i].MovementCost, w)
		}
	}
}
