package store

import (
	"context"
	"errors"
	"testing"

	"railway-lite/board"
	"railway-lite/rail"
	"railway-lite/rail/bot"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTestGame(t *testing.T, s *Store) {
	t.Helper()
	pos := board.GridPoint{Row: 1, Col: 2}
	err := s.CreateGame(context.Background(), rail.GameState{
		ID:     "g1",
		Status: rail.StatusActive,
		Turn:   1,
		Players: []rail.PlayerState{
			{
				ID: "p1", UserID: "u1", Name: "Bot", IsBot: true,
				Money: 50, TrainType: board.TrainFreight,
				Position: &pos, MovementRemaining: 9,
				Loads: []board.Load{board.LoadCoal},
				Hand: []board.DemandCard{{
					ID:      "d1",
					Demands: []board.Demand{{City: "Aurora", Load: board.LoadCoal, Payment: 22}},
				}},
			},
			{ID: "p2", UserID: "u2", Name: "Rival", Money: 50},
		},
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
}

func TestCreateAndGetGame(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)

	gs, err := s.GetGame(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if gs.Status != rail.StatusActive || len(gs.Players) != 2 {
		t.Fatalf("game = %+v", gs)
	}

	p := gs.Player("p1")
	if p == nil {
		t.Fatal("missing bot player")
	}
	if !p.IsBot || p.Money != 50 || p.MovementRemaining != 9 {
		t.Fatalf("player = %+v", p)
	}
	if p.Position == nil || p.Position.Row != 1 || p.Position.Col != 2 {
		t.Fatalf("position = %v", p.Position)
	}
	if len(p.Loads) != 1 || p.Loads[0] != board.LoadCoal {
		t.Fatalf("loads = %v", p.Loads)
	}
	if len(p.Hand) != 1 || p.Hand[0].Demands[0].Payment != 22 {
		t.Fatalf("hand = %+v", p.Hand)
	}

	// The rival never placed a train.
	if rival := gs.Player("p2"); rival.Position != nil {
		t.Fatalf("rival position = %v", rival.Position)
	}
}

func TestGetGameNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetGame(context.Background(), "missing", "u1"); !errors.Is(err, rail.ErrGameNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestMoveTrain(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)
	ctx := context.Background()

	req := bot.MoveRequest{GameID: "g1", UserID: "u1", To: board.GridPoint{Row: 1, Col: 3}, MovementCost: 5}
	if err := s.MoveTrain(ctx, req); err != nil {
		t.Fatalf("move: %v", err)
	}

	gs, _ := s.GetGame(ctx, "g1", "u1")
	p := gs.Player("p1")
	if p.MovementRemaining != 4 || p.Position.Col != 3 {
		t.Fatalf("after move: %+v", p)
	}

	// 4 movement left, a 5-cost hop must be refused.
	err := s.MoveTrain(ctx, req)
	var invalid rail.InvalidActionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeliverLoad(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)
	ctx := context.Background()

	if err := s.DeliverLoad(ctx, "g1", "u1", "Aurora", board.LoadCoal, "d1"); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	gs, _ := s.GetGame(ctx, "g1", "u1")
	p := gs.Player("p1")
	if p.Money != 72 {
		t.Fatalf("money = %d, want 72", p.Money)
	}
	if len(p.Loads) != 0 || len(p.Hand) != 0 {
		t.Fatalf("load and card should be consumed: %+v", p)
	}

	// The load is gone now.
	err := s.DeliverLoad(ctx, "g1", "u1", "Aurora", board.LoadCoal, "d1")
	var invalid rail.InvalidActionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeliverLoadWrongCity(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)

	err := s.DeliverLoad(context.Background(), "g1", "u1", "Blackwater", board.LoadCoal, "d1")
	var invalid rail.InvalidActionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestPurchaseTrainType(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)
	ctx := context.Background()

	if err := s.PurchaseTrainType(ctx, "g1", "u1", board.UpgradeKindUpgrade, board.TrainFastFreight); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	gs, _ := s.GetGame(ctx, "g1", "u1")
	p := gs.Player("p1")
	if p.TrainType != board.TrainFastFreight || p.Money != 30 {
		t.Fatalf("after purchase: train=%s money=%d", p.TrainType, p.Money)
	}

	// No transition from fastFreight back to freight.
	err := s.PurchaseTrainType(ctx, "g1", "u1", board.UpgradeKindUpgrade, board.TrainFreight)
	var invalid rail.InvalidActionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildTrackMergesAndDeducts(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)
	ctx := context.Background()

	first := []rail.TrackSegment{{From: board.GridPoint{Row: 1, Col: 2}, To: board.GridPoint{Row: 1, Col: 3}, Cost: 1}}
	if err := s.BuildTrack(ctx, "g1", "p1", first, 1); err != nil {
		t.Fatalf("build: %v", err)
	}
	second := []rail.TrackSegment{{From: board.GridPoint{Row: 1, Col: 3}, To: board.GridPoint{Row: 1, Col: 4}, Cost: 1}}
	if err := s.BuildTrack(ctx, "g1", "p1", second, 1); err != nil {
		t.Fatalf("build: %v", err)
	}

	rec, err := s.GetTrackState(ctx, "g1", "p1")
	if err != nil || rec == nil {
		t.Fatalf("track state: %v %v", rec, err)
	}
	if len(rec.Segments) != 2 || rec.TurnBuildSpend != 2 {
		t.Fatalf("track = %+v", rec)
	}

	gs, _ := s.GetGame(ctx, "g1", "u1")
	if money := gs.Player("p1").Money; money != 48 {
		t.Fatalf("money = %d, want 48", money)
	}

	// Unaffordable builds leave both track and money untouched.
	err = s.BuildTrack(ctx, "g1", "p1", first, 500)
	var invalid rail.InvalidActionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v", err)
	}
	rec, _ = s.GetTrackState(ctx, "g1", "p1")
	if len(rec.Segments) != 2 {
		t.Fatalf("failed build must roll back, track = %+v", rec)
	}
}

func TestGetTrackStateMissing(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)
	rec, err := s.GetTrackState(context.Background(), "g1", "p2")
	if err != nil || rec != nil {
		t.Fatalf("expected nil, nil: %v %v", rec, err)
	}
}

func TestBeginTurnResetsCounters(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)
	ctx := context.Background()

	segs := []rail.TrackSegment{{From: board.GridPoint{Row: 1, Col: 2}, To: board.GridPoint{Row: 1, Col: 3}, Cost: 1}}
	if err := s.BuildTrack(ctx, "g1", "p1", segs, 8); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := s.MoveTrain(ctx, bot.MoveRequest{GameID: "g1", UserID: "u1", To: board.GridPoint{Row: 1, Col: 3}, MovementCost: 6}); err != nil {
		t.Fatalf("move: %v", err)
	}

	if err := s.BeginTurn(ctx, "g1", "p1"); err != nil {
		t.Fatalf("begin turn: %v", err)
	}

	gs, _ := s.GetGame(ctx, "g1", "u1")
	if mv := gs.Player("p1").MovementRemaining; mv != board.TrainFreight.Speed() {
		t.Fatalf("movement = %d", mv)
	}
	rec, _ := s.GetTrackState(ctx, "g1", "p1")
	if rec.TurnBuildSpend != 0 {
		t.Fatalf("turn build spend = %d", rec.TurnBuildSpend)
	}
}

func TestUpdateCarriedLoadsCapacity(t *testing.T) {
	s := newTestStore(t)
	seedTestGame(t, s)
	ctx := context.Background()

	if err := s.UpdateCarriedLoads(ctx, "g1", "p1", []board.Load{board.LoadCoal, board.LoadOil}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Freight carries two loads, never three.
	err := s.UpdateCarriedLoads(ctx, "g1", "p1", []board.Load{board.LoadCoal, board.LoadOil, board.LoadWheat})
	var invalid rail.InvalidActionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestCityStockLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SeedCityStock(ctx, map[string][]board.Load{"Aurora": {board.LoadSteel}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loads, err := s.AvailableLoadsForCity(ctx, "Aurora")
	if err != nil || len(loads) != 1 || loads[0] != board.LoadSteel {
		t.Fatalf("available = %v %v", loads, err)
	}

	// Stock seeds three deep; the fourth take fails.
	for i := 0; i < 3; i++ {
		if err := s.TakeCityLoad(ctx, "Aurora", board.LoadSteel); err != nil {
			t.Fatalf("take %d: %v", i+1, err)
		}
	}
	if err := s.TakeCityLoad(ctx, "Aurora", board.LoadSteel); !errors.Is(err, rail.ErrNoSuchLoad) {
		t.Fatalf("err = %v", err)
	}
	if loads, _ := s.AvailableLoadsForCity(ctx, "Aurora"); len(loads) != 0 {
		t.Fatalf("exhausted stock still listed: %v", loads)
	}

	// Returning restores one unit.
	if err := s.ReturnLoad(ctx, "Aurora", board.LoadSteel); err != nil {
		t.Fatalf("return: %v", err)
	}
	if err := s.TakeCityLoad(ctx, "Aurora", board.LoadSteel); err != nil {
		t.Fatalf("take after return: %v", err)
	}

	// Returning an unseeded load inserts a fresh row.
	if err := s.ReturnLoad(ctx, "Harlow", board.LoadFish); err != nil {
		t.Fatalf("return new: %v", err)
	}
	if loads, _ := s.AvailableLoadsForCity(ctx, "Harlow"); len(loads) != 1 {
		t.Fatalf("harlow stock = %v", loads)
	}
}

func TestDroppedLoadLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.DropLoad(ctx, "g1", "p2", "Calder", board.LoadWheat); err != nil {
		t.Fatalf("drop: %v", err)
	}
	dropped, err := s.DroppedLoads(ctx, "g1")
	if err != nil || len(dropped) != 1 {
		t.Fatalf("dropped = %v %v", dropped, err)
	}
	if dropped[0].City != "Calder" || dropped[0].Load != board.LoadWheat {
		t.Fatalf("dropped = %+v", dropped[0])
	}

	if err := s.PickupDroppedLoad(ctx, "g1", "p1", "Calder", board.LoadWheat); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if err := s.PickupDroppedLoad(ctx, "g1", "p1", "Calder", board.LoadWheat); !errors.Is(err, rail.ErrNoSuchLoad) {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveAndReadAudits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &bot.StrategyAudit{ID: "a1", GameID: "g1", BotPlayerID: "p1", TurnNumber: 1, PlanText: "Pass the turn"}
	if err := s.SaveTurnAudit(ctx, "g1", "p1", a); err != nil {
		t.Fatalf("save: %v", err)
	}

	audits, err := s.RecentAudits(ctx, "g1", 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(audits) != 1 || audits[0].ID != "a1" || audits[0].PlanText != "Pass the turn" {
		t.Fatalf("audits = %+v", audits)
	}

	if audits, _ := s.RecentAudits(ctx, "other", 10); len(audits) != 0 {
		t.Fatalf("cross-game audits leaked: %+v", audits)
	}
}
