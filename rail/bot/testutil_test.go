package bot

import (
	"context"
	"errors"

	"railway-lite/board"
	"railway-lite/rail"
)

// Shared fakes and snapshot builders for the pipeline tests.

func testWorld() (board.Topology, *board.Catalog) {
	catalog := board.BuiltinCatalog()
	return board.BuiltinTopology(catalog), catalog
}

// newTestSnapshot builds an active-phase snapshot positioned at Aurora with
// sensible defaults; mutate adjusts fields before returning.
func newTestSnapshot(mutate func(*WorldSnapshot)) *WorldSnapshot {
	topo, catalog := testWorld()
	pos := board.GridPoint{Row: 1, Col: 2}
	snap := &WorldSnapshot{
		gameID:        "g1",
		botPlayerID:   "p1",
		botUserID:     "u1",
		phase:         PhaseActive,
		money:         50,
		trainType:     board.TrainFreight,
		movement:      board.TrainFreight.Speed(),
		position:      &pos,
		topo:          topo,
		catalog:       catalog,
		cfg:           rail.DefaultConfig(),
		cityLoads:     make(map[string][]board.Load),
		droppedByCity: make(map[string][]rail.DroppedLoad),
	}
	if mutate != nil {
		mutate(snap)
	}
	return snap
}

type fakeGameReader struct {
	game      *rail.GameState
	tracks    []rail.TrackRecord
	gameErr   error
	tracksErr error
}

func (f *fakeGameReader) GetGame(ctx context.Context, gameID, userID string) (*rail.GameState, error) {
	if f.gameErr != nil {
		return nil, f.gameErr
	}
	if f.game == nil {
		return nil, rail.ErrGameNotFound
	}
	return f.game, nil
}

func (f *fakeGameReader) GetAllTracks(ctx context.Context, gameID string) ([]rail.TrackRecord, error) {
	return f.tracks, f.tracksErr
}

func (f *fakeGameReader) GetTrackState(ctx context.Context, gameID, playerID string) (*rail.TrackRecord, error) {
	for i := range f.tracks {
		if f.tracks[i].PlayerID == playerID {
			return &f.tracks[i], nil
		}
	}
	return nil, nil
}

type fakeLoadService struct {
	cityLoads map[string][]board.Load
	dropped   []rail.DroppedLoad

	takes     int
	returns   int
	pickups   int
	returnErr error
}

func (f *fakeLoadService) AvailableLoadsForCity(ctx context.Context, city string) ([]board.Load, error) {
	return f.cityLoads[city], nil
}

func (f *fakeLoadService) DroppedLoads(ctx context.Context, gameID string) ([]rail.DroppedLoad, error) {
	return f.dropped, nil
}

func (f *fakeLoadService) PickupDroppedLoad(ctx context.Context, gameID, playerID, city string, load board.Load) error {
	f.pickups++
	return nil
}

func (f *fakeLoadService) TakeCityLoad(ctx context.Context, city string, load board.Load) error {
	f.takes++
	return nil
}

func (f *fakeLoadService) ReturnLoad(ctx context.Context, city string, load board.Load) error {
	f.returns++
	return f.returnErr
}

type fakeTurnService struct {
	moves      []MoveRequest
	deliveries int
	builds     int
	upgrades   int
	loadWrites int

	moveErr    error
	deliverErr error
	buildErr   error
	upgradeErr error
	loadsErr   error
}

func (f *fakeTurnService) MoveTrain(ctx context.Context, req MoveRequest) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, req)
	return nil
}

func (f *fakeTurnService) DeliverLoad(ctx context.Context, gameID, userID, city string, load board.Load, demandCardID string) error {
	if f.deliverErr != nil {
		return f.deliverErr
	}
	f.deliveries++
	return nil
}

func (f *fakeTurnService) PurchaseTrainType(ctx context.Context, gameID, userID string, kind board.UpgradeKind, target board.TrainType) error {
	if f.upgradeErr != nil {
		return f.upgradeErr
	}
	f.upgrades++
	return nil
}

func (f *fakeTurnService) BuildTrack(ctx context.Context, gameID, playerID string, segments []rail.TrackSegment, cost int) error {
	if f.buildErr != nil {
		return f.buildErr
	}
	f.builds++
	return nil
}

func (f *fakeTurnService) UpdateCarriedLoads(ctx context.Context, gameID, playerID string, loads []board.Load) error {
	if f.loadsErr != nil {
		return f.loadsErr
	}
	f.loadWrites++
	return nil
}

type fakeAuditStore struct {
	saved []*StrategyAudit
	err   error
}

func (f *fakeAuditStore) SaveTurnAudit(ctx context.Context, gameID, botPlayerID string, audit *StrategyAudit) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, audit)
	return nil
}

type emittedEvent struct {
	gameID  string
	event   string
	payload any
}

type fakeEmitter struct {
	events []emittedEvent
}

func (f *fakeEmitter) EmitToGame(gameID, event string, payload any) {
	f.events = append(f.events, emittedEvent{gameID: gameID, event: event, payload: payload})
}

var errBoom = errors.New("boom")
