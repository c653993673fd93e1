package bot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"railway-lite/board"
	"railway-lite/rail"
)

// GamePhase as seen by the pipeline.
type GamePhase string

const (
	PhaseInitialBuild GamePhase = "initialBuild"
	PhaseActive       GamePhase = "active"
)

// OpponentSummary is the bot's view of one other player.
type OpponentSummary struct {
	PlayerID        string
	Name            string
	Position        *board.GridPoint
	Money           int
	TrainType       board.TrainType
	Loads           []board.Load
	SegmentCount    int
	ConnectedCities int
}

// WorldSnapshot is one immutable point-in-time view of everything a bot needs
// to decide a turn. All fields are unexported; accessors hand out copies, so
// no consumer can mutate the captured state.
type WorldSnapshot struct {
	gameID      string
	botPlayerID string
	botUserID   string
	phase       GamePhase

	turnBuildSpend int
	position       *board.GridPoint
	money          int
	debt           int
	trainType      board.TrainType
	movement       int
	loads          []board.Load
	hand           []board.DemandCard

	ownSegments     []rail.TrackSegment
	connectedCities int

	opponents []OpponentSummary
	allTracks []rail.TrackRecord

	cityLoads     map[string][]board.Load
	droppedByCity map[string][]rail.DroppedLoad

	topo    board.Topology
	catalog *board.Catalog

	events []rail.GameEvent

	cfg rail.Config
}

func (s *WorldSnapshot) GameID() string             { return s.gameID }
func (s *WorldSnapshot) BotPlayerID() string        { return s.botPlayerID }
func (s *WorldSnapshot) BotUserID() string          { return s.botUserID }
func (s *WorldSnapshot) Phase() GamePhase           { return s.phase }
func (s *WorldSnapshot) TurnBuildSpend() int        { return s.turnBuildSpend }
func (s *WorldSnapshot) Money() int                 { return s.money }
func (s *WorldSnapshot) Debt() int                  { return s.debt }
func (s *WorldSnapshot) TrainType() board.TrainType { return s.trainType }
func (s *WorldSnapshot) MovementRemaining() int     { return s.movement }
func (s *WorldSnapshot) ConnectedCityCount() int    { return s.connectedCities }
func (s *WorldSnapshot) Config() rail.Config        { return s.cfg }

// Position returns a copy of the bot's position, or nil before placement.
func (s *WorldSnapshot) Position() *board.GridPoint {
	if s.position == nil {
		return nil
	}
	p := *s.position
	return &p
}

func (s *WorldSnapshot) CarriedLoads() []board.Load {
	return append([]board.Load(nil), s.loads...)
}

func (s *WorldSnapshot) Hand() []board.DemandCard {
	out := make([]board.DemandCard, len(s.hand))
	for i, c := range s.hand {
		out[i] = board.DemandCard{ID: c.ID, Demands: append([]board.Demand(nil), c.Demands...)}
	}
	return out
}

func (s *WorldSnapshot) OwnSegments() []rail.TrackSegment {
	return append([]rail.TrackSegment(nil), s.ownSegments...)
}

func (s *WorldSnapshot) Opponents() []OpponentSummary {
	out := make([]OpponentSummary, len(s.opponents))
	for i, o := range s.opponents {
		o.Loads = append([]board.Load(nil), o.Loads...)
		if o.Position != nil {
			p := *o.Position
			o.Position = &p
		}
		out[i] = o
	}
	return out
}

func (s *WorldSnapshot) AllTracks() []rail.TrackRecord {
	out := make([]rail.TrackRecord, len(s.allTracks))
	for i, tr := range s.allTracks {
		tr.Segments = append([]rail.TrackSegment(nil), tr.Segments...)
		out[i] = tr
	}
	return out
}

func (s *WorldSnapshot) CityLoads() map[string][]board.Load {
	out := make(map[string][]board.Load, len(s.cityLoads))
	for city, loads := range s.cityLoads {
		out[city] = append([]board.Load(nil), loads...)
	}
	return out
}

func (s *WorldSnapshot) DroppedByCity() map[string][]rail.DroppedLoad {
	out := make(map[string][]rail.DroppedLoad, len(s.droppedByCity))
	for city, drops := range s.droppedByCity {
		out[city] = append([]rail.DroppedLoad(nil), drops...)
	}
	return out
}

func (s *WorldSnapshot) ActiveEvents() []rail.GameEvent {
	return append([]rail.GameEvent(nil), s.events...)
}

// MilepostAt looks up the board topology without copying the whole map.
func (s *WorldSnapshot) MilepostAt(p board.GridPoint) (board.Milepost, bool) {
	mp, ok := s.topo[p]
	return mp, ok
}

// Topology returns a copy of the full board.
func (s *WorldSnapshot) Topology() board.Topology {
	out := make(board.Topology, len(s.topo))
	for p, mp := range s.topo {
		out[p] = mp
	}
	return out
}

func (s *WorldSnapshot) Catalog() *board.Catalog { return s.catalog }

// Graph builds the bot's own reachability network.
func (s *WorldSnapshot) Graph() *Graph {
	return NewGraph(s.ownSegments, s.topo, s.catalog)
}

// Digest is a short content hash identifying the captured state in audits.
func (s *WorldSnapshot) Digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%d|%d|%d|%d",
		s.gameID, s.botPlayerID, s.phase, s.money, s.debt, s.movement,
		s.turnBuildSpend, s.connectedCities)
	if s.position != nil {
		fmt.Fprintf(h, "|%s", s.position)
	}
	for _, l := range s.loads {
		fmt.Fprintf(h, "|%s", l)
	}
	for _, c := range s.hand {
		fmt.Fprintf(h, "|%s", c.ID)
	}
	for _, seg := range s.ownSegments {
		fmt.Fprintf(h, "|%s-%s", seg.From, seg.To)
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// SnapshotService captures world snapshots from the store.
type SnapshotService struct {
	games   GameReader
	loads   LoadService
	topo    board.Topology
	catalog *board.Catalog
	cfg     rail.Config
}

func NewSnapshotService(games GameReader, loads LoadService, topo board.Topology, catalog *board.Catalog, cfg rail.Config) *SnapshotService {
	return &SnapshotService{games: games, loads: loads, topo: topo, catalog: catalog, cfg: cfg}
}

// Capture reads game state and all track records concurrently and assembles
// the snapshot. It fails with rail.ErrGameNotFound / rail.ErrPlayerNotFound
// when the game or the bot's player record is missing.
func (s *SnapshotService) Capture(ctx context.Context, gameID, botPlayerID, botUserID string) (*WorldSnapshot, error) {
	type gameRes struct {
		game *rail.GameState
		err  error
	}
	type tracksRes struct {
		tracks []rail.TrackRecord
		err    error
	}
	gameCh := make(chan gameRes, 1)
	tracksCh := make(chan tracksRes, 1)
	go func() {
		g, err := s.games.GetGame(ctx, gameID, botUserID)
		gameCh <- gameRes{game: g, err: err}
	}()
	go func() {
		t, err := s.games.GetAllTracks(ctx, gameID)
		tracksCh <- tracksRes{tracks: t, err: err}
	}()
	gr := <-gameCh
	tr := <-tracksCh

	if gr.err != nil {
		return nil, gr.err
	}
	if gr.game == nil {
		return nil, rail.ErrGameNotFound
	}
	if tr.err != nil {
		return nil, tr.err
	}
	game := gr.game

	player := game.Player(botPlayerID)
	if player == nil {
		return nil, fmt.Errorf("%w: %s", rail.ErrPlayerNotFound, botPlayerID)
	}

	snap := &WorldSnapshot{
		gameID:        gameID,
		botPlayerID:   botPlayerID,
		botUserID:     botUserID,
		phase:         PhaseActive,
		money:         player.Money,
		debt:          player.Debt,
		trainType:     player.TrainType,
		topo:          s.topo,
		catalog:       s.catalog,
		cfg:           s.cfg,
		cityLoads:     make(map[string][]board.Load),
		droppedByCity: make(map[string][]rail.DroppedLoad),
	}
	if game.Status == rail.StatusInitialBuild {
		snap.phase = PhaseInitialBuild
	}

	// Position is legal to be nil: movement and loads then stay zero/empty.
	if player.Position != nil {
		p := *player.Position
		snap.position = &p
		snap.movement = player.MovementRemaining
		snap.loads = append([]board.Load(nil), player.Loads...)
	}
	snap.hand = append([]board.DemandCard(nil), player.Hand...)
	snap.events = append([]rail.GameEvent(nil), game.Events...)
	snap.allTracks = tr.tracks

	for _, rec := range tr.tracks {
		if rec.PlayerID == botPlayerID {
			snap.ownSegments = append([]rail.TrackSegment(nil), rec.Segments...)
			snap.turnBuildSpend = rec.TurnBuildSpend
		}
	}
	snap.connectedCities = NewGraph(snap.ownSegments, s.topo, s.catalog).ConnectedCityCount()

	for _, p := range game.Players {
		if p.ID == botPlayerID {
			continue
		}
		summary := OpponentSummary{
			PlayerID:  p.ID,
			Name:      p.Name,
			Money:     p.Money,
			TrainType: p.TrainType,
			Loads:     append([]board.Load(nil), p.Loads...),
		}
		if p.Position != nil {
			pos := *p.Position
			summary.Position = &pos
		}
		for _, rec := range tr.tracks {
			if rec.PlayerID == p.ID {
				summary.SegmentCount = len(rec.Segments)
				summary.ConnectedCities = NewGraph(rec.Segments, s.topo, s.catalog).ConnectedCityCount()
			}
		}
		snap.opponents = append(snap.opponents, summary)
	}

	// One scan of the board for city stock and dropped loads.
	cities := make(map[string]bool)
	for _, mp := range s.topo {
		if mp.City != "" {
			cities[mp.City] = true
		}
	}
	cityNames := make([]string, 0, len(cities))
	for city := range cities {
		cityNames = append(cityNames, city)
	}
	sort.Strings(cityNames)
	for _, city := range cityNames {
		loads, err := s.loads.AvailableLoadsForCity(ctx, city)
		if err != nil {
			return nil, fmt.Errorf("read city loads for %s: %w", city, err)
		}
		if len(loads) > 0 {
			snap.cityLoads[city] = loads
		}
	}
	dropped, err := s.loads.DroppedLoads(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("read dropped loads: %w", err)
	}
	for _, d := range dropped {
		snap.droppedByCity[d.City] = append(snap.droppedByCity[d.City], d)
	}

	return snap, nil
}
