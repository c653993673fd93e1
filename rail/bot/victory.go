package bot

import (
	"railway-lite/board"
	"railway-lite/rail"
)

// VictoryStatus reports whether a player currently satisfies the win
// condition and which major cities their best network connects.
type VictoryStatus struct {
	Eligible        bool
	Money           int
	ConnectedCities []string
}

// EvaluateVictory checks both thresholds at once: money at or above the
// configured amount, and the best track component connecting at least the
// configured number of major cities.
func EvaluateVictory(money int, segments []rail.TrackSegment, topo board.Topology, catalog *board.Catalog, cfg rail.Config) VictoryStatus {
	_, cities := NewGraph(segments, topo, catalog).BestComponent()
	return VictoryStatus{
		Eligible:        money >= cfg.VictoryMoney && len(cities) >= cfg.VictoryCities,
		Money:           money,
		ConnectedCities: cities,
	}
}
