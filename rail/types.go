package rail

import (
	"railway-lite/board"
)

// GameStatus 游戏状态
type GameStatus string

const (
	StatusInitialBuild GameStatus = "initialBuild"
	StatusActive       GameStatus = "active"
	StatusComplete     GameStatus = "complete"
)

// PlayerState is one player's live record as read from the store.
type PlayerState struct {
	ID        string
	UserID    string
	Name      string
	IsBot     bool
	Money     int
	Debt      int
	TrainType board.TrainType
	// Position is nil until the player places their train.
	Position          *board.GridPoint
	MovementRemaining int
	Loads             []board.Load
	Hand              []board.DemandCard
}

// TrackSegment is one built edge between two adjacent mileposts.
type TrackSegment struct {
	From board.GridPoint `json:"from"`
	To   board.GridPoint `json:"to"`
	Cost int             `json:"cost"`
}

// TrackRecord is a player's accumulated track plus the build spend committed
// so far this turn.
type TrackRecord struct {
	GameID         string
	PlayerID       string
	Segments       []TrackSegment
	TurnBuildSpend int
}

// DroppedLoad is a load set down in a city by some player, available for any
// train to pick back up.
type DroppedLoad struct {
	City     string     `json:"city"`
	Load     board.Load `json:"load"`
	PlayerID string     `json:"playerId"`
}

// GameEvent is an active board event (derailment, flood, tax) that the bot
// pipeline reads but does not resolve.
type GameEvent struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// GameState is the full game document the store returns.
type GameState struct {
	ID      string
	Status  GameStatus
	Turn    int
	Players []PlayerState
	Events  []GameEvent
}

// Player returns the player with the given ID, or nil.
func (g *GameState) Player(playerID string) *PlayerState {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return &g.Players[i]
		}
	}
	return nil
}
