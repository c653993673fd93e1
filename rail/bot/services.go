package bot

import (
	"context"

	"railway-lite/board"
	"railway-lite/rail"
)

// The bot pipeline consumes game state and applies actions only through these
// contracts. The server's store and gateway implement them; tests use fakes.

// GameReader reads persisted game and track state.
type GameReader interface {
	// GetGame returns nil with rail.ErrGameNotFound when the game is missing.
	GetGame(ctx context.Context, gameID, userID string) (*rail.GameState, error)
	GetAllTracks(ctx context.Context, gameID string) ([]rail.TrackRecord, error)
	// GetTrackState returns nil without error when the player has no track yet.
	GetTrackState(ctx context.Context, gameID, playerID string) (*rail.TrackRecord, error)
}

// LoadService reads and adjusts the load economy.
type LoadService interface {
	AvailableLoadsForCity(ctx context.Context, city string) ([]board.Load, error)
	DroppedLoads(ctx context.Context, gameID string) ([]rail.DroppedLoad, error)
	PickupDroppedLoad(ctx context.Context, gameID, playerID, city string, load board.Load) error
	// TakeCityLoad removes one unit of city stock during a pickup.
	TakeCityLoad(ctx context.Context, city string, load board.Load) error
	// ReturnLoad is best-effort: failures are logged by callers, never fatal.
	ReturnLoad(ctx context.Context, city string, load board.Load) error
}

// MoveRequest is one persisted train hop.
type MoveRequest struct {
	GameID       string
	UserID       string
	To           board.GridPoint
	MovementCost int
}

// TurnService applies the bot's mutations. Each call is one durable
// transaction; atomicity lives at the storage boundary.
type TurnService interface {
	MoveTrain(ctx context.Context, req MoveRequest) error
	DeliverLoad(ctx context.Context, gameID, userID, city string, load board.Load, demandCardID string) error
	PurchaseTrainType(ctx context.Context, gameID, userID string, kind board.UpgradeKind, target board.TrainType) error
	// BuildTrack read-merges the player's track record, appends segments, and
	// deducts cost as a single transaction.
	BuildTrack(ctx context.Context, gameID, playerID string, segments []rail.TrackSegment, cost int) error
	// UpdateCarriedLoads is the read-modify-write step of a pickup.
	UpdateCarriedLoads(ctx context.Context, gameID, playerID string, loads []board.Load) error
}

// AuditStore persists turn audits, best-effort.
type AuditStore interface {
	SaveTurnAudit(ctx context.Context, gameID, botPlayerID string, audit *StrategyAudit) error
}

// Emitter pushes game events to connected clients.
type Emitter interface {
	EmitToGame(gameID, event string, payload any)
}
