package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"railway-lite/board"
	"railway-lite/rail"
	"railway-lite/rail/bot"
)

// TurnService implementation: every method here is one durable transaction.

func (s *Store) MoveTrain(ctx context.Context, req bot.MoveRequest) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
UPDATE players SET pos_row = ?, pos_col = ?, movement = movement - ?
WHERE game_id = ? AND user_id = ? AND movement >= ?`),
		req.To.Row, req.To.Col, req.MovementCost, req.GameID, req.UserID, req.MovementCost)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rail.ErrInvalidAction(fmt.Sprintf("move to %s costs %d, not enough movement", req.To, req.MovementCost))
	}
	return nil
}

func (s *Store) DeliverLoad(ctx context.Context, gameID, userID, city string, load board.Load, demandCardID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		playerID  string
		money     int
		loadsJSON string
		handJSON  string
	)
	err = tx.QueryRowContext(ctx, s.rebind(
		`SELECT id, money, loads_json, hand_json FROM players WHERE game_id = ? AND user_id = ?`),
		gameID, userID).Scan(&playerID, &money, &loadsJSON, &handJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return rail.ErrPlayerNotFound
	}
	if err != nil {
		return err
	}

	var loads []board.Load
	var hand []board.DemandCard
	if err := json.Unmarshal([]byte(loadsJSON), &loads); err != nil {
		return fmt.Errorf("decode loads: %w", err)
	}
	if err := json.Unmarshal([]byte(handJSON), &hand); err != nil {
		return fmt.Errorf("decode hand: %w", err)
	}

	loadIdx := -1
	for i, l := range loads {
		if l == load {
			loadIdx = i
			break
		}
	}
	if loadIdx < 0 {
		return rail.ErrInvalidAction(fmt.Sprintf("not carrying %s", load))
	}

	payment := 0
	cardIdx := -1
	for i, c := range hand {
		if c.ID != demandCardID {
			continue
		}
		for _, d := range c.Demands {
			if d.City == city && d.Load == load {
				payment = d.Payment
				cardIdx = i
			}
		}
	}
	if cardIdx < 0 {
		return rail.ErrInvalidAction(fmt.Sprintf("no demand for %s at %s on card %s", load, city, demandCardID))
	}

	loads = append(loads[:loadIdx], loads[loadIdx+1:]...)
	hand = append(hand[:cardIdx], hand[cardIdx+1:]...)
	newLoads, _ := json.Marshal(loads)
	newHand, _ := json.Marshal(hand)

	_, err = tx.ExecContext(ctx, s.rebind(
		`UPDATE players SET money = ?, loads_json = ?, hand_json = ? WHERE id = ?`),
		money+payment, string(newLoads), string(newHand), playerID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) PurchaseTrainType(ctx context.Context, gameID, userID string, kind board.UpgradeKind, target board.TrainType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		playerID string
		money    int
		train    int
	)
	err = tx.QueryRowContext(ctx, s.rebind(
		`SELECT id, money, train_type FROM players WHERE game_id = ? AND user_id = ?`),
		gameID, userID).Scan(&playerID, &money, &train)
	if errors.Is(err, sql.ErrNoRows) {
		return rail.ErrPlayerNotFound
	}
	if err != nil {
		return err
	}

	cost := -1
	for _, up := range board.TrainType(train).Upgrades() {
		if up.To == target && up.Kind == kind {
			cost = up.Cost
		}
	}
	if cost < 0 {
		return rail.ErrInvalidAction(fmt.Sprintf("no %s from %s to %s", kind, board.TrainType(train), target))
	}
	if money < cost {
		return rail.ErrInvalidAction("insufficient funds for train purchase")
	}

	_, err = tx.ExecContext(ctx, s.rebind(
		`UPDATE players SET money = ?, train_type = ? WHERE id = ?`),
		money-cost, int(target), playerID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// BuildTrack read-merges the player's track record, appends the new segments,
// and deducts cost from money inside one transaction.
func (s *Store) BuildTrack(ctx context.Context, gameID, playerID string, segments []rail.TrackSegment, cost int) error {
	if len(segments) == 0 {
		return rail.ErrInvalidAction("no segments to build")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		segJSON string
		spend   int
		exists  = true
	)
	err = tx.QueryRowContext(ctx, s.rebind(
		`SELECT segments_json, turn_build_spend FROM tracks WHERE game_id = ? AND player_id = ?`),
		gameID, playerID).Scan(&segJSON, &spend)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
		segJSON = "[]"
	} else if err != nil {
		return err
	}

	var existing []rail.TrackSegment
	if err := json.Unmarshal([]byte(segJSON), &existing); err != nil {
		return fmt.Errorf("decode segments: %w", err)
	}
	merged, _ := json.Marshal(append(existing, segments...))

	if exists {
		_, err = tx.ExecContext(ctx, s.rebind(
			`UPDATE tracks SET segments_json = ?, turn_build_spend = ? WHERE game_id = ? AND player_id = ?`),
			string(merged), spend+cost, gameID, playerID)
	} else {
		_, err = tx.ExecContext(ctx, s.rebind(
			`INSERT INTO tracks (game_id, player_id, segments_json, turn_build_spend) VALUES (?, ?, ?, ?)`),
			gameID, playerID, string(merged), cost)
	}
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, s.rebind(
		`UPDATE players SET money = money - ? WHERE id = ? AND money >= ?`), cost, playerID, cost)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rail.ErrInvalidAction(fmt.Sprintf("build cost %d exceeds funds", cost))
	}
	return tx.Commit()
}

func (s *Store) UpdateCarriedLoads(ctx context.Context, gameID, playerID string, loads []board.Load) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var train int
	err = tx.QueryRowContext(ctx, s.rebind(
		`SELECT train_type FROM players WHERE game_id = ? AND id = ?`),
		gameID, playerID).Scan(&train)
	if errors.Is(err, sql.ErrNoRows) {
		return rail.ErrPlayerNotFound
	}
	if err != nil {
		return err
	}
	if len(loads) > board.TrainType(train).Capacity() {
		return rail.ErrInvalidAction(fmt.Sprintf("%d loads exceed %s capacity", len(loads), board.TrainType(train)))
	}

	raw, _ := json.Marshal(loads)
	_, err = tx.ExecContext(ctx, s.rebind(
		`UPDATE players SET loads_json = ? WHERE id = ?`), string(raw), playerID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// --- AuditStore ---

func (s *Store) SaveTurnAudit(ctx context.Context, gameID, botPlayerID string, audit *bot.StrategyAudit) error {
	raw, err := json.Marshal(audit)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO turn_audits (id, game_id, bot_player_id, turn_number, audit_json, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?)`),
		audit.ID, gameID, botPlayerID, audit.TurnNumber, string(raw), time.Now().UTC().UnixMilli())
	return err
}

// RecentAudits returns the newest audits for a game, newest first.
func (s *Store) RecentAudits(ctx context.Context, gameID string, limit int) ([]*bot.StrategyAudit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT audit_json FROM turn_audits WHERE game_id = ? ORDER BY created_at_ms DESC LIMIT ?`),
		gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*bot.StrategyAudit
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var a bot.StrategyAudit
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decode audit: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
