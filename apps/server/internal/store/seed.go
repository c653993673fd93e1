package store

import (
	"context"
	"encoding/json"
	"fmt"

	"railway-lite/board"
	"railway-lite/rail"
)

// Seeding and turn-lifecycle helpers used by the server and botsim.

// CreateGame inserts a game document with its players.
func (s *Store) CreateGame(ctx context.Context, gs rail.GameState) error {
	events, _ := json.Marshal(gs.Events)
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO games (id, status, turn, events_json) VALUES (?, ?, ?, ?)`),
		gs.ID, string(gs.Status), gs.Turn, string(events))
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	for _, p := range gs.Players {
		loads, _ := json.Marshal(p.Loads)
		hand, _ := json.Marshal(p.Hand)
		var row, col any
		if p.Position != nil {
			row, col = p.Position.Row, p.Position.Col
		}
		isBot := 0
		if p.IsBot {
			isBot = 1
		}
		_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO players (id, game_id, user_id, name, is_bot, money, debt, train_type, pos_row, pos_col, movement, loads_json, hand_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			p.ID, gs.ID, p.UserID, p.Name, isBot, p.Money, p.Debt, int(p.TrainType),
			row, col, p.MovementRemaining, string(loads), string(hand))
		if err != nil {
			return fmt.Errorf("insert player %s: %w", p.ID, err)
		}
	}
	return nil
}

// SetGameStatus moves a game between initialBuild / active / complete.
func (s *Store) SetGameStatus(ctx context.Context, gameID string, status rail.GameStatus) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE games SET status = ? WHERE id = ?`), string(status), gameID)
	return err
}

// SeedCityStock replaces the stock quantities for the given cities.
func (s *Store) SeedCityStock(ctx context.Context, stock map[string][]board.Load) error {
	for city, loads := range stock {
		for _, l := range loads {
			_, err := s.db.ExecContext(ctx, s.rebind(
				`INSERT INTO city_loads (city, load, qty) VALUES (?, ?, ?)`),
				city, string(l), 3)
			if err != nil {
				return fmt.Errorf("seed stock %s/%s: %w", city, l, err)
			}
		}
	}
	return nil
}

// BeginTurn resets a player's per-turn counters: movement back to train
// speed, turn build spend back to zero.
func (s *Store) BeginTurn(ctx context.Context, gameID, playerID string) error {
	var train int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT train_type FROM players WHERE game_id = ? AND id = ?`),
		gameID, playerID).Scan(&train)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(
		`UPDATE players SET movement = ? WHERE id = ?`),
		board.TrainType(train).Speed(), playerID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(
		`UPDATE tracks SET turn_build_spend = 0 WHERE game_id = ? AND player_id = ?`),
		gameID, playerID)
	return err
}
