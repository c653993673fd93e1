package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"railway-lite/board"
	"railway-lite/rail"
	"railway-lite/rail/bot"
)

const defaultLocalDBName = "railway_local.db"

// Store is the durable game state backend. It implements the bot package's
// GameReader, LoadService, TurnService, and AuditStore contracts over either
// sqlite (local) or postgres (RAIL_DATABASE_URL).
type Store struct {
	db       *sql.DB
	postgres bool
}

var (
	_ bot.GameReader  = (*Store)(nil)
	_ bot.LoadService = (*Store)(nil)
	_ bot.TurnService = (*Store)(nil)
	_ bot.AuditStore  = (*Store)(nil)
)

// NewFromEnv picks postgres when RAIL_DATABASE_URL is set, otherwise a local
// sqlite file (RAIL_SQLITE_PATH, default railway_local.db). Returns the mode
// string for startup logging.
func NewFromEnv() (*Store, string, error) {
	if url := strings.TrimSpace(os.Getenv("RAIL_DATABASE_URL")); url != "" {
		s, err := NewPostgres(url)
		return s, "postgres", err
	}
	path := strings.TrimSpace(os.Getenv("RAIL_SQLITE_PATH"))
	if path == "" {
		path = defaultLocalDBName
	}
	s, err := NewSQLite(path)
	return s, "sqlite:" + path, err
}

// NewSQLite opens (and migrates) a sqlite database. ":memory:" is supported
// for tests and botsim.
func NewSQLite(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres opens (and migrates) a postgres database.
func NewPostgres(url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{db: db, postgres: true}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind converts ?-style placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    turn INTEGER NOT NULL DEFAULT 0,
    events_json TEXT NOT NULL DEFAULT '[]'
)`,
		`CREATE TABLE IF NOT EXISTS players (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    is_bot INTEGER NOT NULL DEFAULT 0,
    money INTEGER NOT NULL DEFAULT 0,
    debt INTEGER NOT NULL DEFAULT 0,
    train_type INTEGER NOT NULL DEFAULT 0,
    pos_row INTEGER,
    pos_col INTEGER,
    movement INTEGER NOT NULL DEFAULT 0,
    loads_json TEXT NOT NULL DEFAULT '[]',
    hand_json TEXT NOT NULL DEFAULT '[]'
)`,
		`CREATE TABLE IF NOT EXISTS tracks (
    game_id TEXT NOT NULL,
    player_id TEXT NOT NULL,
    segments_json TEXT NOT NULL DEFAULT '[]',
    turn_build_spend INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (game_id, player_id)
)`,
		`CREATE TABLE IF NOT EXISTS city_loads (
    city TEXT NOT NULL,
    load TEXT NOT NULL,
    qty INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (city, load)
)`,
		`CREATE TABLE IF NOT EXISTS dropped_loads (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL,
    city TEXT NOT NULL,
    load TEXT NOT NULL,
    player_id TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS turn_audits (
    id TEXT PRIMARY KEY,
    game_id TEXT NOT NULL,
    bot_player_id TEXT NOT NULL,
    turn_number INTEGER NOT NULL,
    audit_json TEXT NOT NULL,
    created_at_ms BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_players_game ON players (game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_game ON turn_audits (game_id, turn_number)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- GameReader ---

func (s *Store) GetGame(ctx context.Context, gameID, userID string) (*rail.GameState, error) {
	var (
		gs         rail.GameState
		status     string
		eventsJSON string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, status, turn, events_json FROM games WHERE id = ?`), gameID).
		Scan(&gs.ID, &status, &gs.Turn, &eventsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rail.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	gs.Status = rail.GameStatus(status)
	if err := json.Unmarshal([]byte(eventsJSON), &gs.Events); err != nil {
		return nil, fmt.Errorf("decode game events: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT id, user_id, name, is_bot, money, debt, train_type, pos_row, pos_col, movement, loads_json, hand_json
FROM players WHERE game_id = ? ORDER BY id`), gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			p         rail.PlayerState
			isBot     int
			train     int
			row, col  sql.NullInt64
			loadsJSON string
			handJSON  string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &isBot, &p.Money, &p.Debt,
			&train, &row, &col, &p.MovementRemaining, &loadsJSON, &handJSON); err != nil {
			return nil, err
		}
		p.IsBot = isBot != 0
		p.TrainType = board.TrainType(train)
		if row.Valid && col.Valid {
			p.Position = &board.GridPoint{Row: int(row.Int64), Col: int(col.Int64)}
		}
		if err := json.Unmarshal([]byte(loadsJSON), &p.Loads); err != nil {
			return nil, fmt.Errorf("decode player loads: %w", err)
		}
		if err := json.Unmarshal([]byte(handJSON), &p.Hand); err != nil {
			return nil, fmt.Errorf("decode player hand: %w", err)
		}
		gs.Players = append(gs.Players, p)
	}
	return &gs, rows.Err()
}

func (s *Store) GetAllTracks(ctx context.Context, gameID string) ([]rail.TrackRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT player_id, segments_json, turn_build_spend FROM tracks WHERE game_id = ? ORDER BY player_id`), gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []rail.TrackRecord
	for rows.Next() {
		rec := rail.TrackRecord{GameID: gameID}
		var segJSON string
		if err := rows.Scan(&rec.PlayerID, &segJSON, &rec.TurnBuildSpend); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(segJSON), &rec.Segments); err != nil {
			return nil, fmt.Errorf("decode segments: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetTrackState(ctx context.Context, gameID, playerID string) (*rail.TrackRecord, error) {
	rec := rail.TrackRecord{GameID: gameID, PlayerID: playerID}
	var segJSON string
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT segments_json, turn_build_spend FROM tracks WHERE game_id = ? AND player_id = ?`),
		gameID, playerID).Scan(&segJSON, &rec.TurnBuildSpend)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(segJSON), &rec.Segments); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	return &rec, nil
}

// --- LoadService ---

func (s *Store) AvailableLoadsForCity(ctx context.Context, city string) ([]board.Load, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT load FROM city_loads WHERE city = ? AND qty > 0 ORDER BY load`), city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []board.Load
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		out = append(out, board.Load(l))
	}
	return out, rows.Err()
}

func (s *Store) DroppedLoads(ctx context.Context, gameID string) ([]rail.DroppedLoad, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT city, load, player_id FROM dropped_loads WHERE game_id = ? ORDER BY id`), gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []rail.DroppedLoad
	for rows.Next() {
		var d rail.DroppedLoad
		var l string
		if err := rows.Scan(&d.City, &l, &d.PlayerID); err != nil {
			return nil, err
		}
		d.Load = board.Load(l)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) PickupDroppedLoad(ctx context.Context, gameID, playerID, city string, load board.Load) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
DELETE FROM dropped_loads WHERE id IN (
    SELECT id FROM dropped_loads WHERE game_id = ? AND city = ? AND load = ? LIMIT 1
)`), gameID, city, string(load))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: dropped %s at %s", rail.ErrNoSuchLoad, load, city)
	}
	return nil
}

func (s *Store) DropLoad(ctx context.Context, gameID, playerID, city string, load board.Load) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO dropped_loads (id, game_id, city, load, player_id) VALUES (?, ?, ?, ?, ?)`),
		uuid.NewString(), gameID, city, string(load), playerID)
	return err
}

func (s *Store) TakeCityLoad(ctx context.Context, city string, load board.Load) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE city_loads SET qty = qty - 1 WHERE city = ? AND load = ? AND qty > 0`),
		city, string(load))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s at %s", rail.ErrNoSuchLoad, load, city)
	}
	return nil
}

func (s *Store) ReturnLoad(ctx context.Context, city string, load board.Load) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE city_loads SET qty = qty + 1 WHERE city = ? AND load = ?`), city, string(load))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		_, err = s.db.ExecContext(ctx, s.rebind(
			`INSERT INTO city_loads (city, load, qty) VALUES (?, ?, 1)`), city, string(load))
	}
	return err
}
