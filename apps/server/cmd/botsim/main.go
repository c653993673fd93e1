package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"railway-lite/apps/server/internal/store"
	"railway-lite/board"
	"railway-lite/rail"
	"railway-lite/rail/bot"
)

// botsim runs bot turns against an in-memory store and prints the audit
// trail: a quick way to watch a skill/archetype pair play.
func main() {
	turns := flag.Int("turns", 10, "number of bot turns to simulate")
	skill := flag.String("skill", "standard", "skill profile id")
	archetype := flag.String("archetype", "balanced", "archetype profile id")
	seed := flag.Int64("seed", 1, "rng seed")
	profiles := flag.String("profiles", "", "optional YAML profile overrides")
	flag.Parse()

	ctx := context.Background()

	st, err := store.NewSQLite(":memory:")
	if err != nil {
		log.Fatalf("[BotSim] store init: %v", err)
	}
	defer st.Close()

	registry := bot.NewRegistry()
	if *profiles != "" {
		if err := registry.LoadFromFile(*profiles); err != nil {
			log.Fatalf("[BotSim] load profiles: %v", err)
		}
	}
	cfg, err := registry.Config(*skill, *archetype, *seed)
	if err != nil {
		log.Fatalf("[BotSim] %v", err)
	}

	catalog := board.BuiltinCatalog()
	topo := board.BuiltinTopology(catalog)

	const (
		gameID = "sim_game"
		botID  = "bot_1"
		botUID = "bot_user_1"
	)
	if err := seedGame(ctx, st, gameID, botID, botUID); err != nil {
		log.Fatalf("[BotSim] seed: %v", err)
	}

	rules := rail.DefaultConfig()
	snapshots := bot.NewSnapshotService(st, st, topo, catalog, rules)
	executor := bot.NewTurnExecutor(st, st)
	engine := bot.NewEngine(snapshots, executor, st, logEmitter{})

	for turn := 1; turn <= *turns; turn++ {
		if err := st.BeginTurn(ctx, gameID, botID); err != nil {
			log.Fatalf("[BotSim] begin turn: %v", err)
		}
		outcome := engine.TakeTurn(ctx, gameID, botID, botUID, cfg, turn)
		a := outcome.Audit
		fmt.Printf("turn %2d  success=%-5v retries=%d fallback=%-5v  %s\n",
			turn, outcome.Success, outcome.RetriesUsed, outcome.FellBackToPass, a.PlanText)

		game, err := st.GetGame(ctx, gameID, botUID)
		if err != nil {
			log.Fatalf("[BotSim] read game: %v", err)
		}
		player := game.Player(botID)
		track, err := st.GetTrackState(ctx, gameID, botID)
		if err != nil {
			log.Fatalf("[BotSim] read track: %v", err)
		}
		var segments []rail.TrackSegment
		if track != nil {
			segments = track.Segments
		}
		v := bot.EvaluateVictory(player.Money, segments, topo, catalog, rules)
		if v.Eligible {
			fmt.Printf("victory on turn %d: money=%d cities=%v\n", turn, v.Money, v.ConnectedCities)
			return
		}
	}
}

func seedGame(ctx context.Context, st *store.Store, gameID, botID, botUID string) error {
	pos := board.GridPoint{Row: 1, Col: 2} // Aurora center
	gs := rail.GameState{
		ID:     gameID,
		Status: rail.StatusInitialBuild,
		Players: []rail.PlayerState{
			{
				ID: botID, UserID: botUID, Name: "Sim Bot", IsBot: true,
				Money: rail.DefaultConfig().StartMoney, TrainType: board.TrainFreight,
				Position: &pos, MovementRemaining: board.TrainFreight.Speed(),
				Hand: board.BuiltinDemandDeck()[:3],
			},
			{
				ID: "rival_1", UserID: "rival_user_1", Name: "Rival",
				Money: rail.DefaultConfig().StartMoney, TrainType: board.TrainFreight,
			},
		},
	}
	if err := st.CreateGame(ctx, gs); err != nil {
		return err
	}
	if err := st.SeedCityStock(ctx, board.BuiltinCityStock); err != nil {
		return err
	}
	// Two build turns, then play for real.
	return st.SetGameStatus(ctx, gameID, rail.StatusActive)
}

type logEmitter struct{}

func (logEmitter) EmitToGame(gameID, event string, payload any) {
	log.Printf("[BotSim] emit %s game=%s", event, gameID)
}
