package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"railway-lite/apps/server/internal/gateway"
	"railway-lite/apps/server/internal/store"
	"railway-lite/board"
	"railway-lite/rail"
	"railway-lite/rail/bot"
)

func main() {
	st, mode, err := store.NewFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init store: %v", err)
	}
	defer st.Close()

	catalog := board.BuiltinCatalog()
	topo := board.BuiltinTopology(catalog)
	registry := bot.NewRegistry()

	gw := gateway.New()
	snapshots := bot.NewSnapshotService(st, st, topo, catalog, rail.DefaultConfig())
	executor := bot.NewTurnExecutor(st, st)
	engine := bot.NewEngine(snapshots, executor, st, gw)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/bot-turn", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		turn, _ := strconv.Atoi(q.Get("turn"))
		seed, _ := strconv.ParseInt(q.Get("seed"), 10, 64)
		cfg, err := registry.Config(q.Get("skill"), q.Get("archetype"), seed)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		outcome := engine.TakeTurn(r.Context(), q.Get("game"), q.Get("player"), q.Get("user"), cfg, turn)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":        outcome.Success,
			"retriesUsed":    outcome.RetriesUsed,
			"fellBackToPass": outcome.FellBackToPass,
			"audit":          outcome.Audit,
		})
	})

	addr := ":8080"
	log.Printf("[Server] Store mode: %s", mode)
	log.Printf("[Server] Starting server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}
