package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection is one WebSocket client watching a game.
type Connection struct {
	ID     string
	GameID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Gateway fans game events out to connected clients. It implements the bot
// package's Emitter contract.
type Gateway struct {
	mu         sync.RWMutex
	rooms      map[string]map[string]*Connection // gameID -> connID -> conn
	nextConnID uint64
}

func New() *Gateway {
	return &Gateway{rooms: make(map[string]map[string]*Connection)}
}

// HandleWebSocket upgrades the connection and joins the client to the room
// named by the ?game= query parameter.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game parameter", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:     fmt.Sprintf("conn_%d", g.nextConnID),
		GameID: gameID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
	if g.rooms[gameID] == nil {
		g.rooms[gameID] = make(map[string]*Connection)
	}
	g.rooms[gameID][c.ID] = c
	g.mu.Unlock()

	log.Printf("[Gateway] %s joined game %s", c.ID, gameID)
	go g.writePump(c)
	go g.readPump(c)
}

func (g *Gateway) writePump(c *Connection) {
	defer c.Conn.Close()
	for msg := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump drains client frames so pings are answered; inbound messages are
// not part of the bot event surface.
func (g *Gateway) readPump(c *Connection) {
	defer g.drop(c)
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) drop(c *Connection) {
	g.mu.Lock()
	if room, ok := g.rooms[c.GameID]; ok {
		if _, ok := room[c.ID]; ok {
			delete(room, c.ID)
			close(c.Send)
		}
		if len(room) == 0 {
			delete(g.rooms, c.GameID)
		}
	}
	g.mu.Unlock()
	log.Printf("[Gateway] %s left game %s", c.ID, c.GameID)
}

// EmitToGame broadcasts one named event to every client watching the game.
func (g *Gateway) EmitToGame(gameID, event string, payload any) {
	msg, err := json.Marshal(map[string]any{"event": event, "payload": payload})
	if err != nil {
		log.Printf("[Gateway] marshal %s failed: %v", event, err)
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.rooms[gameID] {
		select {
		case c.Send <- msg:
		default:
			// Slow consumer: drop the frame rather than block the turn.
		}
	}
}
