// internal/live/hub.go
//
// Websocket fan-out of game state.
// Clients subscribe to one game ID and receive the current state once on
// connect, then a "state_update" message after every effective move.
// Incoming client messages are ignored; reads only keep the connection alive.
//
// A client is registered before its snapshot is loaded, so no committed move
// can fall between the two. Frames carry Game.Version and the hub never sends
// a client a version at or below one it already sent.

package live

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/game2048/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBuffer     = 16
)

// Message is the JSON frame sent to subscribers.
type Message struct {
	GameID string     `json:"gameId"`
	Event  string     `json:"event"` // "snapshot" | "state_update"
	Game   *game.Game `json:"game"`
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	sent   int64 // highest Game.Version queued; owned by Run
}

type snapshot struct {
	c   *client
	msg *Message
}

// Hub maintains subscribers per game and broadcasts updates.
type Hub struct {
	upgrader   websocket.Upgrader
	games      map[string]map[*client]struct{} // owned by Run
	broadcast  chan *Message
	register   chan *client
	unregister chan *client
	snapshots  chan snapshot
	done       chan struct{} // closed when Run returns
}

// NewHub creates a hub. allowedOrigin restricts cross-origin upgrades; an
// empty value allows any origin.
func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
		games:      make(map[string]map[*client]struct{}),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		snapshots:  make(chan snapshot),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop; it returns when ctx is cancelled and closes
// every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			if h.games[c.gameID] == nil {
				h.games[c.gameID] = make(map[*client]struct{})
			}
			h.games[c.gameID][c] = struct{}{}
			log.Debug().Str("gameId", c.gameID).Int("subscribers", len(h.games[c.gameID])).Msg("ws subscribed")

		case c := <-h.unregister:
			h.remove(c)

		case sn := <-h.snapshots:
			if _, ok := h.games[sn.c.gameID][sn.c]; ok {
				h.deliver(sn.c, sn.msg)
			}

		case m := <-h.broadcast:
			h.fanOut(m)

		case <-ctx.Done():
			for _, clients := range h.games {
				for c := range clients {
					h.remove(c)
				}
			}
			return
		}
	}
}

// Publish queues the new state of g for its subscribers. It never blocks
// the caller; updates are dropped when the queue is full.
func (h *Hub) Publish(g *game.Game) {
	select {
	case h.broadcast <- &Message{GameID: g.ID, Event: "state_update", Game: g}:
	default:
		log.Warn().Str("gameId", g.ID).Msg("ws broadcast queue full, dropping update")
	}
}

// ServeWS upgrades the request and subscribes the connection to id. The
// snapshot is read through load only after the client is registered.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, id string, load func(context.Context) (*game.Game, error)) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("ws upgrade failed")
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), gameID: id}
	if !h.submit(h.register, c) {
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()

	g, err := load(r.Context())
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("ws snapshot load failed")
		// closes send, which makes writePump send a close frame
		h.submit(h.unregister, c)
		return
	}
	select {
	case h.snapshots <- snapshot{c: c, msg: &Message{GameID: id, Event: "snapshot", Game: g}}:
	case <-h.done:
	}
}

// submit hands c to the Run loop on ch; it reports false once Run has returned.
func (h *Hub) submit(ch chan *client, c *client) bool {
	select {
	case ch <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) fanOut(m *Message) {
	for c := range h.games[m.GameID] {
		h.deliver(c, m)
	}
}

// deliver queues m for c unless c already has the same or a newer version.
// A client whose buffer is full is dropped.
func (h *Hub) deliver(c *client, m *Message) {
	if m.Game == nil || m.Game.Version <= c.sent {
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		log.Error().Err(err).Str("gameId", m.GameID).Msg("encode ws message")
		return
	}
	select {
	case c.send <- data:
		c.sent = m.Game.Version
	default:
		// slow consumer
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	clients, ok := h.games[c.gameID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.games, c.gameID)
	}
	log.Debug().Str("gameId", c.gameID).Int("subscribers", len(clients)).Msg("ws unsubscribed")
}

func (c *client) readPump() {
	defer func() {
		c.hub.submit(c.hub.unregister, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("gameId", c.gameID).Msg("ws read")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
