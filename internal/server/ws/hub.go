// Package ws streams table updates to kiosk/TV/phone clients over
// websockets: an origin-checked Upgrader, a per-client Send channel, and
// read/write pump goroutines, fed by the Coordinator's SubscribeTable.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chalkitup/internal/coordinator"
	"chalkitup/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket connection subscribed to a single table.
type Client struct {
	TableID string
	Conn    *websocket.Conn
	Send    chan []byte
}

// Hub fans out coordinator-published table updates to every client
// currently subscribed to that table.
type Hub struct {
	coord *coordinator.Coordinator
	log   *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*Client]bool
	cancels map[string]func()
}

// NewHub builds a Hub bound to coord.
func NewHub(coord *coordinator.Coordinator, log *zap.Logger) *Hub {
	return &Hub{
		coord:   coord,
		log:     log,
		clients: make(map[string]map[*Client]bool),
		cancels: make(map[string]func()),
	}
}

// newUpgrader builds an origin-checking Upgrader scoped to allowedOrigins.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSpace(o)] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return false
			}
			return allowed[origin]
		},
	}
}

// HandleSubscribe upgrades the connection and subscribes it to the table
// id named by the :id route param, registering a coordinator-level
// subscription for that table the first time any client asks for it.
func (h *Hub) HandleSubscribe(allowedOrigins []string) gin.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)
	return func(c *gin.Context) {
		tableID := c.Param("id")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", zap.String("tableId", tableID), zap.Error(err))
			return
		}

		client := &Client{TableID: tableID, Conn: conn, Send: make(chan []byte, 16)}
		h.register(c.Request.Context(), client)

		go h.writePump(client)
		go h.readPump(client)
	}
}

// register adds client to its table's fan-out set, opening a coordinator
// subscription for that table the first time it goes from zero to one
// watcher, and seeds the new client with the table's current snapshot.
func (h *Hub) register(ctx context.Context, client *Client) {
	h.mu.Lock()
	set, ok := h.clients[client.TableID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[client.TableID] = set
	}
	set[client] = true
	needsSubscription := !ok
	h.mu.Unlock()

	if needsSubscription {
		subCtx := context.Background()
		cancel := h.coord.SubscribeTable(subCtx, client.TableID, func(table models.Table) {
			h.broadcast(client.TableID, models.Event{Event: "table_updated", TableID: client.TableID, Table: &table})
		}, func(err error) {
			h.log.Warn("table subscription error", zap.String("tableId", client.TableID), zap.Error(err))
			h.broadcastRaw(client.TableID, []byte(`{"event":"disconnected"}`))
		})
		h.mu.Lock()
		h.cancels[client.TableID] = cancel
		h.mu.Unlock()
	}

	if table, err := h.coord.GetTable(ctx, client.TableID); err == nil {
		if data, err := json.Marshal(models.Event{Event: "table_state", TableID: client.TableID, Table: &table}); err == nil {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.TableID]
	if !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.TableID)
		if cancel, ok := h.cancels[client.TableID]; ok {
			cancel()
			delete(h.cancels, client.TableID)
		}
	}
}

func (h *Hub) broadcast(tableID string, event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("encode table event", zap.String("tableId", tableID), zap.Error(err))
		return
	}
	h.broadcastRaw(tableID, data)
}

func (h *Hub) broadcastRaw(tableID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[tableID] {
		select {
		case client.Send <- data:
		default:
		}
	}
}

func (h *Hub) readPump(client *Client) {
	defer func() {
		h.unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
