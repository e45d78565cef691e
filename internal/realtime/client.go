package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"assetbook/pkg/config"
	"assetbook/pkg/logger"
	"assetbook/pkg/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	actionJoin  = "join"
	actionLeave = "leave"
)

// controlMessage is what a connected observer sends to manage its
// per-asset subscriptions.
type controlMessage struct {
	Action  string `json:"action"`
	AssetID string `json:"asset_id"`
}

type ackMessage struct {
	Action  string `json:"action"`
	AssetID string `json:"asset_id"`
	Message string `json:"message"`
}

// Client is one live websocket connection. Outbound events flow through the
// buffered send channel; the hub never writes to the socket directly.
//
// The send channel is closed only by the read pump's teardown, after the
// client has left every group. The hub evicts a client by marking it
// dropped and severing the connection; it never closes the channel itself,
// so no sender can hit a closed channel.
type Client struct {
	id    string
	actor model.Actor
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	cfg   *config.Config
	log   *logger.Logger

	mu      sync.Mutex
	dropped bool

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, actor model.Actor, cfg *config.Config) *Client {
	return &Client{
		id:    uuid.New().String(),
		actor: actor,
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, cfg.WSSendBuffer),
		cfg:   cfg,
		log:   cfg.Log,
	}
}

// Run starts the read and write pumps and blocks until the connection is
// torn down.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// markDropped flags the client as evicted and severs its connection. The
// failing socket makes both pumps return, and the read pump's teardown then
// closes the send channel once no sender can reach it.
func (c *Client) markDropped() {
	c.mu.Lock()
	if c.dropped {
		c.mu.Unlock()
		return
	}
	c.dropped = true
	c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) isDropped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Remove(c)
		c.closeSend()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(c.cfg.WSMaxMessageSize))
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.WSPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.WSPongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Websocket closed unexpectedly", "client_id", c.id, "error", err)
			}
			return
		}

		var msg controlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Warn("Ignoring malformed control message", "client_id", c.id, "error", err)
			continue
		}

		switch msg.Action {
		case actionJoin:
			c.hub.Join(c, msg.AssetID)
			c.ack(msg.AssetID)
		case actionLeave:
			c.hub.Leave(c, msg.AssetID)
		default:
			c.log.Warn("Unknown control action", "client_id", c.id, "action", msg.Action)
		}
	}
}

func (c *Client) ack(assetID string) {
	payload, err := json.Marshal(ackMessage{
		Action:  "joined",
		AssetID: assetID,
		Message: fmt.Sprintf("You have joined the group: %s", assetID),
	})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) writePump() {
	// Ping well inside the pong window so healthy connections never lapse.
	ticker := time.NewTicker(c.cfg.WSPongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WSWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WSWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
