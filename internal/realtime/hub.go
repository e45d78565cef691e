package realtime

import (
	"sync"

	"assetbook/pkg/logger"
)

// Hub is the subscription registry: it maps asset ids to the set of live
// connections observing that asset. Membership is in-memory only; a
// reconnecting observer must join again.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]bool
	log    *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		groups: make(map[string]map[*Client]bool),
		log:    log,
	}
}

func (h *Hub) Join(c *Client, assetID string) {
	if assetID == "" || c.isDropped() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[assetID]
	if !ok {
		group = make(map[*Client]bool)
		h.groups[assetID] = group
	}
	group[c] = true

	h.log.Debug("Client joined asset group", "client_id", c.id, "asset_id", assetID)
}

func (h *Hub) Leave(c *Client, assetID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, assetID)
}

// Remove drops the client from every group it joined. Called once when the
// connection dies.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for assetID, group := range h.groups {
		if group[c] {
			h.leaveLocked(c, assetID)
		}
	}
}

func (h *Hub) leaveLocked(c *Client, assetID string) {
	group, ok := h.groups[assetID]
	if !ok {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.groups, assetID)
	}
}

// Broadcast pushes the payload to every member of the asset's group. The
// send is non-blocking: a client whose buffer is full is dropped rather
// than allowed to stall delivery to the rest of the group. Eviction only
// marks the client and severs its socket; the send channel stays open until
// the client's own read pump tears down, so Broadcast can never write to a
// closed channel.
func (h *Hub) Broadcast(assetID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[assetID]
	if !ok {
		return
	}

	for c := range group {
		select {
		case c.send <- payload:
		default:
			h.log.Warn("Dropping slow subscriber", "client_id", c.id, "asset_id", assetID)
			for gid, g := range h.groups {
				if g[c] {
					h.leaveLocked(c, gid)
				}
			}
			c.markDropped()
		}
	}
}

// Subscribers reports the size of an asset's group.
func (h *Hub) Subscribers(assetID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[assetID])
}
