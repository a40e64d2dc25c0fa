// Package collab relays messages between peers looking at the same task list.
package collab

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Peer is one live connection. Implementations must be comparable
// (pointer receivers) since peers are used as map keys.
// Close must be safe to call more than once and concurrently with Send.
type Peer interface {
	Send(ctx context.Context, msg []byte) error
	Close() error
}

// Hub хранит для каждого списка множество подключенных участников.
// State is in-process only and not shared between server instances.
type Hub struct {
	mu     sync.Mutex
	rooms  map[int64]map[Peer]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[int64]map[Peer]struct{}),
		logger: logger,
	}
}

func (h *Hub) Join(listID int64, p Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[listID]
	if !ok {
		room = make(map[Peer]struct{})
		h.rooms[listID] = room
	}
	room[p] = struct{}{}
}

// Leave removes p. Empty rooms are dropped so the map does not grow with every list ever opened.
func (h *Hub) Leave(listID int64, p Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[listID]
	if !ok {
		return
	}
	delete(room, p)
	if len(room) == 0 {
		delete(h.rooms, listID)
	}
}

// Peers returns the number of peers currently in the list's room.
func (h *Hub) Peers(listID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[listID])
}

// Rooms returns the number of lists with at least one peer.
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Broadcast sends msg to every peer of listID except from and returns how
// many sends succeeded. Sends happen outside the lock on a snapshot of the
// room; a peer whose send fails is removed and disconnected, and the fan-out continues.
func (h *Hub) Broadcast(ctx context.Context, listID int64, from Peer, msg []byte) int {
	targets := h.snapshot(listID, from)

	delivered := 0
	for _, p := range targets {
		if ctx.Err() != nil {
			break
		}
		if err := p.Send(ctx, msg); err != nil {
			h.logger.Debug("dropping peer after failed send",
				zap.Int64("list_id", listID),
				zap.Error(err),
			)
			h.Leave(listID, p)
			p.Close()
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) snapshot(listID int64, exclude Peer) []Peer {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[listID]
	peers := make([]Peer, 0, len(room))
	for p := range room {
		if p == exclude {
			continue
		}
		peers = append(peers, p)
	}
	return peers
}
