package websocket

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when sending to a closed or saturated client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface is what the hub needs from a connection
type ClientInterface interface {
	ID() string
	WorkspaceID() int32
	Send(data []byte) error
	Close() error
}

// Hub fans events out to the connections of each workspace.
// It is safe for concurrent use.
type Hub struct {
	// workspace ID -> client ID -> client
	clients map[int32]map[string]ClientInterface
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int32]map[string]ClientInterface),
	}
}

// Register adds a client under its workspace
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ws := client.WorkspaceID()
	if h.clients[ws] == nil {
		h.clients[ws] = make(map[string]ClientInterface)
	}
	h.clients[ws][client.ID()] = client

	log.Debug().
		Int32("workspace_id", ws).
		Str("client_id", client.ID()).
		Msg("Push client registered")
}

// Unregister removes a client; empty workspaces are dropped
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ws := client.WorkspaceID()
	set, ok := h.clients[ws]
	if !ok {
		return
	}
	if _, exists := set[client.ID()]; !exists {
		return
	}
	delete(set, client.ID())
	if len(set) == 0 {
		delete(h.clients, ws)
	}

	log.Debug().
		Int32("workspace_id", ws).
		Str("client_id", client.ID()).
		Msg("Push client unregistered")
}

// snapshot copies the clients of a workspace so sends happen without the lock
func (h *Hub) snapshot(workspaceID int32) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[workspaceID]
	out := make([]ClientInterface, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// Broadcast sends an event to all clients of a workspace.
// Client.Send never blocks, so a slow client only loses its own messages.
func (h *Hub) Broadcast(workspaceID int32, event Event) {
	targets := h.snapshot(workspaceID)
	if len(targets) == 0 {
		return
	}

	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("workspace_id", workspaceID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	for _, c := range targets {
		if err := c.Send(data); err != nil {
			log.Warn().
				Err(err).
				Int32("workspace_id", workspaceID).
				Str("client_id", c.ID()).
				Msg("Dropped event for client")
		}
	}

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("event_type", event.Type).
		Int("client_count", len(targets)).
		Msg("Broadcast event")
}

// Workspaces returns the IDs of workspaces with at least one client, ascending
func (h *Hub) Workspaces() []int32 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]int32, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ClientCount returns the number of clients connected to a workspace
func (h *Hub) ClientCount(workspaceID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[workspaceID])
}

// Shutdown closes every client and empties the hub
func (h *Hub) Shutdown() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[int32]map[string]ClientInterface)
	h.mu.Unlock()

	closed := 0
	for _, set := range all {
		for _, c := range set {
			_ = c.Close()
			closed++
		}
	}
	log.Info().Int("clients", closed).Msg("Push hub shut down")
}
