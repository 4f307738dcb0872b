package websocket

// EventPublisher pushes events to the clients of a workspace
type EventPublisher interface {
	Publish(workspaceID int32, event Event)
	// PublishAll sends an event to every connected workspace
	PublishAll(event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the workspace
func (h *Hub) Publish(workspaceID int32, event Event) {
	h.Broadcast(workspaceID, event)
}

// PublishAll implements EventPublisher by broadcasting to each connected workspace
func (h *Hub) PublishAll(event Event) {
	for _, id := range h.Workspaces() {
		h.Broadcast(id, event)
	}
}

// NoOpPublisher drops every event, used when push is disabled and in tests
type NoOpPublisher struct{}

func (n *NoOpPublisher) Publish(workspaceID int32, event Event) {}

func (n *NoOpPublisher) PublishAll(event Event) {}
