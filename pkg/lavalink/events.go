package lavalink

import "sync"

// EventType identifies a client event kind.
type EventType string

// Events re-emitted for application code.
const (
	EventNodeConnect    EventType = "nodeConnect"
	EventNodeReconnect  EventType = "nodeReconnect"
	EventNodeDisconnect EventType = "nodeDisconnect"
	EventNodeError      EventType = "nodeError"
	EventTrackStart     EventType = "trackStart"
	EventTrackEnd       EventType = "trackEnd"
	EventTrackError     EventType = "trackError"
	EventTrackStuck     EventType = "trackStuck"
	EventQueueEnd       EventType = "queueEnd"
	EventPlayerUpdate   EventType = "playerUpdate"
	EventSocketClosed   EventType = "socketClosed"
	EventPlayerCreate   EventType = "playerCreate"
	EventPlayerDestroy  EventType = "playerDestroy"
	EventRawData        EventType = "rawData"
)

// Event is the payload delivered to registered handlers. Fields are filled
// depending on the event type; Raw carries the wire payload where one exists.
type Event struct {
	Type   EventType
	Node   *Node
	Player *Player
	Track  *Track
	Err    error
	Code   int
	Reason string
	Raw    []byte
}

// Handler receives events of the kinds it was registered for.
type Handler func(Event)

// dispatcher is a typed publish/subscribe table. Components emit into it and
// application code registers per-kind handlers; handlers run synchronously in
// emit order so per-guild notifications keep the order the node sent them.
type dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func newDispatcher() *dispatcher {
	return &dispatcher{handlers: make(map[EventType][]Handler)}
}

func (d *dispatcher) on(event EventType, h Handler) {
	d.mu.Lock()
	d.handlers[event] = append(d.handlers[event], h)
	d.mu.Unlock()
}

func (d *dispatcher) emit(e Event) {
	d.mu.RLock()
	handlers := d.handlers[e.Type]
	d.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
