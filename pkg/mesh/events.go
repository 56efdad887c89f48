package mesh

import "fmt"

// EventType enumerates the change notifications a Mesh emits.
type EventType int

const (
	VertexAdded EventType = iota
	VertexRemoved
	EdgeAdded
	EdgeRemoved
	FaceAdded
	FaceRemoved
)

func (t EventType) String() string {
	switch t {
	case VertexAdded:
		return "vertex-added"
	case VertexRemoved:
		return "vertex-removed"
	case EdgeAdded:
		return "edge-added"
	case EdgeRemoved:
		return "edge-removed"
	case FaceAdded:
		return "face-added"
	case FaceRemoved:
		return "face-removed"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event describes one change. Only the field matching Type is set.
type Event struct {
	Type   EventType
	Vertex VertexID
	Edge   EdgeID
	Face   FaceID
}

// Listener receives events synchronously, inside the mutating call.
// Vertex events fire as soon as the vertex is stored; face events fire
// while faces are rebuilt; edge events fire for both half-edges once the
// faces have settled.
type Listener func(Event)

// Subscription is the handle returned by Subscribe.
type Subscription int

type subscriber struct {
	id Subscription
	fn Listener
}

// Subscribe registers l and returns the handle needed to unsubscribe.
func (m *Mesh) Subscribe(l Listener) Subscription {
	m.lastSub++
	m.subs = append(m.subs, subscriber{id: m.lastSub, fn: l})
	return m.lastSub
}

// Unsubscribe removes a listener. It reports whether s was registered.
func (m *Mesh) Unsubscribe(s Subscription) bool {
	for i, sub := range m.subs {
		if sub.id == s {
			m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Mesh) emit(ev Event) {
	if len(m.subs) == 0 {
		return
	}
	subs := append([]subscriber(nil), m.subs...)
	for _, s := range subs {
		s.fn(ev)
	}
}
