package realtime

import "sync"

// Conn is one live client connection, as seen by the registry and the
// dispatcher. The websocket hub provides the concrete implementation.
type Conn interface {
	Send(payload []byte) error
	Close() error
}

// Registry tracks, per logical user, the set of currently live connections.
// A user may hold many (tabs, devices); a connection belongs to at most one
// user at a time. The registry is a lookup table only and owns no user data.
type Registry struct {
	mu        sync.RWMutex
	userConns map[string]map[Conn]struct{}
	owners    map[Conn]string
}

func NewRegistry() *Registry {
	return &Registry{
		userConns: make(map[string]map[Conn]struct{}),
		owners:    make(map[Conn]string),
	}
}

// Register adds the connection to the user's set, creating the set if
// absent. Registering an already-registered connection is a no-op; if the
// connection was held by a different user it moves to the new one.
func (r *Registry) Register(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owners[c]; ok {
		if prev == userID {
			return
		}
		r.removeLocked(prev, c)
	}
	if _, ok := r.userConns[userID]; !ok {
		r.userConns[userID] = make(map[Conn]struct{})
	}
	r.userConns[userID][c] = struct{}{}
	r.owners[c] = userID
}

// Unregister removes the connection from whichever set holds it. Unknown
// connections are a safe no-op; clients may close before ever registering.
func (r *Registry) Unregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[c]
	if !ok {
		return
	}
	r.removeLocked(userID, c)
}

func (r *Registry) removeLocked(userID string, c Conn) {
	delete(r.owners, c)
	if set, ok := r.userConns[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.userConns, userID)
		}
	}
}

// ConnectionsFor returns a snapshot of the user's live connections. The
// snapshot is safe to iterate while connections churn concurrently.
func (r *Registry) ConnectionsFor(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.userConns[userID]
	if len(set) == 0 {
		return nil
	}
	conns := make([]Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}
