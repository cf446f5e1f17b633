package realtime

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Dispatcher fans an event out to every live connection of one user. It
// never blocks on client acknowledgment and never fails the caller: a
// moderation action must succeed whether or not the target is online.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
}

func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger}
}

type eventFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Emit sends the event to all of the user's registered connections. Delivery
// to each connection is independent; a failed send drops that connection
// only. Zero registered connections is a silent no-op.
func (d *Dispatcher) Emit(userID, event string, payload interface{}) {
	conns := d.registry.ConnectionsFor(userID)
	if len(conns) == 0 {
		return
	}

	frame, err := json.Marshal(eventFrame{Event: event, Data: payload})
	if err != nil {
		d.logger.Error("event payload not serializable",
			zap.String("event", event), zap.Error(err))
		return
	}

	for _, c := range conns {
		if err := c.Send(frame); err != nil {
			d.logger.Warn("event delivery failed, dropping connection",
				zap.String("event", event),
				zap.String("user_id", userID),
				zap.Error(err))
			d.registry.Unregister(c)
			_ = c.Close()
		}
	}
}
