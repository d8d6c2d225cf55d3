package room

import "context"

// StreamEvent is one push-channel delivery for a room subscription.
type StreamEvent struct {
	// Data is a full session snapshot message. Nil on a reconnect marker.
	Data []byte
	// Reconnected marks a resubscription after a dropped connection.
	// Messages may have been missed; the controller refetches the full
	// state to close the gap, which snapshot replacement makes sufficient.
	Reconnected bool
}

// PushStream is a server-push subscription source scoped to a room id.
// Implementations deliver events in transport order and close the channel
// when the subscription context ends. Neither ordering nor completeness is
// verified: a dropped message is self-corrected by the next one, since
// every message is a full-state replacement.
type PushStream interface {
	Subscribe(ctx context.Context, roomID string) (<-chan StreamEvent, error)
	Close() error
}
