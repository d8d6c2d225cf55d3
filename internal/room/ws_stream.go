package room

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// WebSocketStreamConfig holds configuration for the WebSocket push stream.
type WebSocketStreamConfig struct {
	URL              string
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
	ReconnectWait    time.Duration
	MaxReconnectWait time.Duration
}

// DefaultWebSocketStreamConfig returns the stock stream configuration for
// a server at wsURL.
func DefaultWebSocketStreamConfig(wsURL string) WebSocketStreamConfig {
	return WebSocketStreamConfig{
		URL:              wsURL,
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   64 * 1024,
		ReconnectWait:    2 * time.Second,
		MaxReconnectWait: 30 * time.Second,
	}
}

// wsEnvelope frames every server push with the topic it was published on.
type wsEnvelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// wsSubscribeFrame is the client frame opening a topic subscription.
type wsSubscribeFrame struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// WebSocketStream subscribes to room topics over a WebSocket connection.
// A lost connection is redialed with capped exponential backoff and the
// topic re-subscribed; the consumer sees a Reconnected marker so it can
// refetch state.
type WebSocketStream struct {
	config WebSocketStreamConfig
	clock  clockwork.Clock

	mu     sync.Mutex
	closed bool
	cancel []context.CancelFunc
}

// NewWebSocketStream creates a stream from config. The clock drives
// reconnect backoff and is injectable for tests.
func NewWebSocketStream(config WebSocketStreamConfig, clock clockwork.Clock) *WebSocketStream {
	return &WebSocketStream{config: config, clock: clock}
}

// RoomTopic is the push topic for a room id.
func RoomTopic(roomID string) string {
	return fmt.Sprintf("/topic/room/%s", roomID)
}

// Subscribe opens a subscription for the room. The returned channel closes
// when ctx is cancelled or the stream is closed.
func (s *WebSocketStream) Subscribe(ctx context.Context, roomID string) (<-chan StreamEvent, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("websocket stream is closed")
	}
	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = append(s.cancel, cancel)
	s.mu.Unlock()

	out := make(chan StreamEvent, 16)
	go s.run(subCtx, roomID, out)
	return out, nil
}

// Close tears down every active subscription.
func (s *WebSocketStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, cancel := range s.cancel {
		cancel()
	}
	s.cancel = nil
	return nil
}

func (s *WebSocketStream) run(ctx context.Context, roomID string, out chan<- StreamEvent) {
	defer close(out)

	topic := RoomTopic(roomID)
	wait := s.config.ReconnectWait
	connects := 0

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.config.URL, nil)
		if err != nil {
			log.Warn().Err(err).
				Str("url", s.config.URL).
				Dur("retry_in", wait).
				Msg("websocket dial failed")
			if !s.sleep(ctx, wait) {
				return
			}
			wait = nextBackoff(wait, s.config.MaxReconnectWait)
			continue
		}

		if err := s.subscribeTopic(conn, topic); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("websocket subscribe failed")
			conn.Close()
			if !s.sleep(ctx, wait) {
				return
			}
			wait = nextBackoff(wait, s.config.MaxReconnectWait)
			continue
		}

		wait = s.config.ReconnectWait
		connects++
		log.Info().Str("topic", topic).Msg("websocket subscription established")

		if connects > 1 {
			select {
			case out <- StreamEvent{Reconnected: true}:
			case <-ctx.Done():
				conn.Close()
				return
			}
		}

		s.readLoop(ctx, conn, topic, out)
		conn.Close()
	}
}

func (s *WebSocketStream) subscribeTopic(conn *websocket.Conn, topic string) error {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return conn.WriteJSON(wsSubscribeFrame{Type: "subscribe", Topic: topic})
}

// readLoop pulls pushes off one connection until it drops or ctx ends.
// Per-message decode failures are dropped without tearing the stream down;
// the next successfully delivered snapshot self-corrects the view.
func (s *WebSocketStream) readLoop(ctx context.Context, conn *websocket.Conn, topic string, out chan<- StreamEvent) {
	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("topic", topic).Msg("websocket connection lost")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var env wsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("dropping undecodable push message")
			continue
		}
		if env.Topic != topic {
			// A frame for a room this subscription no longer cares
			// about must never reach the consumer.
			continue
		}

		select {
		case out <- StreamEvent{Data: env.Payload}:
		case <-ctx.Done():
			return
		default:
			log.Warn().Str("topic", topic).Msg("push buffer full, dropping message")
		}
	}
}

func (s *WebSocketStream) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := s.clock.NewTicker(s.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *WebSocketStream) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
