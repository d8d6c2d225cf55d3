package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSStreamConfig holds configuration for the NATS push stream.
type NATSStreamConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSStreamConfig returns the stock NATS stream configuration.
func DefaultNATSStreamConfig(url string) NATSStreamConfig {
	return NATSStreamConfig{
		URL:           url,
		SubjectPrefix: "room.",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSStream subscribes to room snapshots published on NATS subjects.
// Deployments that bridge the game server's push topics onto a NATS bus use
// this in place of the direct WebSocket stream. Reconnection is handled by
// the library; subscribers see a Reconnected marker so the controller can
// refetch across the gap.
type NATSStream struct {
	conn   *nats.Conn
	config NATSStreamConfig

	mu        sync.Mutex
	reconnect []chan<- StreamEvent
}

// NewNATSStream connects to the NATS server at config.URL.
func NewNATSStream(config NATSStreamConfig) (*NATSStream, error) {
	s := &NATSStream{config: config}

	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
			s.notifyReconnect()
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	s.conn = nc
	return s, nil
}

// Subscribe opens a subscription on the room's subject.
func (s *NATSStream) Subscribe(ctx context.Context, roomID string) (<-chan StreamEvent, error) {
	out := make(chan StreamEvent, 16)
	subject := s.config.SubjectPrefix + roomID

	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		select {
		case out <- StreamEvent{Data: msg.Data}:
		default:
			log.Warn().Str("subject", subject).Msg("push buffer full, dropping message")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}

	s.mu.Lock()
	s.reconnect = append(s.reconnect, out)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Str("subject", subject).Msg("unsubscribe failed")
		}
		s.mu.Lock()
		for i, ch := range s.reconnect {
			if ch == (chan<- StreamEvent)(out) {
				s.reconnect = append(s.reconnect[:i], s.reconnect[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(out)
	}()

	log.Info().Str("subject", subject).Msg("NATS subscription established")
	return out, nil
}

func (s *NATSStream) notifyReconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.reconnect {
		select {
		case ch <- StreamEvent{Reconnected: true}:
		default:
		}
	}
}

// Close drains and closes the NATS connection.
func (s *NATSStream) Close() error {
	s.conn.Close()
	return nil
}
