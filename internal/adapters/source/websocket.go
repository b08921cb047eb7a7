package source

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"tickstats/internal/domain"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsPongWait         = 60 * time.Second
	wsPingPeriod       = 54 * time.Second // must be less than wsPongWait
	wsReconnectDelay   = 5 * time.Second
)

// WSSource reads JSON ticks from a WebSocket feed, reconnecting with a
// fixed delay when the connection drops.
type WSSource struct {
	name string
	url  string
}

func NewWSSource(name, url string) *WSSource {
	return &WSSource{name: name, url: url}
}

func (s *WSSource) Name() string { return s.name }

func (s *WSSource) Start(ctx context.Context, out chan<- domain.Tick) error {
	for {
		if err := s.readLoop(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wsReconnectDelay):
		}
	}
}

func (s *WSSource) readLoop(ctx context.Context, out chan<- domain.Tick) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			}
		}
	}()

	for {
		var tick domain.Tick
		if err := conn.ReadJSON(&tick); err != nil {
			return fmt.Errorf("read %s: %w", s.url, err)
		}
		select {
		case out <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
