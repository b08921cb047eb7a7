package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"tickstats/internal/domain"
)

// TCPSource reads a stream of JSON ticks from a TCP feed.
type TCPSource struct {
	name string
	addr string
}

func NewTCPSource(name, addr string) *TCPSource {
	return &TCPSource{name: name, addr: addr}
}

func (s *TCPSource) Name() string { return s.name }

func (s *TCPSource) Start(ctx context.Context, out chan<- domain.Tick) error {
	conn, err := net.Dial("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	dec := json.NewDecoder(conn)
	for {
		var tick domain.Tick
		if err := dec.Decode(&tick); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read %s: %w", s.addr, err)
		}
		select {
		case out <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
