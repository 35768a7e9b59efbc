package bvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"MarketBoard/internal/domain/models"
	drepo "MarketBoard/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements a TickStream over the exchange's websocket. The feed
// pushes raw rows in the upstream wire format (COD_SIMB, PRECIO, ...);
// rows are folded into the in-memory histories between polls.
type Stream struct {
	url            string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewStream creates an exchange websocket stream.
func NewStream(url string, reconnectDelay, pingInterval time.Duration) *Stream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Stream{
		url:            url,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("Accept", "*/*")
	header.Set("Cache-Control", "no-cache")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("exchange stream connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	return nil
}

// current returns the connection snapshot under the lock.
func (s *Stream) current() (*websocket.Conn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn, s.connected
}

// Read streams raw ticks and errors. Frames that do not decode as ticks
// are ignored.
func (s *Stream) Read(ctx context.Context) (<-chan models.RawTick, <-chan error) {
	ticks := make(chan models.RawTick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if conn, ok := s.current(); ok && conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop; survives reconnects, the consumer swaps the conn in place
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			conn, ok := s.current()
			if conn == nil || !ok {
				time.Sleep(s.reconnectDelay)
				continue
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				select {
				case errs <- fmt.Errorf("exchange stream read: %w", err):
				default:
				}
				time.Sleep(s.reconnectDelay)
				continue
			}
			for _, t := range decodeTicks(b) {
				select {
				case ticks <- t:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// decodeTicks accepts both a single row and an array of rows.
func decodeTicks(b []byte) []models.RawTick {
	var many []models.RawTick
	if err := json.Unmarshal(b, &many); err == nil {
		return valid(many)
	}
	var one models.RawTick
	if err := json.Unmarshal(b, &one); err == nil {
		return valid([]models.RawTick{one})
	}
	return nil
}

func valid(ticks []models.RawTick) []models.RawTick {
	out := ticks[:0]
	for _, t := range ticks {
		if t.Symbol != "" {
			out = append(out, t)
		}
	}
	return out
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	return s.Connect(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.connected = false
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

var _ drepo.TickStream = (*Stream)(nil)
