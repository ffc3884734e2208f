package indexer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/idgen"
)

// normalCloseCodes are WebSocket close codes that indicate an expected disconnect.
var normalCloseCodes = []int{
	websocket.CloseNormalClosure,
	websocket.CloseGoingAway,
	websocket.CloseNoStatusReceived,
}

const (
	readDeadline     = 60 * time.Second
	pingInterval     = 30 * time.Second
	maxReconnectWait = 30 * time.Second
)

// Event is one message from the indexer's activity stream.
type Event struct {
	Type        string `json:"type"` // "tx_confirmed", "tx_failed"
	Hash        string `json:"hash"`
	Address     string `json:"address"`
	BlockNumber uint64 `json:"blockNumber"`
}

// subscribeMsg is sent after connecting to select the watched address.
type subscribeMsg struct {
	Action  string `json:"action"`
	Address string `json:"address"`
	ID      string `json:"id"`
}

// Stream consumes the indexer's WebSocket feed for one address. It
// reconnects with backoff until stopped; consumers read Events().
type Stream struct {
	url     string
	apiKey  string
	address string
	logger  *slog.Logger

	events chan Event
	stop   chan struct{}
	done   chan struct{}
}

// NewStream creates a stream for the given address. Call Start to begin
// consuming and Stop to shut down.
func NewStream(wsURL, apiKey, address string, logger *slog.Logger) *Stream {
	return &Stream{
		url:     wsURL,
		apiKey:  apiKey,
		address: address,
		logger:  logger,
		events:  make(chan Event, 64),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Events returns the channel of stream events. It is closed when the
// stream stops.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Start begins consuming the stream in the background.
func (s *Stream) Start() {
	go s.run()
}

// Stop shuts the stream down and waits for the run loop to exit.
func (s *Stream) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Stream) run() {
	defer close(s.done)
	defer close(s.events)

	backoff := time.Second
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		if err := s.consume(); err != nil {
			select {
			case <-s.stop:
				// Stop closed the connection out from under the reader.
				return
			default:
			}
			s.logger.Warn("indexer stream disconnected", "error", err)
		}

		// Wait before reconnecting, doubling up to the cap.
		select {
		case <-s.stop:
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxReconnectWait {
			backoff = maxReconnectWait
		}
	}
}

// consume dials the stream, subscribes, and reads events until the
// connection drops or the stream is stopped.
func (s *Stream) consume() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	header := http.Header{}
	if s.apiKey != "" {
		header.Set("Authorization", "Bearer "+s.apiKey)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := subscribeMsg{
		Action:  "subscribe",
		Address: s.address,
		ID:      idgen.Hex(8),
	}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	s.logger.Info("indexer stream connected", "address", s.address)

	// Keepalive pings; the read deadline is refreshed on pongs.
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	pingStop := make(chan struct{})
	defer close(pingStop)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingStop:
				return
			case <-s.stop:
				// Force the blocked ReadMessage to return.
				_ = conn.Close()
				return
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, normalCloseCodes...) {
				return nil
			}
			return err
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			s.logger.Warn("indexer stream: bad event", "error", err)
			continue
		}

		select {
		case s.events <- event:
		default:
			s.logger.Warn("indexer stream: event buffer full, dropping", "hash", event.Hash)
		}
	}
}
