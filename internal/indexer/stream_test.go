package indexer

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestStream_SubscribesAndReceivesEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotAuth string
	var gotSub subscribeMsg
	subReceived := make(chan struct{})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		if err := conn.ReadJSON(&gotSub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		close(subReceived)

		event := Event{Type: "tx_confirmed", Hash: "0xaaa", Address: "0xwallet", BlockNumber: 19000100}
		if err := conn.WriteJSON(event); err != nil {
			t.Errorf("write event: %v", err)
			return
		}

		// Hold the connection open until the client disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	s := NewStream(wsURL, "idx_key", "0xwallet", slog.Default())
	s.Start()
	defer s.Stop()

	select {
	case <-subReceived:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscribe message")
	}
	assert.Equal(t, "Bearer idx_key", gotAuth)
	assert.Equal(t, "subscribe", gotSub.Action)
	assert.Equal(t, "0xwallet", gotSub.Address)
	assert.NotEmpty(t, gotSub.ID)

	select {
	case ev := <-s.Events():
		assert.Equal(t, "tx_confirmed", ev.Type)
		assert.Equal(t, "0xaaa", ev.Hash)
		assert.Equal(t, uint64(19000100), ev.BlockNumber)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestStream_StopWhileReconnecting(t *testing.T) {
	// Nothing is listening here; the stream sits in its reconnect wait.
	s := NewStream("ws://127.0.0.1:1/v1/stream", "", "0xwallet", slog.Default())
	s.Start()
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while reconnecting")
	}

	// The events channel closes once the run loop exits.
	if _, ok := <-s.Events(); ok {
		t.Error("expected events channel to be closed after Stop")
	}
}
