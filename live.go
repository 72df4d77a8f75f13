package main

import (
	"log"
	"net/http"
	"time"

	"loginprobe/internal/attempt"
	"loginprobe/internal/metrics"

	"github.com/gorilla/websocket"
)

const liveWriteWait = 10 * time.Second

// liveFeed pushes the attempt state to console pages. Every connection gets
// the current snapshot first, then each replacement; a slow reader only ever
// sees the newest state.
type liveFeed struct {
	store    *attempt.Store
	upgrader websocket.Upgrader
}

func newLiveFeed(store *attempt.Store) *liveFeed {
	return &liveFeed{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

func (f *liveFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live feed upgrade failed: remote=%s err=%v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	// The server's read/write timeouts still apply to the hijacked conn.
	_ = conn.UnderlyingConn().SetDeadline(time.Time{})

	metrics.LiveClientConnected()
	defer metrics.LiveClientDisconnected()
	log.Printf("live feed connected: remote=%s", r.RemoteAddr)

	updates, cancel := f.store.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := f.send(conn, f.store.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := f.send(conn, st); err != nil {
				log.Printf("live feed write failed: remote=%s err=%v", r.RemoteAddr, err)
				return
			}
		case <-closed:
			log.Printf("live feed disconnected: remote=%s", r.RemoteAddr)
			return
		}
	}
}

func (f *liveFeed) send(conn *websocket.Conn, st attempt.State) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteJSON(st)
}
