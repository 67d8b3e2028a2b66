package realtime

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Streamer upgrades authenticated requests to websocket connections carrying
// the caller's messages.
type Streamer struct {
	broker   Broker
	upgrader websocket.Upgrader
}

// NewStreamer creates a Streamer. allowedOrigins empty accepts any origin.
func NewStreamer(broker Broker, allowedOrigins []string) *Streamer {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Streamer{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin] || allowed["*"]
			},
		},
	}
}

// Serve streams messages addressed to userID until the client disconnects.
func (s *Streamer) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Stream: Upgrade failed for user %s: %v", userID, err)
		return
	}
	defer conn.Close()

	msgs, cancel, err := s.broker.Subscribe(r.Context(), userID)
	if err != nil {
		log.Printf("Stream: Subscribe failed for user %s: %v", userID, err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer cancel()
	log.Printf("Stream: User %s connected", userID)

	// Reader: only control frames are expected; exit on close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			log.Printf("Stream: User %s disconnected", userID)
			return
		case payload, ok := <-msgs:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("Stream: Write error for user %s: %v", userID, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
