package main

import (
	"time"

	"github.com/gorilla/websocket"
)

const wsPingInterval = 30 * time.Second

// writeWSWithHeartbeat drains send onto the connection and emits a JSON
// ping whenever the link has been idle for a full interval. Returns when
// send closes or a write fails.
func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	ping := mustMarshal(wsMessage{Type: "ping"})
	lastWrite := time.Now()

	write := func(payload []byte) error {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return err
		}
		lastWrite = time.Now()
		return nil
	}

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := write(msg); err != nil {
				return err
			}
		case <-ticker.C:
			if time.Since(lastWrite) < wsPingInterval {
				continue
			}
			if err := write([]byte(ping)); err != nil {
				return err
			}
		}
	}
}
