package websocket

import (
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var errWriterStopped = errors.New("writer stopped")

// readLoop reads frames until the peer goes away or stops answering pings.
// onFrame may be nil for connections whose inbound traffic is ignored.
func readLoop(conn *websocket.Conn, limit int64, onFrame func([]byte)) error {
	conn.SetReadLimit(limit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(data)
		}
	}
}

// writeLoop drains frames onto conn and pings on pingPeriod. It returns when
// frames is closed (after sending a close frame), when done fires, or on the
// first write error.
func writeLoop(conn *websocket.Conn, frames <-chan []byte, done <-chan struct{}) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return errWriterStopped
		case message, ok := <-frames:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return err
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func unexpectedClose(err error) bool {
	return websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure)
}
