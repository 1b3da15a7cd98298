package websocket

import (
	"encoding/json"
	"errors"
	"sync"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/editor/bridge"

	"github.com/gofiber/websocket/v2"
)

const maxSurfaceFrame = 8 << 20

var (
	ErrSurfaceClosed = errors.New("surface connection closed")
	ErrSurfaceBusy   = errors.New("surface send buffer full")
)

// SurfaceClient adapts one websocket connection to bridge.Surface.
type SurfaceClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger logger.ILogger
}

func NewSurfaceClient(conn *websocket.Conn, log logger.ILogger) *SurfaceClient {
	return &SurfaceClient{
		conn:   conn,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
		logger: log,
	}
}

// Send queues msg without blocking. A full buffer means the surface stopped
// reading, which the prober will notice on its own.
func (s *SurfaceClient) Send(msg bridge.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-s.done:
		return ErrSurfaceClosed
	default:
	}

	select {
	case s.send <- data:
		return nil
	default:
		s.logger.Warn("Surface", "Send buffer full, dropping frame", map[string]interface{}{"type": msg.Type})
		return ErrSurfaceBusy
	}
}

// Close is safe to call more than once and from any goroutine.
func (s *SurfaceClient) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.conn != nil {
			err = s.conn.Close()
		}
	})
	return err
}

func (s *SurfaceClient) readPump(dispatch func([]byte)) {
	defer s.Close()

	err := readLoop(s.conn, maxSurfaceFrame, func(data []byte) {
		s.logger.Debug("Surface", "Inbound frame", map[string]interface{}{"bytes": len(data)})
		dispatch(data)
	})
	if unexpectedClose(err) {
		s.logger.Warn("Surface", "Surface closed unexpectedly", map[string]interface{}{"error": err.Error()})
	}
}

func (s *SurfaceClient) writePump() {
	defer s.Close()

	if err := writeLoop(s.conn, s.send, s.done); err != nil && !errors.Is(err, errWriterStopped) {
		s.logger.Warn("Surface", "Write failed", map[string]interface{}{"error": err.Error()})
	}
}
