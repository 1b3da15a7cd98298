package websocket

import (
	"encoding/json"
	"testing"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/editor/bridge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceClientQueuesFrames(t *testing.T) {
	s := NewSurfaceClient(nil, logger.NewNopLogger())

	require.NoError(t, s.Send(bridge.Message{Type: bridge.CmdCheckStatus, SessionID: "s1"}))

	var msg bridge.Message
	require.NoError(t, json.Unmarshal(<-s.send, &msg))
	assert.Equal(t, bridge.CmdCheckStatus, msg.Type)
	assert.Equal(t, "s1", msg.SessionID)
}

func TestSurfaceClientFullBuffer(t *testing.T) {
	s := NewSurfaceClient(nil, logger.NewNopLogger())
	for i := 0; i < cap(s.send); i++ {
		require.NoError(t, s.Send(bridge.Message{Type: bridge.CmdCheckStatus}))
	}
	assert.ErrorIs(t, s.Send(bridge.Message{Type: bridge.CmdCheckStatus}), ErrSurfaceBusy)
}

func TestSurfaceClientClose(t *testing.T) {
	s := NewSurfaceClient(nil, logger.NewNopLogger())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Send(bridge.Message{Type: bridge.CmdClearContent}), ErrSurfaceClosed)
}
