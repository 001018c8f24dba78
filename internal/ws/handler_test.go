package ws

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/gofiber/contrib/websocket"
	"github.com/lk16/chessreview/internal/analysis"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/services"
	"github.com/lk16/chessreview/internal/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedConn replays incoming messages and records what is written.
type scriptedConn struct {
	incoming [][]byte
	written  []Outgoing

	// binary holds the indexes of incoming messages that arrive as binary frames
	binary map[int]bool
	reads  int
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	if len(c.incoming) == 0 {
		return 0, nil, io.EOF
	}
	msg := c.incoming[0]
	c.incoming = c.incoming[1:]

	msgType := websocket.TextMessage
	if c.binary[c.reads] {
		msgType = websocket.BinaryMessage
	}
	c.reads++

	return msgType, msg, nil
}

func (c *scriptedConn) WriteMessage(_ int, data []byte) error {
	var outgoing Outgoing
	if err := json.Unmarshal(data, &outgoing); err != nil {
		return err
	}
	c.written = append(c.written, outgoing)
	return nil
}

func (c *scriptedConn) events() []string {
	events := make([]string, len(c.written))
	for i, outgoing := range c.written {
		events[i] = outgoing.Event
	}
	return events
}

type zeroEngine struct{}

func (zeroEngine) Evaluate(context.Context, models.Position, int) (uci.SearchResult, error) {
	return uci.SearchResult{BestMove: "e2e4", Evaluation: models.NewScoreEvaluation(5, 0, "e2e4")}, nil
}

func (zeroEngine) Terminate() error {
	return nil
}

func newTestServices() *services.Services {
	return &services.Services{
		Engines: services.NewEnginePool(func(context.Context) (analysis.Engine, error) {
			return zeroEngine{}, nil
		}, 1),
		Cache: models.NewCache(),
	}
}

func message(t *testing.T, event string, id int, data any) []byte {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	msg, err := json.Marshal(Incoming{Event: event, ID: id, Data: raw})
	require.NoError(t, err)

	return msg
}

func TestHandleAnalysisRequest(t *testing.T) {
	conn := &scriptedConn{incoming: [][]byte{
		message(t, EventAnalysisRequest, 7, models.AnalysisRequest{Moves: []string{"e4", "e5", "Nf3"}}),
	}}

	err := NewHandler(conn, newTestServices(), 5).Handle()
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, []string{EventAnalysisRecord, EventAnalysisRecord, EventAnalysisRecord, EventAnalysisDone}, conn.events())
	for _, outgoing := range conn.written {
		assert.Equal(t, 7, outgoing.ID)
	}

	done, ok := conn.written[3].Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), done["plies"])
	assert.Equal(t, false, done["incomplete"])
}

func TestHandleBadRequestsKeepConnectionOpen(t *testing.T) {
	conn := &scriptedConn{
		incoming: [][]byte{
			message(t, "", 1, nil),
			message(t, "dance", 2, nil),
			message(t, EventAnalysisRequest, 3, models.AnalysisRequest{Moves: []string{"e4", "e4"}}),
			message(t, EventAnalysisRequest, 4, models.AnalysisRequest{}),
			message(t, EventMotifRequest, 5, models.MotifRequest{Position: models.StartPosition, Move: "b5c7"}),
			[]byte("{not json"),
			message(t, EventMotifRequest, 7, models.MotifRequest{Position: models.StartPosition, Move: "g1f3"}),
			message(t, EventMotifRequest, 8, models.MotifRequest{Position: models.StartPosition, Move: "g1f3"}),
			message(t, EventMotifRequest, 9, models.MotifRequest{Position: models.StartPosition, Move: "g1f3"}),
		},
		// the envelope with ID 8 arrives as a binary frame
		binary: map[int]bool{7: true},
	}

	err := NewHandler(conn, newTestServices(), 5).Handle()
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, []string{
		EventError, EventError, EventError, EventError, EventError,
		EventError, EventMotifResponse, EventError, EventMotifResponse,
	}, conn.events())
	assert.Equal(t, 7, conn.written[6].ID)
	assert.Equal(t, 9, conn.written[8].ID)
}

func TestHandleEvaluationRequestUsesCache(t *testing.T) {
	svc := newTestServices()
	svc.Cache.Upsert(models.StartPosition, models.NewScoreEvaluation(20, 30, "e2e4"))

	conn := &scriptedConn{incoming: [][]byte{
		message(t, EventEvaluationRequest, 1, EvaluationRequest{Positions: []models.Position{
			models.StartPosition,
			"8/8/8/8/8/8/8/K6k w - - 0 1",
		}}),
	}}

	err := NewHandler(conn, svc, 5).Handle()
	assert.ErrorIs(t, err, io.EOF)

	require.Equal(t, []string{EventEvaluationResult}, conn.events())
	data, ok := conn.written[0].Data.(map[string]any)
	require.True(t, ok)
	assert.Len(t, data["evaluations"], 1)
}
