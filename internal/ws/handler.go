package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/repository"
	"github.com/lk16/chessreview/internal/review"
	"github.com/lk16/chessreview/internal/rules"
	"github.com/lk16/chessreview/internal/services"
)

const (
	evaluationTimeout = 2 * time.Second
)

// errBadRequest marks errors that are reported to the client without closing the connection.
var errBadRequest = errors.New("bad request")

// Conn is the part of a websocket connection the handler uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
}

type Handler struct {
	services *services.Services
	reviewer *review.Reviewer
	ws       Conn
}

// NewHandler creates a new Handler. Analyses search depth plies unless a request asks otherwise.
func NewHandler(ws Conn, services *services.Services, depth int) *Handler {
	return &Handler{
		services: services,
		reviewer: review.NewReviewer(services, depth),
		ws:       ws,
	}
}

// readMessage reads the next request. Frames that are not a JSON envelope are returned
// as errBadRequest together with an empty Incoming, the connection itself is still usable.
func (h *Handler) readMessage() (*Incoming, error) {
	var req Incoming

	msgType, msg, err := h.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("ws read error: %w", err)
	}

	slog.Debug("read ws message", "msgType", msgType, "msg", string(msg))

	if msgType != websocket.TextMessage {
		return &req, fmt.Errorf("%w: unexpected message type: %d", errBadRequest, msgType)
	}

	if err = json.Unmarshal(msg, &req); err != nil {
		return &Incoming{}, fmt.Errorf("%w: unmarshal error: %w", errBadRequest, err)
	}

	return &req, nil
}

func (h *Handler) writeMessage(outgoing *Outgoing) error {
	msg, err := json.Marshal(outgoing)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	slog.Debug("write ws message", "event", outgoing.Event, "id", outgoing.ID)

	if err = h.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	return nil
}

func (h *Handler) handleMessage(req *Incoming) error {
	if req.Event == "" {
		return fmt.Errorf("%w: event field is either empty or missing", errBadRequest)
	}

	switch req.Event {
	case EventAnalysisRequest:
		return h.handleAnalysisRequest(req)
	case EventMotifRequest:
		return h.handleMotifRequest(req)
	case EventEvaluationRequest:
		return h.handleEvaluationRequest(req)
	default:
		return fmt.Errorf("%w: unknown event: %s", errBadRequest, req.Event)
	}
}

// Handle handles the websocket connection until it is closed or broken.
func (h *Handler) Handle() error {
	for {
		req, err := h.readMessage()
		if err != nil && !errors.Is(err, errBadRequest) {
			return err
		}

		if err == nil {
			err = h.handleMessage(req)
		}

		if errors.Is(err, errBadRequest) {
			err = h.writeMessage(&Outgoing{
				Event: EventError,
				ID:    req.ID,
				Data:  ErrorResponse{Error: err.Error()},
			})
		}

		if err != nil {
			return fmt.Errorf("ws handle error: %w", err)
		}
	}
}

func decode(req *Incoming, target any) error {
	if err := json.Unmarshal(req.Data, target); err != nil {
		return fmt.Errorf("%w: %s data: %w", errBadRequest, req.Event, err)
	}
	return nil
}

func (h *Handler) handleAnalysisRequest(req *Incoming) error {
	var reqData models.AnalysisRequest
	if err := decode(req, &reqData); err != nil {
		return err
	}

	if err := reqData.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	game, err := review.ResolveRequest(&reqData)
	if err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	emit := func(record models.AnalysisRecord) error {
		return h.writeMessage(&Outgoing{Event: EventAnalysisRecord, ID: req.ID, Data: record})
	}

	response, err := h.reviewer.Stream(context.Background(), game, emit)
	if err != nil {
		if errors.Is(err, rules.ErrInvalidInput) {
			return fmt.Errorf("%w: %w", errBadRequest, err)
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	return h.writeMessage(&Outgoing{
		Event: EventAnalysisDone,
		ID:    req.ID,
		Data: AnalysisDone{
			AnalysisID: response.ID,
			Plies:      len(response.Records),
			Incomplete: response.Incomplete,
			Error:      response.Error,
			Report:     response.Report,
			Blunders:   response.Blunders,
		},
	})
}

func (h *Handler) handleMotifRequest(req *Incoming) error {
	var reqData models.MotifRequest
	if err := decode(req, &reqData); err != nil {
		return err
	}

	if err := reqData.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	response, err := review.Motifs(reqData.Position, reqData.Move)
	if err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return h.writeMessage(&Outgoing{Event: EventMotifResponse, ID: req.ID, Data: response})
}

func (h *Handler) handleEvaluationRequest(req *Incoming) error {
	var reqData EvaluationRequest
	if err := decode(req, &reqData); err != nil {
		return err
	}

	evaluations, err := h.lookup(reqData.Positions)
	if err != nil {
		return fmt.Errorf("failed to lookup positions: %w", err)
	}

	return h.writeMessage(&Outgoing{
		Event: EventEvaluationResult,
		ID:    req.ID,
		Data:  EvaluationResponse{Evaluations: evaluations},
	})
}

// lookup answers from the book when there is one and from the engine cache otherwise.
func (h *Handler) lookup(positions []models.Position) ([]models.BookEntry, error) {
	if h.services.Postgres != nil {
		ctx, cancel := context.WithTimeout(context.Background(), evaluationTimeout)
		defer cancel()

		repo := repository.NewEvaluationRepositoryFromServices(h.services)
		return repo.LookupPositions(ctx, positions)
	}

	entries := make([]models.BookEntry, 0, len(positions))
	if h.services.Cache == nil {
		return entries, nil
	}

	for _, pos := range positions {
		if eval, ok := h.services.Cache.Lookup(pos, 0); ok {
			entries = append(entries, models.BookEntry{Position: pos, Evaluation: eval})
		}
	}

	return entries, nil
}
