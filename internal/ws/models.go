package ws

import (
	"encoding/json"

	"github.com/lk16/chessreview/internal/models"
)

const (
	EventAnalysisRequest   = "analysis_request"
	EventAnalysisRecord    = "analysis_record"
	EventAnalysisDone      = "analysis_done"
	EventMotifRequest      = "motif_request"
	EventMotifResponse     = "motif_response"
	EventEvaluationRequest = "evaluation_request"
	EventEvaluationResult  = "evaluation_response"
	EventError             = "error"
)

type Incoming struct {
	Event string          `json:"event"`
	ID    int             `json:"id"`
	Data  json.RawMessage `json:"data"`
}

// Outgoing is a message to the client. ID is the ID of the Incoming message it answers.
type Outgoing struct {
	Event string `json:"event"`
	ID    int    `json:"id"`
	Data  any    `json:"data"`
}

// AnalysisDone follows the last analysis_record of a request.
type AnalysisDone struct {
	AnalysisID string               `json:"analysis_id"`
	Plies      int                  `json:"plies"`
	Incomplete bool                 `json:"incomplete"`
	Error      string               `json:"error,omitempty"`
	Report     models.StyleReport   `json:"report"`
	Blunders   []models.BlunderCard `json:"blunders"`
}

type EvaluationRequest struct {
	Positions []models.Position `json:"positions"`
}

type EvaluationResponse struct {
	Evaluations []models.BookEntry `json:"evaluations"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
