package models

// Quality grades a move by the centipawns it lost.
type Quality string

const (
	Excellent  Quality = "Excellent"
	Reasonable Quality = "Reasonable"
	Inaccuracy Quality = "Inaccuracy"
	Blunder    Quality = "Blunder"
)

// Phase is the stage of the game a ply belongs to.
type Phase string

const (
	Opening    Phase = "opening"
	Middlegame Phase = "middlegame"
	Endgame    Phase = "endgame"
)

// AnalysisRecord is the verdict on a single ply of a game.
type AnalysisRecord struct {
	// Ply is the zero-based index of the move in the game
	Ply int `json:"ply"`

	Move   Move     `json:"move"`
	Before Position `json:"before"`
	After  Position `json:"after"`

	// EvalBefore is from the mover's perspective, EvalAfter from the opponent's
	EvalBefore Evaluation `json:"eval_before"`
	EvalAfter  Evaluation `json:"eval_after"`

	// BestMove is the engine's preferred move in Before, in UCI notation
	BestMove string `json:"best_move"`

	CentipawnLoss int      `json:"centipawn_loss"`
	Quality       Quality  `json:"quality"`
	Motifs        MotifSet `json:"motifs"`

	// EngineTimedOut is set when either evaluation is the zero placeholder
	EngineTimedOut bool `json:"engine_timed_out,omitempty"`
}

// BlunderCard is a compact description of a costly move for review.
type BlunderCard struct {
	Ply      int      `json:"ply"`
	Position Position `json:"position"`
	Played   string   `json:"played"`
	BestMove string   `json:"best_move"`
	Loss     int      `json:"loss"`
	Quality  Quality  `json:"quality"`
	Motifs   MotifSet `json:"motifs"`
}

// RankedMove is a legal move with the score it leads to for the mover.
type RankedMove struct {
	Move       string     `json:"move"`
	SAN        string     `json:"san"`
	Score      int        `json:"score"`
	Evaluation Evaluation `json:"evaluation"`
}
