package models

// LabelCount is one entry of a frequency table.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MotifCount is a motif label with the number of plies it was detected on.
type MotifCount struct {
	Motif MotifLabel `json:"motif"`
	Count int        `json:"count"`
}

// PhaseLoss holds the average centipawn loss per game phase. Phases without plies are 0.
type PhaseLoss struct {
	Opening    float64 `json:"opening"`
	Middlegame float64 `json:"middlegame"`
	Endgame    float64 `json:"endgame"`
}

// StyleReport aggregates one or more analysed games.
// Plies whose engine search timed out count towards Plies, TimedOutPlies and TopMotifs only.
type StyleReport struct {
	Games              int          `json:"games"`
	Plies              int          `json:"plies"`
	TimedOutPlies      int          `json:"timed_out_plies"`
	AverageLoss        float64      `json:"average_loss"`
	TacticalPercentage float64      `json:"tactical_percentage"`
	CommonBlunders     []LabelCount `json:"common_blunders"`
	PhaseLoss          PhaseLoss    `json:"phase_loss"`
	TopMotifs          []MotifCount `json:"top_motifs"`
	QualityCounts      []LabelCount `json:"quality_counts"`
	TimeControls       []LabelCount `json:"time_controls,omitempty"`
	Suggestions        []string     `json:"suggestions,omitempty"`
}

// GameRecords is an analysed game with the metadata needed for summaries.
type GameRecords struct {
	TimeControl string           `json:"time_control"`
	Records     []AnalysisRecord `json:"records"`
}
