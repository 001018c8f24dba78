package models

import (
	"errors"
	"fmt"
	"strings"
)

// MateScore is the centipawn value of delivering mate on the board.
// A mate in n is worth MateScore-n, so shorter mates rank higher.
const MateScore = 10000

// Evaluation is an engine verdict from the side to move's perspective.
// At most one of Score and Mate is set. Both unset means no result.
type Evaluation struct {
	Depth     int       `json:"depth"          db:"depth"`
	Score     *int      `json:"score,omitempty" db:"score"`
	Mate      *int      `json:"mate,omitempty"  db:"mate"`
	Variation Variation `json:"pv"             db:"pv"`
}

// ZeroEvaluation is returned in place of a search that did not finish in time.
func ZeroEvaluation() Evaluation {
	score := 0
	return Evaluation{Score: &score, Variation: Variation{}}
}

func NewScoreEvaluation(depth, centipawns int, pv ...string) Evaluation {
	return Evaluation{Depth: depth, Score: &centipawns, Variation: Variation(pv)}
}

func NewMateEvaluation(depth, mate int, pv ...string) Evaluation {
	return Evaluation{Depth: depth, Mate: &mate, Variation: Variation(pv)}
}

// HasResult returns true if a score or a mate distance is known.
func (e Evaluation) HasResult() bool {
	return e.Score != nil || e.Mate != nil
}

// Centipawns converts the evaluation to a single number, mapping mates to +/-MateScore.
// "mate 0" means the side to move is mated.
func (e Evaluation) Centipawns() int {
	switch {
	case e.Mate != nil:
		n := *e.Mate
		if n > 0 {
			return MateScore - n
		}
		return -MateScore - n
	case e.Score != nil:
		return *e.Score
	}
	return 0
}

// BestMove returns the first move of the principal variation, if any.
func (e Evaluation) BestMove() string {
	if len(e.Variation) == 0 {
		return ""
	}
	return e.Variation[0]
}

// String formats mates as "#3" and scores in pawns as "+1.2".
func (e Evaluation) String() string {
	if e.Mate != nil {
		return fmt.Sprintf("#%d", *e.Mate)
	}

	if e.Score == nil || *e.Score == 0 {
		return "0.0"
	}

	return fmt.Sprintf("%+.1f", float64(*e.Score)/100)
}

func (e *Evaluation) Validate() error {
	if e.Score != nil && e.Mate != nil {
		return errors.New("evaluation cannot have both score and mate")
	}

	if e.Depth < 0 {
		return errors.New("depth is out of range")
	}

	for _, move := range e.Variation {
		if len(move) < 4 || len(move) > 5 {
			return fmt.Errorf("invalid move %q in variation", move)
		}
	}

	return nil
}

// Variation is a principal variation in UCI notation that implements sql.Scanner.
type Variation []string

// Scan implements the sql.Scanner interface for Variation.
func (v *Variation) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Variation", value)
	}

	if bytes == nil {
		return errors.New("cannot scan nil into Variation")
	}

	// We should have a string that looks like "{e2e4,e7e5}"
	s := strings.Trim(string(bytes), "{}")

	if s == "" {
		*v = Variation{}
		return nil
	}

	*v = strings.Split(s, ",")
	return nil
}
