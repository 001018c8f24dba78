package uci

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lk16/chessreview/internal/models"
)

// NoMove is what engines send as best move when the side to move has no legal moves.
const NoMove = "(none)"

var (
	ErrNotReady           = errors.New("engine session is not ready")
	ErrBusy               = errors.New("engine session is busy")
	ErrSessionClosed      = errors.New("engine session is closed")
	ErrEngineProcessLost  = errors.New("engine process lost")
	ErrProtocolTimeout    = errors.New("engine did not answer in time")
	ErrInvalidSearchLimit = errors.New("search limit needs exactly one of depth or move time")
)

// State is the lifecycle stage of a Session.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateBusy
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Limit bounds a search by depth or by time.
type Limit struct {
	Depth    int
	MoveTime time.Duration
}

func Depth(depth int) Limit {
	return Limit{Depth: depth}
}

func MoveTime(d time.Duration) Limit {
	return Limit{MoveTime: d}
}

func (l Limit) validate() error {
	if (l.Depth > 0) == (l.MoveTime > 0) {
		return ErrInvalidSearchLimit
	}
	return nil
}

func (l Limit) command() string {
	if l.Depth > 0 {
		return "go depth " + strconv.Itoa(l.Depth)
	}
	return "go movetime " + strconv.FormatInt(l.MoveTime.Milliseconds(), 10)
}

// SearchResult is what a finished search produced.
type SearchResult struct {
	BestMove   string
	Ponder     string
	Evaluation models.Evaluation

	// TimedOut marks the placeholder result returned when the engine did not answer in time
	TimedOut bool

	// Cached is set when the result came from the evaluation cache instead of the engine
	Cached bool
}

// HasMove returns false when the engine reported no legal move or did not finish.
func (r SearchResult) HasMove() bool {
	return r.BestMove != "" && r.BestMove != NoMove
}

// timedOutResult is the zero evaluation handed out when a search exceeds its deadline.
func timedOutResult() SearchResult {
	return SearchResult{
		BestMove:   NoMove,
		Evaluation: models.ZeroEvaluation(),
		TimedOut:   true,
	}
}

// Result contains a search result or an error.
type Result struct {
	Result SearchResult
	Err    error
}

// positionCommand declares a position, optionally followed by moves in UCI notation.
func positionCommand(pos models.Position, moves []string) string {
	var sb strings.Builder

	if pos == "" || pos == models.StartPosition {
		sb.WriteString("position startpos")
	} else {
		sb.WriteString("position fen ")
		sb.WriteString(string(pos))
	}

	if len(moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(moves, " "))
	}

	return sb.String()
}

func setOptionCommand(name string, value any) string {
	return fmt.Sprintf("setoption name %s value %v", name, value)
}

// strengthCommands maps a skill level from 0 to 20 to engine options. Levels
// below 20 also cap the playing strength by Elo.
func strengthCommands(level int) []string {
	level = max(0, min(20, level))

	commands := []string{setOptionCommand("Skill Level", level)}

	if level < 20 {
		commands = append(commands,
			setOptionCommand("UCI_LimitStrength", true),
			setOptionCommand("UCI_Elo", 1320+level*93),
		)
	} else {
		commands = append(commands, setOptionCommand("UCI_LimitStrength", false))
	}

	return commands
}
