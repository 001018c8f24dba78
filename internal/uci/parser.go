package uci

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lk16/chessreview/internal/models"
)

var (
	errEmptyLine      = errors.New("line is empty")
	errIgnoredLine    = errors.New("line carries nothing we track")
	errIncompleteInfo = errors.New("info line lacks depth or score")
	errBrokenLine     = errors.New("line is malformed")
)

type messageKind int

const (
	msgUCIOK messageKind = iota + 1
	msgReadyOK
	msgInfo
	msgBestMove
)

// message is a parsed line of engine output.
type message struct {
	kind messageKind

	// set for msgInfo
	depth int
	score *int
	mate  *int
	pv    []string

	// set for msgBestMove
	bestMove string
	ponder   string
}

func (m *message) evaluation() models.Evaluation {
	pv := models.Variation{}
	if len(m.pv) > 0 {
		pv = append(pv, m.pv...)
	}

	return models.Evaluation{
		Depth:     m.depth,
		Score:     m.score,
		Mate:      m.mate,
		Variation: pv,
	}
}

// isExpectedError returns true for lines that are fine to skip.
func isExpectedError(err error) bool {
	return errors.Is(err, errEmptyLine) || errors.Is(err, errIgnoredLine) || errors.Is(err, errIncompleteInfo)
}

func parseLine(line string) (*message, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errEmptyLine
	}

	switch fields[0] {
	case "uciok":
		return &message{kind: msgUCIOK}, nil
	case "readyok":
		return &message{kind: msgReadyOK}, nil
	case "info":
		return parseInfo(fields[1:])
	case "bestmove":
		return parseBestMove(fields[1:])
	}

	return nil, errIgnoredLine
}

// infoKeysWithValue lists info keys followed by a single value we skip.
var infoKeysWithValue = map[string]bool{
	"seldepth":       true,
	"multipv":        true,
	"nodes":          true,
	"nps":            true,
	"time":           true,
	"hashfull":       true,
	"tbhits":         true,
	"sbhits":         true,
	"cpuload":        true,
	"currmove":       true,
	"currmovenumber": true,
}

func parseInfo(fields []string) (*message, error) {
	msg := &message{kind: msgInfo}
	hasDepth := false

	for i := 0; i < len(fields); i++ {
		switch key := fields[i]; {
		case key == "string":
			// free text until the end of the line
			return nil, errIgnoredLine

		case key == "depth":
			value, err := intAt(fields, i+1)
			if err != nil {
				return nil, fmt.Errorf("%w: depth: %w", errBrokenLine, err)
			}
			msg.depth = value
			hasDepth = true
			i++

		case key == "score":
			value, err := intAt(fields, i+2)
			if err != nil {
				return nil, fmt.Errorf("%w: score: %w", errBrokenLine, err)
			}

			switch fields[i+1] {
			case "cp":
				msg.score = &value
			case "mate":
				msg.mate = &value
			default:
				return nil, fmt.Errorf("%w: unknown score kind %q", errBrokenLine, fields[i+1])
			}
			i += 2

		case key == "pv":
			msg.pv = append([]string{}, fields[i+1:]...)
			i = len(fields)

		case infoKeysWithValue[key]:
			i++
		}
	}

	if !hasDepth || (msg.score == nil && msg.mate == nil) {
		return nil, errIncompleteInfo
	}

	return msg, nil
}

func intAt(fields []string, index int) (int, error) {
	if index >= len(fields) {
		return 0, errors.New("value is missing")
	}
	return strconv.Atoi(fields[index])
}

func parseBestMove(fields []string) (*message, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: bestmove without move", errBrokenLine)
	}

	msg := &message{kind: msgBestMove, bestMove: fields[0]}

	if len(fields) >= 3 && fields[1] == "ponder" {
		msg.ponder = fields[2]
	}

	return msg, nil
}
