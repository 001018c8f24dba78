package uci

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int {
	return &i
}

func TestParseLine(t *testing.T) {
	// Lines are taken from Stockfish 16 output.
	tests := []struct {
		line    string
		want    *message
		wantErr error
	}{
		{
			line:    "\n",
			wantErr: errEmptyLine,
		},
		{
			line:    "id name Stockfish 16",
			wantErr: errIgnoredLine,
		},
		{
			line:    "option name Skill Level type spin default 20 min 0 max 20",
			wantErr: errIgnoredLine,
		},
		{
			line: "uciok",
			want: &message{kind: msgUCIOK},
		},
		{
			line: "readyok\n",
			want: &message{kind: msgReadyOK},
		},
		{
			line: "info depth 12 seldepth 17 multipv 1 score cp 34 nodes 104518 nps 1045180 hashfull 41 tbhits 0 time 100 pv e2e4 e7e5 g1f3",
			want: &message{kind: msgInfo, depth: 12, score: intPtr(34), pv: []string{"e2e4", "e7e5", "g1f3"}},
		},
		{
			line: "info depth 20 seldepth 4 multipv 1 score mate -2 nodes 3188 time 3 pv h7h6 d8h4",
			want: &message{kind: msgInfo, depth: 20, mate: intPtr(-2), pv: []string{"h7h6", "d8h4"}},
		},
		{
			line: "info depth 9 score cp -15 lowerbound nodes 3000",
			want: &message{kind: msgInfo, depth: 9, score: intPtr(-15)},
		},
		{
			line: "info depth 0 score mate 0",
			want: &message{kind: msgInfo, depth: 0, mate: intPtr(0)},
		},
		{
			line:    "info depth 12 currmove e2e4 currmovenumber 1",
			wantErr: errIncompleteInfo,
		},
		{
			line:    "info score cp 20 nodes 10",
			wantErr: errIncompleteInfo,
		},
		{
			line:    "info string NNUE evaluation using nn-5af11540bbfe.nnue enabled",
			wantErr: errIgnoredLine,
		},
		{
			line:    "info depth x score cp 20",
			wantErr: errBrokenLine,
		},
		{
			line:    "info depth 3 score wdl 20",
			wantErr: errBrokenLine,
		},
		{
			line: "bestmove e2e4 ponder e7e5",
			want: &message{kind: msgBestMove, bestMove: "e2e4", ponder: "e7e5"},
		},
		{
			line: "bestmove (none)",
			want: &message{kind: msgBestMove, bestMove: NoMove},
		},
		{
			line:    "bestmove",
			wantErr: errBrokenLine,
		},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("Line-%d", i), func(t *testing.T) {
			got, err := parseLine(tt.line)
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMessageEvaluation(t *testing.T) {
	msg := &message{kind: msgInfo, depth: 7, score: intPtr(12), pv: []string{"d2d4"}}
	eval := msg.evaluation()

	assert.Equal(t, 7, eval.Depth)
	assert.Equal(t, 12, eval.Centipawns())
	assert.Equal(t, "d2d4", eval.BestMove())

	empty := (&message{kind: msgInfo, depth: 1, mate: intPtr(3)}).evaluation()
	assert.NotNil(t, empty.Variation)
	assert.Empty(t, empty.Variation)
}

func TestLimitCommand(t *testing.T) {
	assert.Equal(t, "go depth 15", Depth(15).command())
	assert.Equal(t, "go movetime 250", MoveTime(250_000_000).command())

	assert.NoError(t, Depth(1).validate())
	assert.ErrorIs(t, Limit{}.validate(), ErrInvalidSearchLimit)
	assert.ErrorIs(t, Limit{Depth: 3, MoveTime: 10}.validate(), ErrInvalidSearchLimit)
}

func TestPositionCommand(t *testing.T) {
	assert.Equal(t, "position startpos", positionCommand("", nil))
	assert.Equal(t, "position startpos moves e2e4 e7e5", positionCommand("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", []string{"e2e4", "e7e5"}))
	assert.Equal(t, "position fen 4k3/8/8/8/8/8/8/4K3 w - - 0 1", positionCommand("4k3/8/8/8/8/8/8/4K3 w - - 0 1", nil))
}

func TestStrengthCommands(t *testing.T) {
	assert.Equal(t, []string{
		"setoption name Skill Level value 5",
		"setoption name UCI_LimitStrength value true",
		"setoption name UCI_Elo value 1785",
	}, strengthCommands(5))

	assert.Equal(t, []string{
		"setoption name Skill Level value 20",
		"setoption name UCI_LimitStrength value false",
	}, strengthCommands(42))

	assert.Equal(t, "setoption name Skill Level value 0", strengthCommands(-3)[0])
}
