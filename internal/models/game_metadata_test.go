package models

import (
	"testing"
	"time"

	"github.com/lk16/chessreview/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name    string
		tags    map[string]string
		want    *GameMetadata
		wantErr bool
	}{
		{
			name: "Complete",
			tags: map[string]string{
				"Event":       "Rated Blitz game",
				"Site":        "https://lichess.org/abcdefgh",
				"Date":        "2024.01.15",
				"UTCTime":     "14:30:00",
				"White":       "Player1",
				"Black":       "Player2",
				"WhiteElo":    "1500",
				"BlackElo":    "1600",
				"Result":      "0-1",
				"TimeControl": "300+3",
				"ECO":         "C20",
			},
			want: &GameMetadata{
				Event:       "Rated Blitz game",
				Site:        "https://lichess.org/abcdefgh",
				Date:        time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
				White:       Player{Name: "Player1", Rating: 1500},
				Black:       Player{Name: "Player2", Rating: 1600},
				Result:      "0-1",
				Winner:      board.Black,
				TimeControl: "300+3",
				Opening:     "C20",
			},
		},
		{
			name: "UnknownFields",
			tags: map[string]string{
				"Date":     "????.??.??",
				"WhiteElo": "?",
				"Result":   "*",
			},
			want: &GameMetadata{Result: "*", Winner: board.NoColor},
		},
		{
			name:    "BrokenRating",
			tags:    map[string]string{"WhiteElo": "abc"},
			wantErr: true,
		},
		{
			name:    "BrokenResult",
			tags:    map[string]string{"Result": "2-0"},
			wantErr: true,
		},
		{
			name:    "BrokenDate",
			tags:    map[string]string{"Date": "2024-01-15"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata(tt.tags)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeControlCategory(t *testing.T) {
	tests := map[string]string{
		"60+0":   "bullet",
		"120+1":  "bullet",
		"180+2":  "blitz",
		"300":    "blitz",
		"600+5":  "rapid",
		"1800+0": "classical",
		"-":      "correspondence",
		"?":      "unknown",
		"":       "unknown",
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, TimeControlCategory(input))
		})
	}
}
