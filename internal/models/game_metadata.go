package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lk16/chessreview/internal/board"
)

type Player struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// GameMetadata represents the tag pairs of a PGN game.
type GameMetadata struct {
	// Event is the name of the tournament or match
	Event string `json:"event"`

	// Site is the site where the game was played
	Site string `json:"site"`

	// Date is when the game was played, zero when unknown
	Date time.Time `json:"date"`

	White Player `json:"white"`
	Black Player `json:"black"`

	// Result is the raw result tag such as "1-0" or "1/2-1/2"
	Result string `json:"result"`

	// Winner is the color of the winner, or board.NoColor for a draw or unfinished game
	Winner board.Color `json:"winner"`

	// TimeControl is the raw time control tag such as "300+3"
	TimeControl string `json:"time_control"`

	// Opening is the ECO code or opening name, whichever is available
	Opening string `json:"opening"`
}

// ParseMetadata builds GameMetadata from PGN tag pairs. All tags are optional,
// but present tags must be well-formed.
func ParseMetadata(tags map[string]string) (*GameMetadata, error) {
	parser := metadataParser{metadata: tags}
	return parser.parse()
}

// metadataParser is a parser for PGN metadata.
type metadataParser struct {
	metadata map[string]string
}

func (p metadataParser) parse() (*GameMetadata, error) {
	metadata := &GameMetadata{
		Event:       p.metadata["Event"],
		Site:        p.metadata["Site"],
		TimeControl: p.metadata["TimeControl"],
		Result:      p.metadata["Result"],
	}

	metadata.White.Name = p.metadata["White"]
	metadata.Black.Name = p.metadata["Black"]

	metadata.Opening = p.metadata["Opening"]
	if metadata.Opening == "" {
		metadata.Opening = p.metadata["ECO"]
	}

	var err error
	metadata.White.Rating, err = p.parseRating("White")
	if err != nil {
		return nil, fmt.Errorf("failed to parse white rating: %w", err)
	}

	metadata.Black.Rating, err = p.parseRating("Black")
	if err != nil {
		return nil, fmt.Errorf("failed to parse black rating: %w", err)
	}

	metadata.Date, err = p.parseDate()
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	metadata.Winner, err = p.getWinner()
	if err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	return metadata, nil
}

func (p metadataParser) parseDate() (time.Time, error) {
	dateString, ok := p.metadata["Date"]
	if !ok || strings.Contains(dateString, "?") {
		return time.Time{}, nil
	}

	layout := "2006.01.02"
	value := dateString

	if timeString, ok := p.metadata["UTCTime"]; ok {
		layout += " 15:04:05"
		value += " " + timeString
	}

	date, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}

	return date, nil
}

func (p metadataParser) getWinner() (board.Color, error) {
	switch result := p.metadata["Result"]; result {
	case "1-0":
		return board.White, nil
	case "0-1":
		return board.Black, nil
	case "1/2-1/2", "*", "":
		return board.NoColor, nil
	default:
		return board.NoColor, fmt.Errorf("unknown result %q", result)
	}
}

func (p metadataParser) parseRating(prefix string) (int, error) {
	ratingString, ok := p.metadata[prefix+"Elo"]
	if !ok || ratingString == "" || ratingString == "?" || ratingString == "-" {
		return 0, nil
	}

	rating, err := strconv.Atoi(ratingString)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s rating: %w", prefix, err)
	}

	return rating, nil
}

// TimeControlCategory buckets a TimeControl tag by estimated game duration,
// base seconds plus 40 times the increment.
func TimeControlCategory(timeControl string) string {
	if timeControl == "-" {
		return "correspondence"
	}

	base, increment, found := strings.Cut(timeControl, "+")
	baseSeconds, err := strconv.Atoi(base)
	if err != nil {
		return "unknown"
	}

	incrementSeconds := 0
	if found {
		if incrementSeconds, err = strconv.Atoi(increment); err != nil {
			return "unknown"
		}
	}

	switch estimated := baseSeconds + 40*incrementSeconds; {
	case estimated < 180:
		return "bullet"
	case estimated < 480:
		return "blitz"
	case estimated < 1500:
		return "rapid"
	default:
		return "classical"
	}
}
