package models

import "github.com/lk16/chessreview/internal/board"

// Move describes a played move with everything needed to report on it.
type Move struct {
	From      board.Square `json:"from"`
	To        board.Square `json:"to"`
	Piece     board.Kind   `json:"piece"`
	Color     board.Color  `json:"color"`
	Promotion board.Kind   `json:"promotion,omitempty"`
	Captured  bool         `json:"captured"`
	Check     bool         `json:"check"`
	Checkmate bool         `json:"checkmate"`
	SAN       string       `json:"san"`
	UCI       string       `json:"uci"`
}

func (m Move) String() string {
	if m.SAN != "" {
		return m.SAN
	}
	return m.UCI
}
