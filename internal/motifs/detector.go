// Package motifs labels moves with the tactical and structural patterns they create.
// Detection works on board snapshots only and never consults an engine.
package motifs

import (
	"github.com/lk16/chessreview/internal/board"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/rules"
)

// input is what every detector gets to look at.
type input struct {
	before board.State
	after  board.State
	move   models.Move

	// mover is the color of the side that played move
	mover    board.Color
	opponent board.Color
}

// detector returns the labels it recognizes in the input.
type detector func(in *input) []models.MotifLabel

var detectors = []detector{
	detectFork,
	detectDoubleAttack,
	detectPin,
	detectSkewer,
	detectDiscovered,
	detectOutpost,
	detectHangingPiece,
	detectOverloadedDefender,
	detectTrappedPiece,
	detectPawnStructure,
	detectBackRankThreat,
	detectBattery,
	detectMatingNet,
}

// Detect returns the motifs present after move was played in before, resulting in after.
func Detect(before board.State, move models.Move, after board.State) models.MotifSet {
	mover := move.Color
	if mover == board.NoColor {
		mover = before.Piece(move.From).Color
	}

	in := &input{
		before:   before,
		after:    after,
		move:     move,
		mover:    mover,
		opponent: mover.Other(),
	}

	var labels []models.MotifLabel
	for _, detect := range detectors {
		labels = append(labels, detect(in)...)
	}

	return models.NewMotifSet(labels...)
}

// DetectPly runs Detect on a replayed ply.
func DetectPly(ply rules.Ply) models.MotifSet {
	return Detect(board.FromPosition(ply.Before), ply.Move, board.FromPosition(ply.After))
}

func when(ok bool, label models.MotifLabel) []models.MotifLabel {
	if ok {
		return []models.MotifLabel{label}
	}
	return nil
}

// moved returns the piece standing on the destination square after the move.
func (in *input) moved() board.Piece {
	return in.after.Piece(in.move.To)
}

// opposingPieces returns the squares of the opponent's pieces other than the king.
func (in *input) opposingPieces() []board.Square {
	var squares []board.Square
	for _, sq := range in.after.Occupied(in.opponent) {
		if in.after.Piece(sq).Kind != board.King {
			squares = append(squares, sq)
		}
	}
	return squares
}

// attackedOpposing returns the opposing pieces attacked from the destination square.
func (in *input) attackedOpposing() []board.Piece {
	var pieces []board.Piece
	for _, sq := range in.after.AttacksFrom(in.move.To) {
		if piece := in.after.Piece(sq); !piece.IsEmpty() && piece.Color == in.opponent {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}
