package models

import (
	"encoding/json"
	"slices"
)

// MotifLabel names a tactical or structural pattern.
type MotifLabel string

const (
	Fork               MotifLabel = "Fork"
	DoubleAttack       MotifLabel = "Double Attack"
	Pin                MotifLabel = "Pin"
	Skewer             MotifLabel = "Skewer"
	DiscoveredAttack   MotifLabel = "Discovered Attack"
	DiscoveredCheck    MotifLabel = "Discovered Check"
	Outpost            MotifLabel = "Outpost"
	HangingPiece       MotifLabel = "Hanging Piece"
	OverloadedDefender MotifLabel = "Overloaded Defender"
	TrappedPiece       MotifLabel = "Trapped Piece"
	DoubledPawns       MotifLabel = "Doubled Pawns"
	IsolatedPawn       MotifLabel = "Isolated Pawn"
	PassedPawn         MotifLabel = "Passed Pawn"
	BackRankThreat     MotifLabel = "Back Rank Threat"
	Battery            MotifLabel = "Battery"
	MatingNet          MotifLabel = "Mating Net"
)

// AllMotifs lists every label in reporting order.
var AllMotifs = []MotifLabel{
	Fork,
	DoubleAttack,
	Pin,
	Skewer,
	DiscoveredAttack,
	DiscoveredCheck,
	Outpost,
	HangingPiece,
	OverloadedDefender,
	TrappedPiece,
	DoubledPawns,
	IsolatedPawn,
	PassedPawn,
	BackRankThreat,
	Battery,
	MatingNet,
}

// Rank returns the position of the label in AllMotifs, or -1 for unknown labels.
func (l MotifLabel) Rank() int {
	return slices.Index(AllMotifs, l)
}

// MotifSet is a duplicate-free set of labels kept in AllMotifs order.
type MotifSet []MotifLabel

func NewMotifSet(labels ...MotifLabel) MotifSet {
	set := MotifSet{}
	for _, label := range labels {
		if !slices.Contains(set, label) {
			set = append(set, label)
		}
	}

	slices.SortFunc(set, func(a, b MotifLabel) int {
		return a.Rank() - b.Rank()
	})

	return set
}

func (s MotifSet) Has(label MotifLabel) bool {
	return slices.Contains(s, label)
}

// Union returns a new set containing the labels of both sets.
func (s MotifSet) Union(other MotifSet) MotifSet {
	return NewMotifSet(append(slices.Clone(s), other...)...)
}

// MarshalJSON always writes a list, never null.
func (s MotifSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]MotifLabel(s))
}
