package analysis

import "github.com/lk16/chessreview/internal/models"

// DefaultBlunderCardLoss is the loss from which a ply is turned into a BlunderCard.
const DefaultBlunderCardLoss = InaccuracyLoss

// BlunderCards picks the plies that lost at least minLoss centipawns, in ply order.
// A minLoss of zero or less uses DefaultBlunderCardLoss. Plies without a finished search are skipped.
func BlunderCards(records []models.AnalysisRecord, minLoss int) []models.BlunderCard {
	if minLoss <= 0 {
		minLoss = DefaultBlunderCardLoss
	}

	cards := []models.BlunderCard{}
	for _, record := range records {
		if record.EngineTimedOut || record.CentipawnLoss < minLoss {
			continue
		}

		cards = append(cards, models.BlunderCard{
			Ply:      record.Ply,
			Position: record.Before,
			Played:   record.Move.SAN,
			BestMove: record.BestMove,
			Loss:     record.CentipawnLoss,
			Quality:  record.Quality,
			Motifs:   record.Motifs,
		})
	}

	return cards
}
