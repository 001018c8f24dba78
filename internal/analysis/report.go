package analysis

import (
	"cmp"
	"slices"

	"github.com/lk16/chessreview/internal/models"
)

const (
	// CommonBlunderLoss is the loss from which a move is counted as a common blunder
	CommonBlunderLoss = 150

	// TopCount limits the frequency tables of a report
	TopCount = 5

	// aggressiveThreshold is the tactical percentage above which sharp openings are suggested
	aggressiveThreshold = 20.0
)

var (
	aggressiveOpenings = []string{"King's Gambit", "Sicilian Defense"}
	solidOpenings      = []string{"Ruy Lopez", "Queen's Gambit Declined"}
)

type reportBuilder struct {
	games     int
	plies     int
	totalLoss int
	tactical  int

	// scored counts the plies whose loss is known, timedOut the ones whose search did not finish
	scored   int
	timedOut int

	blunders     map[string]int
	phaseLoss    map[models.Phase]int
	phasePlies   map[models.Phase]int
	motifs       map[models.MotifLabel]int
	qualities    map[models.Quality]int
	timeControls map[string]int
}

func newReportBuilder() *reportBuilder {
	return &reportBuilder{
		blunders:     map[string]int{},
		phaseLoss:    map[models.Phase]int{},
		phasePlies:   map[models.Phase]int{},
		motifs:       map[models.MotifLabel]int{},
		qualities:    map[models.Quality]int{},
		timeControls: map[string]int{},
	}
}

func (b *reportBuilder) add(records []models.AnalysisRecord) {
	b.games++

	for i, record := range records {
		b.plies++

		for _, motif := range record.Motifs {
			b.motifs[motif]++
		}

		// the loss of a ply without a finished search compares against the zero evaluation
		if record.EngineTimedOut {
			b.timedOut++
			continue
		}

		loss := record.CentipawnLoss

		b.scored++
		b.totalLoss += loss

		if loss >= TacticalSwing {
			b.tactical++
		}

		if loss >= CommonBlunderLoss {
			b.blunders[record.Move.SAN]++
		}

		phase := PhaseOf(i, len(records))
		b.phaseLoss[phase] += loss
		b.phasePlies[phase]++

		b.qualities[record.Quality]++
	}
}

func (b *reportBuilder) report() models.StyleReport {
	report := models.StyleReport{
		Games:          b.games,
		Plies:          b.plies,
		TimedOutPlies:  b.timedOut,
		CommonBlunders: topLabels(b.blunders, TopCount),
		TopMotifs:      b.topMotifs(),
		QualityCounts:  make([]models.LabelCount, 0, 4),
		PhaseLoss: models.PhaseLoss{
			Opening:    b.averagePhaseLoss(models.Opening),
			Middlegame: b.averagePhaseLoss(models.Middlegame),
			Endgame:    b.averagePhaseLoss(models.Endgame),
		},
	}

	if b.scored > 0 {
		report.AverageLoss = float64(b.totalLoss) / float64(b.scored)
		report.TacticalPercentage = 100 * float64(b.tactical) / float64(b.scored)
	}

	for _, quality := range []models.Quality{models.Excellent, models.Reasonable, models.Inaccuracy, models.Blunder} {
		report.QualityCounts = append(report.QualityCounts, models.LabelCount{
			Label: string(quality),
			Count: b.qualities[quality],
		})
	}

	return report
}

func (b *reportBuilder) averagePhaseLoss(phase models.Phase) float64 {
	plies := b.phasePlies[phase]
	if plies == 0 {
		return 0
	}
	return float64(b.phaseLoss[phase]) / float64(plies)
}

func (b *reportBuilder) topMotifs() []models.MotifCount {
	counts := make([]models.MotifCount, 0, len(b.motifs))
	for motif, count := range b.motifs {
		counts = append(counts, models.MotifCount{Motif: motif, Count: count})
	}

	slices.SortFunc(counts, func(x, y models.MotifCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Motif.Rank(), y.Motif.Rank())
	})

	return counts[:min(len(counts), TopCount)]
}

// topLabels returns the n most frequent labels, ties broken alphabetically.
func topLabels(counts map[string]int, n int) []models.LabelCount {
	labels := make([]models.LabelCount, 0, len(counts))
	for label, count := range counts {
		labels = append(labels, models.LabelCount{Label: label, Count: count})
	}

	slices.SortFunc(labels, func(a, b models.LabelCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})

	if n >= 0 && len(labels) > n {
		labels = labels[:n]
	}
	return labels
}

// Summarize reduces the records of a single game to a StyleReport.
// It does not call the engine or the motif detectors.
func Summarize(records []models.AnalysisRecord) models.StyleReport {
	builder := newReportBuilder()
	builder.add(records)
	return builder.report()
}

// SummarizeGames reduces several games to one StyleReport, including the distribution
// of time controls and openings that fit the playing style.
func SummarizeGames(games []models.GameRecords) models.StyleReport {
	builder := newReportBuilder()
	for _, game := range games {
		builder.add(game.Records)
		builder.timeControls[models.TimeControlCategory(game.TimeControl)]++
	}

	report := builder.report()
	report.TimeControls = topLabels(builder.timeControls, -1)
	report.Suggestions = suggestOpenings(report)

	return report
}

func suggestOpenings(report models.StyleReport) []string {
	if report.TacticalPercentage > aggressiveThreshold {
		return slices.Clone(aggressiveOpenings)
	}
	return slices.Clone(solidOpenings)
}
