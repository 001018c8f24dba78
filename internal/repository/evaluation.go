package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/services"
)

const (
	bookStatsKey = "book_stats"

	// columnsPerEntry is the number of query parameters of one inserted row
	columnsPerEntry = 5
)

// EvaluationRepository handles database operations for the evaluation book.
type EvaluationRepository struct {
	services *services.Services
}

// NewEvaluationRepository creates a new EvaluationRepository.
func NewEvaluationRepository(c *fiber.Ctx) *EvaluationRepository {
	services := c.Locals("services").(*services.Services) //nolint: errcheck

	return &EvaluationRepository{
		services: services,
	}
}

func NewEvaluationRepositoryFromServices(services *services.Services) *EvaluationRepository {
	return &EvaluationRepository{
		services: services,
	}
}

// bookRow is a row of the evaluations table.
type bookRow struct {
	Position models.Position `db:"position"`
	models.Evaluation
}

// dedupeEntries normalizes positions and keeps the deepest entry per position,
// since a single upsert statement cannot touch the same row twice.
func dedupeEntries(entries []models.BookEntry) []models.BookEntry {
	deepest := make(map[models.Position]models.BookEntry, len(entries))
	for _, entry := range entries {
		if !entry.Evaluation.HasResult() {
			continue
		}

		entry.Position = entry.Position.Normalized()
		if found, ok := deepest[entry.Position]; !ok || entry.Evaluation.Depth > found.Evaluation.Depth {
			deepest[entry.Position] = entry
		}
	}

	deduped := make([]models.BookEntry, 0, len(deepest))
	for _, entry := range deepest {
		deduped = append(deduped, entry)
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].Position < deduped[j].Position
	})

	return deduped
}

// buildValuesClause returns the VALUES clause and its parameters for entries.
// Parameter $1 is reserved for the array of all positions.
func buildValuesClause(entries []models.BookEntry) (string, []interface{}) {
	valuesClause := ""
	params := make([]interface{}, 0, len(entries)*columnsPerEntry)

	for i, entry := range entries {
		if i > 0 {
			valuesClause += ", "
		}

		offset := i*columnsPerEntry + 2 //nolint:mnd
		valuesClause += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			offset, offset+1, offset+2, offset+3, offset+4) //nolint:mnd

		params = append(params,
			string(entry.Position),
			entry.Evaluation.Depth,
			entry.Evaluation.Score,
			entry.Evaluation.Mate,
			pq.Array([]string(entry.Evaluation.Variation)),
		)
	}

	return valuesClause, params
}

// SubmitEvaluations stores evaluations, replacing stored ones only with deeper searches.
func (repo *EvaluationRepository) SubmitEvaluations(ctx context.Context, entries []models.BookEntry) error {
	pgConn := repo.services.Postgres

	entries = dedupeEntries(entries)
	if len(entries) == 0 {
		return nil
	}

	positions := make([]string, len(entries))
	for i, entry := range entries {
		positions[i] = string(entry.Position)
	}

	valuesClause, params := buildValuesClause(entries)

	// Add positions array as first parameter
	params = append([]interface{}{pq.Array(positions)}, params...)

	query := fmt.Sprintf(`
		WITH current_depths AS (
			SELECT position, depth
			FROM evaluations
			WHERE position = ANY($1)
		)
		INSERT INTO evaluations (position, depth, score, mate, pv)
		VALUES %s
		ON CONFLICT (position)
		DO UPDATE SET
			depth = EXCLUDED.depth,
			score = EXCLUDED.score,
			mate = EXCLUDED.mate,
			pv = EXCLUDED.pv
		WHERE EXCLUDED.depth > evaluations.depth
		RETURNING
			(SELECT depth FROM current_depths WHERE position = evaluations.position) as old_depth,
			depth as new_depth;
	`, valuesClause)

	rows, err := pgConn.QueryxContext(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("error submitting evaluations: %w", err)
	}
	defer rows.Close()

	redisChanges := make(map[string]int)

	for rows.Next() {
		var oldDepth sql.NullInt64
		var newDepth int
		if err = rows.Scan(&oldDepth, &newDepth); err != nil {
			return fmt.Errorf("error scanning evaluation: %w", err)
		}

		if oldDepth.Valid {
			redisChanges[strconv.FormatInt(oldDepth.Int64, 10)]--
		}
		redisChanges[strconv.Itoa(newDepth)]++
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error reading submitted evaluations: %w", err)
	}

	redisConn := repo.services.Redis
	if redisConn == nil {
		return nil
	}

	// Update Redis in a single pipeline
	pipe := redisConn.Pipeline()
	for key, count := range redisChanges {
		pipe.HIncrBy(ctx, bookStatsKey, key, int64(count))
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("error updating Redis stats: %w", err)
	}

	return nil
}

// LookupPositions looks up evaluations for given positions.
func (repo *EvaluationRepository) LookupPositions(
	ctx context.Context,
	positions []models.Position,
) ([]models.BookEntry, error) {
	pgConn := repo.services.Postgres

	normalized := make([]string, len(positions))
	for i, position := range positions {
		normalized[i] = string(position.Normalized())
	}

	query := `
		SELECT position, depth, score, mate, pv
		FROM evaluations
		WHERE position = ANY($1)
	`

	rows, err := pgConn.QueryxContext(ctx, query, pq.Array(normalized))
	if err != nil {
		return nil, fmt.Errorf("error looking up positions: %w", err)
	}
	defer rows.Close()

	entries := make([]models.BookEntry, 0)

	for rows.Next() {
		var row bookRow
		err = rows.StructScan(&row)
		if err != nil {
			return nil, fmt.Errorf("error scanning evaluations: %w", err)
		}
		entries = append(entries, models.BookEntry{Position: row.Position, Evaluation: row.Evaluation})
	}

	return entries, nil
}

func (repo *EvaluationRepository) buildInitialBookStats(ctx context.Context) error {
	pgConn := repo.services.Postgres
	redisConn := repo.services.Redis

	query := `
		SELECT depth, count(*)
		FROM evaluations
		GROUP BY depth
	`

	var stats []models.BookStats
	err := pgConn.SelectContext(ctx, &stats, query)
	if err != nil {
		return fmt.Errorf("error loading book stats: %w", err)
	}

	if len(stats) == 0 {
		return nil
	}

	statsMap := make(map[string]interface{})
	for _, stat := range stats {
		statsMap[strconv.Itoa(stat.Depth)] = stat.Count
	}

	err = redisConn.HSet(ctx, bookStatsKey, statsMap).Err()
	if err != nil {
		return fmt.Errorf("error storing book stats in Redis: %w", err)
	}

	return nil
}

// GetBookStats returns the number of stored positions per search depth.
func (repo *EvaluationRepository) GetBookStats(ctx context.Context) ([]models.BookStats, error) {
	redisConn := repo.services.Redis

	stats, err := redisConn.HGetAll(ctx, bookStatsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting book stats from Redis: %w", err)
	}

	if len(stats) == 0 {
		err = repo.buildInitialBookStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("error building initial book stats: %w", err)
		}

		// Try reading from Redis again after building stats
		stats, err = redisConn.HGetAll(ctx, bookStatsKey).Result()
		if err != nil {
			return nil, fmt.Errorf("error getting book stats from Redis after build: %w", err)
		}
	}

	return parseBookStats(stats)
}

// parseBookStats converts the Redis hash to a list sorted by depth. Empty buckets are left out.
func parseBookStats(stats map[string]string) ([]models.BookStats, error) {
	bookStats := make([]models.BookStats, 0, len(stats))

	for key, value := range stats {
		depth, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("error parsing book stats key: %w", err)
		}

		count, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("error parsing book stats value: %w", err)
		}

		if count == 0 {
			continue
		}

		bookStats = append(bookStats, models.BookStats{Depth: depth, Count: count})
	}

	sort.Slice(bookStats, func(i, j int) bool {
		return bookStats[i].Depth < bookStats[j].Depth
	})

	return bookStats, nil
}
