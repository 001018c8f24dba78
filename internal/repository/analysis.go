package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/services"
	"github.com/redis/go-redis/v9"
)

const (
	analysisKeyPrefix = "analysis:"
	AnalysisTTL       = 24 * time.Hour
	qualityStatsKey   = "quality_stats"
	motifStatsKey     = "motif_stats"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisRepository stores finished game reviews and counters of analysed moves in Redis.
type AnalysisRepository struct {
	services *services.Services
}

func NewAnalysisRepository(c *fiber.Ctx) *AnalysisRepository {
	return &AnalysisRepository{
		services: c.Locals("services").(*services.Services), //nolint: errcheck
	}
}

func NewAnalysisRepositoryFromServices(services *services.Services) *AnalysisRepository {
	return &AnalysisRepository{
		services: services,
	}
}

func analysisKey(id string) string {
	return analysisKeyPrefix + id
}

// SaveAnalysis assigns an ID to the response if it has none and stores it with a TTL.
func (repo *AnalysisRepository) SaveAnalysis(ctx context.Context, response *models.AnalysisResponse) error {
	if response.ID == "" {
		response.ID = uuid.New().String()
	}

	jsonData, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("error marshaling analysis: %w", err)
	}

	err = repo.services.Redis.Set(ctx, analysisKey(response.ID), jsonData, AnalysisTTL).Err()
	if err != nil {
		return fmt.Errorf("error storing analysis: %w", err)
	}

	return nil
}

// GetAnalysis loads a stored analysis.
func (repo *AnalysisRepository) GetAnalysis(ctx context.Context, id string) (models.AnalysisResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.AnalysisResponse{}, ErrAnalysisNotFound
	}

	jsonData, err := repo.services.Redis.Get(ctx, analysisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.AnalysisResponse{}, ErrAnalysisNotFound
		}
		return models.AnalysisResponse{}, fmt.Errorf("error getting analysis: %w", err)
	}

	var response models.AnalysisResponse
	if err = json.Unmarshal(jsonData, &response); err != nil {
		return models.AnalysisResponse{}, fmt.Errorf("error unmarshaling analysis: %w", err)
	}

	return response, nil
}

// countRecords tallies qualities and motifs of records.
func countRecords(records []models.AnalysisRecord) (map[string]int, map[string]int) {
	qualities := make(map[string]int)
	motifs := make(map[string]int)

	for _, record := range records {
		qualities[string(record.Quality)]++
		for _, motif := range record.Motifs {
			motifs[string(motif)]++
		}
	}

	return qualities, motifs
}

// RecordStats adds the qualities and motifs of records to the global counters.
func (repo *AnalysisRepository) RecordStats(ctx context.Context, records []models.AnalysisRecord) error {
	qualities, motifs := countRecords(records)

	pipe := repo.services.Redis.Pipeline()
	for quality, count := range qualities {
		pipe.HIncrBy(ctx, qualityStatsKey, quality, int64(count))
	}
	for motif, count := range motifs {
		pipe.HIncrBy(ctx, motifStatsKey, motif, int64(count))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error updating move stats: %w", err)
	}

	return nil
}

// GetMoveStats returns the global quality and motif counters.
func (repo *AnalysisRepository) GetMoveStats(ctx context.Context) (map[string]int, map[string]int, error) {
	redisConn := repo.services.Redis

	qualities, err := redisConn.HGetAll(ctx, qualityStatsKey).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("error getting quality stats: %w", err)
	}

	motifs, err := redisConn.HGetAll(ctx, motifStatsKey).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("error getting motif stats: %w", err)
	}

	qualityCounts, err := parseCounters(qualities)
	if err != nil {
		return nil, nil, err
	}

	motifCounts, err := parseCounters(motifs)
	if err != nil {
		return nil, nil, err
	}

	return qualityCounts, motifCounts, nil
}

func parseCounters(hash map[string]string) (map[string]int, error) {
	counters := make(map[string]int, len(hash))
	for key, value := range hash {
		count, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("error parsing counter %q: %w", key, err)
		}
		counters[key] = count
	}
	return counters, nil
}
