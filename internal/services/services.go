package services

import (
	"github.com/jmoiron/sqlx"
	"github.com/lk16/chessreview/internal/config"
	"github.com/lk16/chessreview/internal/models"
	"github.com/redis/go-redis/v9"
)

// Services contains the connections to the external services.
// Postgres and Redis may be nil, in which case nothing is persisted.
type Services struct {
	Postgres *sqlx.DB
	Redis    *redis.Client
	Engines  *EnginePool

	// Cache is shared by all engine sessions of the pool
	Cache *models.Cache
}

func InitServices(cfg *config.ServerConfig, engineCfg *config.EngineConfig) (*Services, error) {
	// Initialize database
	postgres, err := InitPostgres(cfg.PostgresURL)
	if err != nil {
		return nil, err
	}

	// Initialize Redis
	redis, err := InitRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	cache := models.NewCache()

	return &Services{
		Postgres: postgres,
		Redis:    redis,
		Engines:  NewEnginePool(UCIEngineFactory(engineCfg, cache), cfg.EngineSessions),
		Cache:    cache,
	}, nil
}

// Shutdown stops all idle engines and closes the connections.
// Services must not implement io.Closer: fasthttp closes such values stored in Locals after every request.
func (s *Services) Shutdown() error {
	if s.Engines != nil {
		s.Engines.Close()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return err
		}
	}

	if s.Postgres != nil {
		return s.Postgres.Close()
	}

	return nil
}
