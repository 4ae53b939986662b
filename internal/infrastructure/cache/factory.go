package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/callreview-team/call-review/internal/domain/entities"
	"github.com/callreview-team/call-review/pkg/config"
)

// Open selects a snapshot cache implementation from configuration.
//
//	CACHE_DRIVER: file|redis|memory (default file)
//	CACHE_DIR:    slot directory when driver=file
func Open(cfg *config.Config, set entities.MetricSet, logger *zap.Logger) (Store, error) {
	switch cfg.Cache.Driver {
	case "file":
		return NewFileStore(cfg.Cache.Dir, set, logger), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, set, cfg.Review.ReviewerID, logger)
	case "memory":
		return NewMemoryStore(set), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %s", cfg.Cache.Driver)
	}
}
