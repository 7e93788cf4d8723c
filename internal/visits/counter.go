package visits

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// Counter tracks how many times a user opened the dashboard.
type Counter interface {
	Incr(ctx context.Context, userID uint) (int64, error)
}

type RedisCounter struct {
	rdb *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (c *RedisCounter) Incr(ctx context.Context, userID uint) (int64, error) {
	return c.rdb.Incr(ctx, key(userID)).Result()
}

func key(userID uint) string {
	return fmt.Sprintf("visits:%d", userID)
}

type GormCounter struct {
	db *gorm.DB
}

func NewGormCounter(db *gorm.DB) *GormCounter {
	return &GormCounter{db: db}
}

func (c *GormCounter) Incr(ctx context.Context, userID uint) (int64, error) {
	var row models.VisitCounter
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"visits": gorm.Expr("visit_counters.visits + 1")}),
		}).Create(&models.VisitCounter{UserID: userID, Visits: 1}).Error; err != nil {
			return err
		}
		return tx.First(&row, "user_id = ?", userID).Error
	})
	if err != nil {
		return 0, err
	}
	return row.Visits, nil
}

// New picks Redis when a URL is configured and the store otherwise.
func New(redisURL string, db *gorm.DB) (Counter, func() error, error) {
	if redisURL == "" {
		return NewGormCounter(db), func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	return NewRedisCounter(rdb), rdb.Close, nil
}
