package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mandirtech/edarshan/config"
	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/mandirtech/edarshan/internal/wizard"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	templesTTL time.Duration
	draftTTL   time.Duration
}

func NewRedisCache(cfg config.RedisConfig, templesTTL, draftTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		templesTTL: templesTTL,
		draftTTL:   draftTTL,
	}
}

func (c *RedisCache) GetTemples(ctx context.Context) ([]domain.Temple, error) {
	data, err := c.client.Get(ctx, templesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var temples []domain.Temple
	if err := json.Unmarshal(data, &temples); err != nil {
		return nil, err
	}
	return temples, nil
}

func (c *RedisCache) SetTemples(ctx context.Context, temples []domain.Temple) error {
	payload, err := json.Marshal(temples)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, templesKey(), payload, c.templesTTL).Err()
}

// SaveDraft stores the wizard session under its TTL. Every save refreshes the
// TTL, so an abandoned flow disappears on its own.
func (c *RedisCache) SaveDraft(ctx context.Context, draft *wizard.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, draftKey(draft.ID), payload, c.draftTTL).Err()
}

func (c *RedisCache) GetDraft(ctx context.Context, id string) (*wizard.Draft, error) {
	data, err := c.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var draft wizard.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (c *RedisCache) DeleteDraft(ctx context.Context, id string) error {
	return c.client.Del(ctx, draftKey(id)).Err()
}

// AcquireSlotHold takes a short-lived hold on a slot while a checkout is in
// flight. Returns false if another draft already holds it.
func (c *RedisCache) AcquireSlotHold(ctx context.Context, templeID int64, visitDate, slot, draftID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, holdKey(templeID, visitDate, slot), draftID, ttl).Result()
}

func (c *RedisCache) ReleaseSlotHold(ctx context.Context, templeID int64, visitDate, slot string) error {
	return c.client.Del(ctx, holdKey(templeID, visitDate, slot)).Err()
}

func (c *RedisCache) IncrementVisits(ctx context.Context, templeID int64) (int64, error) {
	return c.client.Incr(ctx, visitsKey(templeID)).Result()
}

func templesKey() string {
	return "cache:temples"
}

func draftKey(id string) string {
	return fmt.Sprintf("draft:%s", id)
}

func holdKey(templeID int64, visitDate, slot string) string {
	return fmt.Sprintf("hold:temple:%d:%s:%s", templeID, visitDate, slot)
}

func visitsKey(templeID int64) string {
	return fmt.Sprintf("visits:temple:%d", templeID)
}
