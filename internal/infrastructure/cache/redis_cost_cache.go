package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/application/usecase"
)

const keyPrefix = "escandallo:cost"

var _ usecase.CostCache = (*RedisCostCache)(nil)

// RedisCostCache costes resueltos en Redis, indexados por versión de snapshot.
// Las claves de versiones anteriores no se borran: caducan por TTL.
type RedisCostCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect abre el cliente a partir de una URL redis:// y comprueba la conexión.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opt.MaxRetries = 3
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisCostCache construye la caché. ttl <= 0 usa 10 minutos.
func NewRedisCostCache(client *redis.Client, ttl time.Duration) *RedisCostCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCostCache{client: client, ttl: ttl}
}

// Key clave de un coste: escandallo:cost:<versión>:<receta>.
func Key(version, recipeID string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, version, recipeID)
}

func (c *RedisCostCache) Get(ctx context.Context, version, recipeID string) (*dto.RecipeCostResponse, bool, error) {
	data, err := c.client.Get(ctx, Key(version, recipeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var out dto.RecipeCostResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false, fmt.Errorf("decodificar coste cacheado: %w", err)
	}
	return &out, true, nil
}

func (c *RedisCostCache) Set(ctx context.Context, version, recipeID string, cost *dto.RecipeCostResponse) error {
	data, err := json.Marshal(cost)
	if err != nil {
		return fmt.Errorf("codificar coste: %w", err)
	}
	if err := c.client.Set(ctx, Key(version, recipeID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
