package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Escandallo-api/internal/application/dto"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/cache"
)

func TestKey_IncluyeVersion(t *testing.T) {
	assert.Equal(t, "escandallo:cost:a1.7:PLATO", cache.Key("a1.7", "PLATO"))
	assert.NotEqual(t, cache.Key("a1.7", "PLATO"), cache.Key("b2.7", "PLATO"))
}

func TestRedisCostCache_ServidorCaidoDevuelveError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := cache.NewRedisCostCache(client, 0)

	_, hit, err := c.Get(context.Background(), "a1.1", "PLATO")
	require.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, c.Set(context.Background(), "a1.1", "PLATO", &dto.RecipeCostResponse{RecipeID: "PLATO"}))
}

func TestConnect_URLInvalida(t *testing.T) {
	_, err := cache.Connect(context.Background(), "http://no-es-redis")
	assert.Error(t, err)
}
