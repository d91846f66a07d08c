package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"github.com/redis/go-redis/v9"
)

const productKeyPrefix = "product:"

// 商品詳細のcache-aside。TTL切れか明示Deleteで消える。
type ProductRedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// DI
func NewProductRedisCache(client *redis.Client, ttl time.Duration) repo.ProductCache {
	return &ProductRedisCache{client: client, ttl: ttl}
}

func productKey(id int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, id)
}

func (c *ProductRedisCache) Get(ctx context.Context, id int64) (model.Product, bool, error) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Product{}, false, nil
	}
	if err != nil {
		return model.Product{}, false, err
	}

	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		//壊れたエントリは捨てる
		_ = c.client.Del(ctx, productKey(id)).Err()
		return model.Product{}, false, nil
	}
	return p, true, nil
}

func (c *ProductRedisCache) Set(ctx context.Context, p model.Product) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKey(p.ID), raw, c.ttl).Err()
}

func (c *ProductRedisCache) Delete(ctx context.Context, id int64) error {
	return c.client.Del(ctx, productKey(id)).Err()
}
