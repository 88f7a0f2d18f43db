package product

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedRepository is a read-through Redis cache over another Repository.
// Entries live for a short TTL, so listings may briefly lag behind stock
// reservations; every operation that checks stock reads the database rows
// directly under lock, so correctness never depends on the cache.
type CachedRepository struct {
	repo   Repository
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedRepository(repo Repository, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedRepository {
	return &CachedRepository{repo: repo, client: client, ttl: ttl, log: log}
}

func productKey(id int) string { return fmt.Sprintf("product:%d", id) }

const allProductsKey = "products:all"

func (r *CachedRepository) List() ([]Product, error) {
	ctx := context.Background()

	var products []Product
	if err := r.cacheGet(ctx, allProductsKey, &products); err == nil {
		return products, nil
	}

	products, err := r.repo.List()
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, allProductsKey, products)
	return products, nil
}

func (r *CachedRepository) GetByID(id int) (Product, error) {
	ctx := context.Background()

	var p Product
	if err := r.cacheGet(ctx, productKey(id), &p); err == nil {
		return p, nil
	}

	p, err := r.repo.GetByID(id)
	if err != nil {
		return Product{}, err
	}

	r.cacheSet(ctx, productKey(id), p)
	return p, nil
}

func (r *CachedRepository) Create(p Product) (Product, error) {
	created, err := r.repo.Create(p)
	if err != nil {
		return Product{}, err
	}
	r.invalidate(context.Background(), allProductsKey)
	return created, nil
}

func (r *CachedRepository) Update(id int, p Product) (Product, error) {
	updated, err := r.repo.Update(id, p)
	if err != nil {
		return Product{}, err
	}
	r.invalidate(context.Background(), productKey(id), allProductsKey)
	return updated, nil
}

func (r *CachedRepository) Delete(id int) error {
	if err := r.repo.Delete(id); err != nil {
		return err
	}
	r.invalidate(context.Background(), productKey(id), allProductsKey)
	return nil
}

func (r *CachedRepository) cacheGet(ctx context.Context, key string, dest any) error {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (r *CachedRepository) cacheSet(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("cache invalidation failed", zap.Error(err))
	}
}
