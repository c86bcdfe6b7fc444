package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Listing caching
	GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	SetListing(ctx context.Context, listing *models.Listing, ttl time.Duration) error
	DeleteListing(ctx context.Context, listingID uuid.UUID) error

	// Category tree snapshot caching
	GetCategoryTree(ctx context.Context) (*models.CategoryTree, error)
	SetCategoryTree(ctx context.Context, tree *models.CategoryTree, ttl time.Duration) error
	DeleteCategoryTree(ctx context.Context) error

	// Profile-notice postponement: stores the login count the user postponed
	// under, so the postpone expires with the login session it was issued in.
	SetPostponedLoginCount(ctx context.Context, userID uuid.UUID, loginCount int, ttl time.Duration) error
	GetPostponedLoginCount(ctx context.Context, userID uuid.UUID) (int, bool, error)
	ClearPostponedLoginCount(ctx context.Context, userID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port and rediss://host:port forms as well.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	key := fmt.Sprintf("mazadly:listing:%s", listingID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var listing models.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *redisCacheService) SetListing(ctx context.Context, listing *models.Listing, ttl time.Duration) error {
	key := fmt.Sprintf("mazadly:listing:%s", listing.ID.String())
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteListing(ctx context.Context, listingID uuid.UUID) error {
	key := fmt.Sprintf("mazadly:listing:%s", listingID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetCategoryTree(ctx context.Context) (*models.CategoryTree, error) {
	data, err := r.client.Get(ctx, "mazadly:category-tree").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var tree models.CategoryTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

func (r *redisCacheService) SetCategoryTree(ctx context.Context, tree *models.CategoryTree, ttl time.Duration) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "mazadly:category-tree", data, ttl).Err()
}

func (r *redisCacheService) DeleteCategoryTree(ctx context.Context) error {
	return r.client.Del(ctx, "mazadly:category-tree").Err()
}

func (r *redisCacheService) SetPostponedLoginCount(ctx context.Context, userID uuid.UUID, loginCount int, ttl time.Duration) error {
	key := fmt.Sprintf("mazadly:notice-postponed:%s", userID.String())
	return r.client.Set(ctx, key, strconv.Itoa(loginCount), ttl).Err()
}

func (r *redisCacheService) GetPostponedLoginCount(ctx context.Context, userID uuid.UUID) (int, bool, error) {
	key := fmt.Sprintf("mazadly:notice-postponed:%s", userID.String())
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *redisCacheService) ClearPostponedLoginCount(ctx context.Context, userID uuid.UUID) error {
	key := fmt.Sprintf("mazadly:notice-postponed:%s", userID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("mazadly:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
