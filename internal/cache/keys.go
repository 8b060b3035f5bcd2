package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%s"
	PostsListPrefix   = "posts:q=%s:page=%d:size=%d"
	CategoriesListKey = "categories"
)

const (
	UserTTL       = 5 * time.Minute
	PostTTL       = 30 * time.Minute
	ListTTL       = 1 * time.Minute
	CategoriesTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

// PostsListKey identifies one cached listing page. The page size is part of
// the key: the whole page payload is cached, so pages of different sizes must
// never share an entry.
func PostsListKey(query string, page, size int) string {
	return fmt.Sprintf(PostsListPrefix, query, page, size)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
	InvalidatePostLists(ctx)
}

// InvalidatePostLists drops every cached list page. List keys vary by query
// and page, so a SCAN is required.
func InvalidatePostLists(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "posts:*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesListKey)
}

// Aside implements the cache-aside pattern: unmarshal the cached JSON value
// for key into dest if present, otherwise call load to populate dest and
// store the result with the given TTL. Cache misses and Redis failures both
// fall through to load.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Result()
		if err == nil {
			if jsonErr := json.Unmarshal([]byte(raw), dest); jsonErr == nil {
				return nil
			}
			// Corrupt entry; drop it and reload.
			client.Del(ctx, key)
		} else if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "cache read failed, falling back to source",
				"key", key, "error", err.Error())
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if raw, jsonErr := json.Marshal(dest); jsonErr == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}
