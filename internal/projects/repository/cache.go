package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pmdesk/pm-backend/internal/projects/domain"
)

const (
	activeProjectsKey  = "pm:projects:active"  // JSON list of active projects with employees
	deletedProjectsKey = "pm:projects:deleted" // JSON list of soft-deleted projects
	listingVersionKey  = "pm:projects:version" // bumped on every invalidation
	defaultListingTTL  = 5 * time.Minute
)

var errStaleListing = errors.New("listing version changed")

// ListingCache keeps project listings in Redis between mutations.
//
// Writers read Version before loading a listing from Postgres and pass it to
// Set; Set is skipped when an invalidation happened in between, so a slow
// reader cannot put back a listing that predates a mutation.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a ListingCache; a non-positive ttl falls back to five minutes.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = defaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

// Get returns the cached listing. The bool is false on a cache miss.
func (c *ListingCache) Get(ctx context.Context, deleted bool) ([]domain.ProjectDetails, bool, error) {
	data, err := c.client.Get(ctx, listingKey(deleted)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get project listing: %w", err)
	}

	var items []domain.ProjectDetails
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal project listing: %w", err)
	}
	return items, true, nil
}

// Version returns the current listing version; zero before the first invalidation.
func (c *ListingCache) Version(ctx context.Context) (int64, error) {
	v, err := readVersion(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to get listing version: %w", err)
	}
	return v, nil
}

// Set stores a listing loaded at version. It is a no-op when the version has
// moved on since.
func (c *ListingCache) Set(ctx context.Context, deleted bool, items []domain.ProjectDetails, version int64) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal project listing: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleListing
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listingKey(deleted), data, c.ttl)
			return nil
		})
		return err
	}, listingVersionKey)

	switch {
	case err == nil, errors.Is(err, errStaleListing), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("failed to set project listing: %w", err)
	}
}

// Invalidate bumps the version and drops both listings.
func (c *ListingCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, listingVersionKey)
		pipe.Del(ctx, activeProjectsKey, deletedProjectsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate project listings: %w", err)
	}
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, cmd stringGetter) (int64, error) {
	v, err := cmd.Get(ctx, listingVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func listingKey(deleted bool) string {
	if deleted {
		return deletedProjectsKey
	}
	return activeProjectsKey
}
