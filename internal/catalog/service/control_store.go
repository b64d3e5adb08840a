package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

// Keys shared by every worker process through the cache.
const (
	PausedKey = "enrichment:paused"
	RateKey   = "enrichment:rate"
)

// ControlStore holds the cooperative pause flag and the last-processed
// counter. Backed by interfaces.Cache so every process sees the same values.
type ControlStore struct {
	cache   interfaces.Cache
	rateTTL time.Duration
}

// NewControlStore creates a store; the counter expires after rateTTL.
func NewControlStore(cache interfaces.Cache, rateTTL time.Duration) *ControlStore {
	return &ControlStore{cache: cache, rateTTL: rateTTL}
}

// Pause sets the flag with no expiry.
func (c *ControlStore) Pause(ctx context.Context) error {
	return c.cache.Set(ctx, PausedKey, "1", 0)
}

// Resume clears the flag.
func (c *ControlStore) Resume(ctx context.Context) error {
	return c.cache.Delete(ctx, PausedKey)
}

func (c *ControlStore) IsPaused(ctx context.Context) (bool, error) {
	v, err := c.cache.Get(ctx, PausedKey)
	if errors.Is(err, interfaces.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(val)
		return err == nil && b, nil
	default:
		return v != nil, nil
	}
}

// RecordProcessed stores the processed count of the running batch.
func (c *ControlStore) RecordProcessed(ctx context.Context, processed int) error {
	return c.cache.Set(ctx, RateKey, processed, c.rateTTL)
}

// LastProcessed returns the last recorded count, or zero once it has expired.
func (c *ControlStore) LastProcessed(ctx context.Context) (int, error) {
	v, err := c.cache.Get(ctx, RateKey)
	if errors.Is(err, interfaces.ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", RateKey, val, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid %s value of type %T", RateKey, v)
	}
}
