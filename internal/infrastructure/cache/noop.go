package cache

import (
	"context"
	"time"

	"almacen/internal/domain/reports"
)

// Noop is a cache that never hits. Used when Redis is not configured.
type Noop struct{}

var _ reports.Cache = Noop{}

func (Noop) Get(ctx context.Context, key string, dest any) (bool, error) { return false, nil }

func (Noop) Set(ctx context.Context, key string, value any, ttl time.Duration) error { return nil }
