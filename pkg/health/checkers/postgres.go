package checkers

import (
	"context"
	"time"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// PostgresChecker pings the pool; *pgxpool.Pool satisfies pinger.
type PostgresChecker struct {
	pool pinger
}

func NewPostgresChecker(pool pinger) *PostgresChecker {
	return &PostgresChecker{pool: pool}
}

func (c *PostgresChecker) Name() string { return "postgres" }

func (c *PostgresChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.pool.Ping(ctx)
}
