package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"stocktake/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema applies the embedded schema. All statements are
// idempotent, so running at every startup is safe.
func EnsureSchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Debug(ctx, "database schema ensured")
	return nil
}
