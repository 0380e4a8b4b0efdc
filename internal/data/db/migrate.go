package db

import (
	"context"
	"fmt"
)

// AutoMigrate creates or alters the tables behind models. Production
// deployments own the schema; this is for local databases and tests.
func (l *Lazy) AutoMigrate(ctx context.Context, models ...any) error {
	db, err := l.Get(ctx)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
