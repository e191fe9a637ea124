package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/supp-tracker/internal/repository"
)

// MigrationResult reports a local-to-primary copy.
type MigrationResult struct {
	Migrated int    `json:"migrated"`
	Message  string `json:"message"`
}

// MigrateLocal copies every locally stored day into primary unless primary already holds data.
// A day that fails to copy is logged and skipped.
func MigrateLocal(ctx context.Context, local, primary repository.DayRepository, userID uuid.UUID, log *zap.Logger) (MigrationResult, error) {
	if local == nil {
		return MigrationResult{}, errors.New("no local store configured")
	}
	existing, err := primary.List(ctx, userID)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("read primary: %w", err)
	}
	if len(existing) > 0 {
		return MigrationResult{Message: "data already exists in primary store"}, nil
	}
	days, err := local.List(ctx, userID)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("read local: %w", err)
	}
	res := MigrationResult{}
	for _, d := range days {
		if err := primary.Put(ctx, userID, d.Date, d.Supplements); err != nil {
			log.Error("migrate day", zap.String("date", d.Date.String()), zap.Error(err))
			continue
		}
		res.Migrated++
	}
	res.Message = fmt.Sprintf("migrated %d days of data", res.Migrated)
	return res, nil
}
