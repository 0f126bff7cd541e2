// ABOUTME: Data migration between lifeos databases.
// ABOUTME: Copies samples and habits from a source repository to a destination.

package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Samples int
	Habits  int
}

// MigrateData copies all data from src to dst. Samples are upserted so the
// migration can be re-run; habits already present in dst are skipped.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	data, err := src.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	if err := dst.ImportData(ctx, data); err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}

	return &MigrateSummary{
		Samples: len(data.Samples),
		Habits:  len(data.Habits),
	}, nil
}
