package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/mdindex/index"
)

// runPeriodicSync rebuilds the index at the given interval until ctx is done.
// The watcher keeps the index current on its own; this catches events the OS dropped.
func runPeriodicSync(ctx context.Context, interval time.Duration, fileIndex *index.FileIndex, source index.Source, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			performSyncVerification(ctx, fileIndex, source, logger)
		}
	}
}

// performSyncVerification rebuilds from a fresh scan and reports what the watcher missed.
func performSyncVerification(ctx context.Context, fileIndex *index.FileIndex, source index.Source, logger *slog.Logger) (index.RebuildStats, error) {
	stats, err := fileIndex.Rebuild(ctx, source)
	if err != nil {
		logger.Warn("sync verification failed", "error", err)
		return index.RebuildStats{}, err
	}

	if discrepancies := stats.Added + stats.Removed + stats.Changed; discrepancies > 0 {
		logger.Info("sync verification complete",
			"missing", stats.Added,
			"stale", stats.Removed,
			"modified", stats.Changed,
			"duration", stats.Duration,
		)
	} else {
		logger.Debug("sync verification complete, index is in sync", "duration", stats.Duration)
	}
	return stats, nil
}
