// Package jobs holds background maintenance tasks.
package jobs

import (
	"context"
	"time"

	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/repositories"
	"github.com/basit/fileshare-catalog/storage"
	"github.com/basit/fileshare-catalog/uploads"
)

// S3 DeleteObjects accepts at most 1000 keys per request.
const batchSize = 1000

// OrphanSweeper removes stored objects whose catalog row is gone, e.g.
// after a delete whose storage removal failed or an upload whose insert
// failed.
type OrphanSweeper struct {
	files    repositories.FileRepository
	storage  storage.ObjectStorage
	interval time.Duration
	grace    time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewOrphanSweeper(files repositories.FileRepository, store storage.ObjectStorage,
	interval, grace time.Duration, logger logging.Logger) *OrphanSweeper {
	return &OrphanSweeper{
		files:    files,
		storage:  store,
		interval: interval,
		grace:    grace,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is done.
func (s *OrphanSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error(ctx, "orphan sweep failed", "error", err)
			}
		}
	}
}

// Sweep deletes objects under the uploads prefix that are older than the
// grace period and have no catalog row. Objects younger than the grace
// period may belong to an upload still being recorded.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	objects, err := s.storage.List(ctx, uploads.Prefix)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.grace)
	var candidates []string
	for _, o := range objects {
		if o.LastModified.Before(cutoff) {
			candidates = append(candidates, o.Path)
		}
	}

	removed := 0
	for start := 0; start < len(candidates); start += batchSize {
		end := min(start+batchSize, len(candidates))
		chunk := candidates[start:end]

		existing, err := s.files.ExistingStoragePaths(ctx, chunk)
		if err != nil {
			return removed, err
		}

		var orphans []string
		for _, p := range chunk {
			if _, ok := existing[p]; !ok {
				orphans = append(orphans, p)
			}
		}
		if len(orphans) == 0 {
			continue
		}

		if err := s.storage.Remove(ctx, orphans); err != nil {
			s.logger.Warn(ctx, "error deleting orphaned objects", "count", len(orphans), "error", err)
			continue
		}
		removed += len(orphans)
	}

	if removed > 0 {
		s.logger.Info(ctx, "deleted orphaned objects", "count", removed)
	}
	return removed, nil
}
