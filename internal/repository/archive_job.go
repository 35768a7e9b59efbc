package repository

import (
	"context"
	"fmt"

	"MarketBoard/internal/domain/models"
	drepo "MarketBoard/internal/domain/repository"
	"MarketBoard/pkg/queue"
)

// SnapshotFetchedType is the queue message type for freshly fetched snapshots.
const SnapshotFetchedType = "snapshot.fetched"

// ArchiveJob consumes queued snapshots and writes them to the archive.
// Queueing decouples the refresh loop from ClickHouse insert latency.
type ArchiveJob struct {
	archive drepo.Archive
}

func NewArchiveJob(archive drepo.Archive) *ArchiveJob {
	return &ArchiveJob{archive: archive}
}

func (j *ArchiveJob) Name() string { return "archive_snapshot" }

func (j *ArchiveJob) Type() string { return SnapshotFetchedType }

func (j *ArchiveJob) Handle(ctx context.Context, payload interface{}) error {
	snap, err := queue.ParsePayload[models.Snapshot](payload)
	if err != nil {
		return fmt.Errorf("parse snapshot payload: %w", err)
	}
	if err := j.archive.StoreSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

var _ queue.Job = (*ArchiveJob)(nil)
