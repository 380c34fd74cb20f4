package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/basit/fileshare-catalog/common"
)

type contextKey string

const snapshotKey contextKey = "session"

// WithSnapshot returns a copy of ctx carrying s.
func WithSnapshot(ctx context.Context, s Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey, s)
}

// SnapshotFromContext returns the snapshot stored in ctx, or the signed-out
// snapshot.
func SnapshotFromContext(ctx context.Context) Snapshot {
	s, _ := ctx.Value(snapshotKey).(Snapshot)
	return s
}

// UserIDFromContext returns the signed-in user's id.
func UserIDFromContext(ctx context.Context) (*uuid.UUID, error) {
	s := SnapshotFromContext(ctx)
	if !s.SignedIn() {
		return nil, common.ErrUnauthorized
	}
	id := s.UserID
	return &id, nil
}
