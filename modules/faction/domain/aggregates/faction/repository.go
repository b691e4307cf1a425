package faction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Edge is one parent pointer in the live (non-soft-deleted) forest of
// an organization. The hierarchy resolver builds its adjacency snapshot
// from these.
type Edge struct {
	ID       uuid.UUID
	ParentID *uuid.UUID
}

type FindParams struct {
	OrganizationID uuid.UUID
	ParentID       *uuid.UUID
	Search         string
	Limit          int
	Offset         int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Faction, error)
	GetBySlug(ctx context.Context, slug string) (Faction, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Faction, error)
	Count(ctx context.Context, params *FindParams) (int64, error)

	// Adjacency returns the live parent edges of one organization in a
	// single query; every traversal starts from a fresh snapshot.
	Adjacency(ctx context.Context, organizationID uuid.UUID) ([]Edge, error)

	// GetForUpdate locks the row for the rest of the transaction so a
	// depth check and the dependent insert observe the same parent.
	GetForUpdate(ctx context.Context, id uuid.UUID) (Faction, error)

	SubFactionCount(ctx context.Context, id uuid.UUID) (int64, error)

	Create(ctx context.Context, f Faction) (Faction, error)
	Update(ctx context.Context, f Faction) (Faction, error)
	SoftDeleteMany(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
