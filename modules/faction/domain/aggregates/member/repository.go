package member

import (
	"context"

	"github.com/google/uuid"
)

// FactionCount is one row of a per-faction aggregate, shaped for chart
// consumption.
type FactionCount struct {
	FactionID   uuid.UUID
	FactionName string
	Count       int64
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Membership, error)

	// GetByPerson returns the live membership of the given kind for a
	// person. Scope resolution depends on this being read fresh.
	GetByPerson(ctx context.Context, kind Kind, personID uuid.UUID) (Membership, error)

	// ListByFactionIDs returns live memberships of the given kind whose
	// faction is in the set, hydrated with their person snapshot.
	ListByFactionIDs(ctx context.Context, kind Kind, factionIDs []uuid.UUID) ([]Membership, error)

	// CountByFactionIDs is the single-aggregate form of the recursive
	// member count.
	CountByFactionIDs(ctx context.Context, kind Kind, factionIDs []uuid.UUID) (int64, error)

	// CountGroupedByFaction aggregates live memberships per faction
	// name over the given set.
	CountGroupedByFaction(ctx context.Context, kind Kind, factionIDs []uuid.UUID) ([]FactionCount, error)

	// Roster returns leaders and attendees across the set in one pass,
	// leaders first.
	Roster(ctx context.Context, factionIDs []uuid.UUID) ([]Membership, error)

	ExistsLive(ctx context.Context, kind Kind, factionID, personID uuid.UUID) (bool, error)

	Create(ctx context.Context, m Membership) (Membership, error)
	Update(ctx context.Context, m Membership) (Membership, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
