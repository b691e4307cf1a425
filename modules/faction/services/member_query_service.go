package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
)

// MemberQueryService answers every membership listing and aggregate
// scoped to a faction subtree. Recursive forms expand the scope into a
// concrete id set via the hierarchy resolver and then run a single
// query against it; nothing recurses per node.
type MemberQueryService struct {
	members  member.Repository
	factions faction.Repository
}

func NewMemberQueryService(members member.Repository, factions faction.Repository) *MemberQueryService {
	return &MemberQueryService{members: members, factions: factions}
}

// expandScope resolves the faction into the id set its queries run
// against. An unknown faction id expands to the empty set: list pages
// render empty rather than failing.
func (s *MemberQueryService) expandScope(ctx context.Context, factionID uuid.UUID, recursive bool) ([]uuid.UUID, error) {
	f, err := s.factions.GetByID(ctx, factionID)
	if errors.Is(err, faction.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !recursive {
		return []uuid.UUID{f.ID()}, nil
	}

	edges, err := s.factions.Adjacency(ctx, f.OrganizationID())
	if err != nil {
		return nil, err
	}
	ids, err := NewTree(edges).DescendantIDs(f.ID(), true)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		ids = []uuid.UUID{f.ID()}
	}
	return ids, nil
}

// MembersOf lists live memberships of the given kind inside the
// faction's scope, optionally including every descendant faction.
func (s *MemberQueryService) MembersOf(ctx context.Context, factionID uuid.UUID, kind member.Kind, recursive bool) ([]member.Membership, error) {
	ids, err := s.expandScope(ctx, factionID, recursive)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []member.Membership{}, nil
	}
	return s.members.ListByFactionIDs(ctx, kind, ids)
}

// MemberCount counts live memberships of the given kind inside the
// scope as one aggregate query over the expanded id set.
func (s *MemberQueryService) MemberCount(ctx context.Context, factionID uuid.UUID, kind member.Kind, recursive bool) (int64, error) {
	ids, err := s.expandScope(ctx, factionID, recursive)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.members.CountByFactionIDs(ctx, kind, ids)
}

// SubFactionCount counts live direct children only.
func (s *MemberQueryService) SubFactionCount(ctx context.Context, factionID uuid.UUID) (int64, error) {
	_, err := s.factions.GetByID(ctx, factionID)
	if errors.Is(err, faction.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.factions.SubFactionCount(ctx, factionID)
}

// Distribution aggregates live membership counts per faction across
// the subtree, shaped for the enrollment chart.
func (s *MemberQueryService) Distribution(ctx context.Context, factionID uuid.UUID, kind member.Kind) ([]member.FactionCount, error) {
	ids, err := s.expandScope(ctx, factionID, true)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []member.FactionCount{}, nil
	}
	return s.members.CountGroupedByFaction(ctx, kind, ids)
}

// Roster lists leaders and attendees across the subtree in one pass.
func (s *MemberQueryService) Roster(ctx context.Context, factionID uuid.UUID) ([]member.Membership, error) {
	ids, err := s.expandScope(ctx, factionID, true)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []member.Membership{}, nil
	}
	return s.members.Roster(ctx, ids)
}
