package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/pkg/serrors"
)

// ErrAccessDenied gates every management-surface operation; read paths
// degrade to empty results instead.
var ErrAccessDenied = serrors.NewError("ACCESS_DENIED", "management requires an administrator leader membership")

// ScopeService derives the acting user's effective faction scope and
// privilege level. All lookups hit current membership state; nothing is
// cached across requests, so a promotion takes effect on the next call.
type ScopeService struct {
	members  member.Repository
	factions faction.Repository
}

func NewScopeService(members member.Repository, factions faction.Repository) *ScopeService {
	return &ScopeService{members: members, factions: factions}
}

// EffectiveScope resolves the faction a person's views are restricted
// to: the leader membership's faction when present, else the attendee
// membership's. The second return value is false when the person has no
// resolvable scope.
func (s *ScopeService) EffectiveScope(ctx context.Context, personID uuid.UUID) (faction.Faction, bool, error) {
	if personID == uuid.Nil {
		return faction.Faction{}, false, nil
	}

	for _, kind := range []member.Kind{member.KindLeader, member.KindAttendee} {
		m, err := s.members.GetByPerson(ctx, kind, personID)
		if errors.Is(err, member.ErrNotFound) {
			continue
		}
		if err != nil {
			return faction.Faction{}, false, err
		}
		if m.FactionID() == nil {
			continue
		}

		f, err := s.factions.GetByID(ctx, *m.FactionID())
		if errors.Is(err, faction.ErrNotFound) {
			continue
		}
		if err != nil {
			return faction.Faction{}, false, err
		}
		return f, true, nil
	}
	return faction.Faction{}, false, nil
}

// IsAdministrator is true only for leader memberships carrying the
// administrator flag.
func (s *ScopeService) IsAdministrator(ctx context.Context, personID uuid.UUID) (bool, error) {
	if personID == uuid.Nil {
		return false, nil
	}
	m, err := s.members.GetByPerson(ctx, member.KindLeader, personID)
	if errors.Is(err, member.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.IsAdmin(), nil
}

// CanManage gates faction and membership management operations.
func (s *ScopeService) CanManage(ctx context.Context, personID uuid.UUID) (bool, error) {
	return s.IsAdministrator(ctx, personID)
}
