package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/modules/faction/domain/entities/organization"
	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/eventbus"
)

// MemberService owns membership lifecycle: provisioning people into
// factions, promotion, reassignment and removal. All operations are
// management-gated.
type MemberService struct {
	repo      member.Repository
	factions  faction.Repository
	orgs      organization.Repository
	scope     *ScopeService
	publisher eventbus.EventBus
}

func NewMemberService(
	repo member.Repository,
	factions faction.Repository,
	orgs organization.Repository,
	scope *ScopeService,
	publisher eventbus.EventBus,
) *MemberService {
	return &MemberService{repo: repo, factions: factions, orgs: orgs, scope: scope, publisher: publisher}
}

func (s *MemberService) authorizeManage(ctx context.Context) error {
	actorID, ok := composables.UseActorID(ctx)
	if !ok {
		return ErrAccessDenied
	}
	canManage, err := s.scope.CanManage(ctx, actorID)
	if err != nil {
		return err
	}
	if !canManage {
		return ErrAccessDenied
	}
	return nil
}

func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (member.Membership, error) {
	return s.repo.GetByID(ctx, id)
}

// Provision attaches a person to a faction. Attendee provisioning
// checks the faction's direct attendee count against the
// organization's cap inside the same transaction as the insert.
func (s *MemberService) Provision(ctx context.Context, dto *member.CreateDTO) (member.Membership, error) {
	if err := s.authorizeManage(ctx); err != nil {
		return member.Membership{}, err
	}

	var created member.Membership
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if dto.FactionID != nil {
			f, err := s.factions.GetForUpdate(txCtx, *dto.FactionID)
			if err != nil {
				return err
			}
			if f.OrganizationID() != dto.OrganizationID {
				return member.ErrOrganizationMismatch
			}

			exists, err := s.repo.ExistsLive(txCtx, dto.Kind, f.ID(), dto.PersonID)
			if err != nil {
				return err
			}
			if exists {
				return member.ErrAlreadyMember
			}

			if dto.Kind == member.KindAttendee {
				if err := s.validateCapacity(txCtx, f); err != nil {
					return err
				}
			}
		}

		var err error
		created, err = s.repo.Create(txCtx, dto.ToEntity())
		return err
	})
	if err != nil {
		return member.Membership{}, err
	}

	s.publisher.Publish(&member.ProvisionedEvent{Result: created})
	return created, nil
}

// Promote flips the administrator flag on a leader membership. The
// change is visible to the very next scope resolution.
func (s *MemberService) Promote(ctx context.Context, id uuid.UUID, isAdmin bool) (member.Membership, error) {
	if err := s.authorizeManage(ctx); err != nil {
		return member.Membership{}, err
	}

	var updated member.Membership
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, existing.Promoted(isAdmin))
		return err
	})
	if err != nil {
		return member.Membership{}, err
	}

	s.publisher.Publish(&member.PromotedEvent{Result: updated})
	return updated, nil
}

// Reassign moves a membership to another faction (or detaches it when
// newFactionID is nil), re-running uniqueness and capacity checks at
// the destination.
func (s *MemberService) Reassign(ctx context.Context, id uuid.UUID, newFactionID *uuid.UUID) (member.Membership, error) {
	if err := s.authorizeManage(ctx); err != nil {
		return member.Membership{}, err
	}

	var updated member.Membership
	var oldFactionID *uuid.UUID
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		oldFactionID = existing.FactionID()

		if newFactionID != nil {
			f, err := s.factions.GetForUpdate(txCtx, *newFactionID)
			if err != nil {
				return err
			}
			if f.OrganizationID() != existing.OrganizationID() {
				return member.ErrOrganizationMismatch
			}
			exists, err := s.repo.ExistsLive(txCtx, existing.Kind(), f.ID(), existing.PersonID())
			if err != nil {
				return err
			}
			if exists {
				return member.ErrAlreadyMember
			}
			if existing.Kind() == member.KindAttendee {
				if err := s.validateCapacity(txCtx, f); err != nil {
					return err
				}
			}
		}

		updated, err = s.repo.Update(txCtx, existing.Reassigned(newFactionID))
		return err
	})
	if err != nil {
		return member.Membership{}, err
	}

	s.publisher.Publish(&member.ReassignedEvent{Result: updated, OldFactionID: oldFactionID})
	return updated, nil
}

// Remove soft-deletes a membership, mirroring the owning person's
// lifecycle; records are never hard-deleted.
func (s *MemberService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.authorizeManage(ctx); err != nil {
		return err
	}

	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.SoftDelete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(&member.RemovedEvent{ID: id})
	return nil
}

func (s *MemberService) validateCapacity(ctx context.Context, f faction.Faction) error {
	org, err := s.orgs.GetByID(ctx, f.OrganizationID())
	if err != nil {
		return err
	}
	max := org.Settings().MaxAttendeesPerFaction
	if max <= 0 {
		return nil
	}

	count, err := s.repo.CountByFactionIDs(ctx, member.KindAttendee, []uuid.UUID{f.ID()})
	if err != nil {
		return err
	}
	if count >= int64(max) {
		return &member.FactionFullError{MaxAttendees: max, FactionName: f.Name()}
	}
	return nil
}
