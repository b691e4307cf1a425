package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/entities/organization"
	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/eventbus"
)

// FactionService owns faction lifecycle: creation under the depth
// policy, rename, reparenting and subtree soft-deletion. Depth checks
// and the writes they guard always share one transaction; the candidate
// parent is row-locked so two concurrent child creations at the depth
// boundary serialize instead of both passing validation.
type FactionService struct {
	repo      faction.Repository
	orgs      organization.Repository
	scope     *ScopeService
	publisher eventbus.EventBus
}

func NewFactionService(
	repo faction.Repository,
	orgs organization.Repository,
	scope *ScopeService,
	publisher eventbus.EventBus,
) *FactionService {
	return &FactionService{repo: repo, orgs: orgs, scope: scope, publisher: publisher}
}

func (s *FactionService) authorizeManage(ctx context.Context) error {
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

func (s *FactionService) GetByID(ctx context.Context, id uuid.UUID) (faction.Faction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FactionService) GetBySlug(ctx context.Context, slug string) (faction.Faction, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *FactionService) GetPaginated(ctx context.Context, params *faction.FindParams) ([]faction.Faction, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *FactionService) Count(ctx context.Context, params *faction.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

// Tree returns a fresh hierarchy snapshot for one organization.
func (s *FactionService) Tree(ctx context.Context, organizationID uuid.UUID) (*Tree, error) {
	edges, err := s.repo.Adjacency(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return NewTree(edges), nil
}

// Depth computes the faction's current depth from a fresh snapshot.
func (s *FactionService) Depth(ctx context.Context, f faction.Faction) (int, error) {
	tree, err := s.Tree(ctx, f.OrganizationID())
	if err != nil {
		return 0, err
	}
	return tree.Depth(f.ID())
}

// Create validates the depth policy and inserts the faction in one
// transaction. A child inherits its parent's organization; the parent
// row stays locked until commit.
func (s *FactionService) Create(ctx context.Context, dto *faction.CreateDTO) (faction.Faction, error) {
	if err := s.authorizeManage(ctx); err != nil {
		return faction.Faction{}, err
	}

	var created faction.Faction
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		entity := dto.ToEntity()

		if dto.ParentID != nil {
			parent, err := s.repo.GetForUpdate(txCtx, *dto.ParentID)
			if err != nil {
				return err
			}
			org, err := s.parentOrganization(txCtx, parent)
			if err != nil {
				return err
			}
			if err := s.validateChildDepth(txCtx, parent, org); err != nil {
				return err
			}
			entity = faction.Hydrate(
				entity.ID(), parent.OrganizationID(), dto.ParentID,
				entity.Name(), entity.Slug(), entity.Abbreviation(), entity.Description(),
				entity.Active(), entity.CreatedAt(), entity.UpdatedAt(), nil,
			)
		} else {
			if dto.OrganizationID == uuid.Nil {
				return faction.ErrMissingOrganization
			}
			org, err := s.orgs.GetByID(txCtx, dto.OrganizationID)
			if err != nil {
				return err
			}
			if org.Settings().MaxFactionDepth < 0 {
				return &faction.DepthExceededError{
					MaxDepth:         org.Settings().MaxFactionDepth,
					OrganizationName: org.Name(),
				}
			}
		}

		var err error
		created, err = s.repo.Create(txCtx, entity)
		return err
	})
	if err != nil {
		return faction.Faction{}, err
	}

	s.publisher.Publish(&faction.CreatedEvent{Result: created})
	return created, nil
}

func (s *FactionService) Update(ctx context.Context, id uuid.UUID, dto *faction.UpdateDTO) (faction.Faction, error) {
	if err := s.authorizeManage(ctx); err != nil {
		return faction.Faction{}, err
	}

	var updated faction.Faction
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, dto.Apply(existing))
		return err
	})
	if err != nil {
		return faction.Faction{}, err
	}

	s.publisher.Publish(&faction.UpdatedEvent{Result: updated})
	return updated, nil
}

// Move reparents a faction. The whole moved subtree must still fit
// under the depth cap, and the new parent may not sit inside it.
func (s *FactionService) Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (faction.Faction, error) {
	if err := s.authorizeManage(ctx); err != nil {
		return faction.Faction{}, err
	}

	var moved faction.Faction
	var oldParentID *uuid.UUID
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		f, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		oldParentID = f.ParentID()

		tree, err := s.Tree(txCtx, f.OrganizationID())
		if err != nil {
			return err
		}
		height, err := tree.Height(id)
		if err != nil {
			return err
		}

		newBaseDepth := 0
		if newParentID != nil {
			if *newParentID == id {
				return faction.ErrInvalidParent
			}
			parent, err := s.repo.GetForUpdate(txCtx, *newParentID)
			if err != nil {
				return err
			}
			if parent.OrganizationID() != f.OrganizationID() {
				return faction.ErrCrossOrganization
			}
			descendants, err := tree.DescendantIDs(id, false)
			if err != nil {
				return err
			}
			for _, descendantID := range descendants {
				if descendantID == *newParentID {
					return faction.ErrInvalidParent
				}
			}
			parentDepth, err := tree.Depth(*newParentID)
			if err != nil {
				return err
			}
			newBaseDepth = parentDepth + 1
		}

		org, err := s.orgs.GetByID(txCtx, f.OrganizationID())
		if err != nil {
			return err
		}
		if newBaseDepth+height > org.Settings().MaxFactionDepth {
			return &faction.DepthExceededError{
				MaxDepth:         org.Settings().MaxFactionDepth,
				OrganizationName: org.Name(),
			}
		}

		moved, err = s.repo.Update(txCtx, f.Reparented(newParentID))
		return err
	})
	if err != nil {
		return faction.Faction{}, err
	}

	s.publisher.Publish(&faction.MovedEvent{Result: moved, OldParentID: oldParentID})
	return moved, nil
}

// Delete soft-deletes the faction and its entire live subtree in one
// transaction. Nothing is ever physically removed.
func (s *FactionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.authorizeManage(ctx); err != nil {
		return err
	}

	var deletedIDs []uuid.UUID
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		f, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		tree, err := s.Tree(txCtx, f.OrganizationID())
		if err != nil {
			return err
		}
		deletedIDs, err = tree.DescendantIDs(id, true)
		if err != nil {
			return err
		}
		if len(deletedIDs) == 0 {
			deletedIDs = []uuid.UUID{id}
		}
		return s.repo.SoftDeleteMany(txCtx, deletedIDs, time.Now().UTC())
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(&faction.DeletedEvent{IDs: deletedIDs})
	return nil
}

func (s *FactionService) parentOrganization(ctx context.Context, parent faction.Faction) (organization.Organization, error) {
	if parent.OrganizationID() == uuid.Nil {
		return organization.Organization{}, faction.ErrMissingOrganization
	}
	return s.orgs.GetByID(ctx, parent.OrganizationID())
}

// validateChildDepth enforces the depth policy for a child created
// under the given parent: the child lands at depth(parent)+1, so a
// parent already at the cap rejects the creation.
func (s *FactionService) validateChildDepth(ctx context.Context, parent faction.Faction, org organization.Organization) error {
	tree, err := s.Tree(ctx, parent.OrganizationID())
	if err != nil {
		return err
	}
	parentDepth, err := tree.Depth(parent.ID())
	if err != nil {
		return err
	}
	if parentDepth >= org.Settings().MaxFactionDepth {
		return &faction.DepthExceededError{
			MaxDepth:         org.Settings().MaxFactionDepth,
			OrganizationName: org.Name(),
		}
	}
	return nil
}
