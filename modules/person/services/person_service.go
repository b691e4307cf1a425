package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/musterhq/muster/modules/person/domain/aggregates/person"
	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/eventbus"
)

// PersonService owns the identity records memberships reference.
type PersonService struct {
	repo      person.Repository
	publisher eventbus.EventBus
}

func NewPersonService(repo person.Repository, publisher eventbus.EventBus) *PersonService {
	return &PersonService{repo: repo, publisher: publisher}
}

func (s *PersonService) GetPaginated(ctx context.Context, params *person.FindParams) ([]person.Person, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *PersonService) GetByID(ctx context.Context, id uuid.UUID) (person.Person, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PersonService) GetByUsername(ctx context.Context, username string) (person.Person, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *PersonService) Create(ctx context.Context, dto *person.CreateDTO) (person.Person, error) {
	var created person.Person
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, dto.ToEntity())
		return err
	})
	if err != nil {
		return person.Person{}, err
	}
	s.publisher.Publish(&person.CreatedEvent{Result: created})
	return created, nil
}

func (s *PersonService) Delete(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.SoftDelete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(&person.DeletedEvent{ID: id})
	return nil
}
