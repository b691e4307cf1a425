package person

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Person, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Person, error)
	GetByUsername(ctx context.Context, username string) (Person, error)
	Create(ctx context.Context, p Person) (Person, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
