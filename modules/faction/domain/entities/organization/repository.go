package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("organization not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	Create(ctx context.Context, o Organization) (Organization, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, s Settings) error
}
