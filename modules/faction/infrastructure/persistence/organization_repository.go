package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/musterhq/muster/modules/faction/domain/entities/organization"
	"github.com/musterhq/muster/pkg/composables"
)

const (
	organizationFindQuery = `
        SELECT o.id, o.name, o.abbreviation, o.settings, o.created_at, o.updated_at
        FROM organizations o
        WHERE o.id = $1`

	organizationInsertQuery = `
        INSERT INTO organizations (id, name, abbreviation, settings)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`

	organizationSettingsQuery = `
        UPDATE organizations SET settings = $2, updated_at = now() WHERE id = $1`
)

type PgOrganizationRepository struct{}

func NewOrganizationRepository() organization.Repository {
	return &PgOrganizationRepository{}
}

func (g *PgOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}

	var (
		name         string
		abbreviation string
		rawSettings  []byte
		createdAt    time.Time
		updatedAt    time.Time
	)
	err = tx.QueryRow(ctx, organizationFindQuery, id).Scan(
		&id, &name, &abbreviation, &rawSettings, &createdAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return organization.Organization{}, organization.ErrNotFound
	}
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to query organization")
	}

	// Stored settings are merged over the defaults so keys added after
	// the row was written still resolve.
	settings := organization.DefaultSettings()
	if len(rawSettings) > 0 {
		if err := json.Unmarshal(rawSettings, &settings); err != nil {
			return organization.Organization{}, errors.Wrap(err, "failed to decode organization settings")
		}
	}

	return organization.Hydrate(id, name, abbreviation, settings, createdAt, updatedAt), nil
}

func (g *PgOrganizationRepository) Create(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}

	rawSettings, err := json.Marshal(o.Settings())
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to encode organization settings")
	}

	var createdAt, updatedAt time.Time
	if err := tx.QueryRow(
		ctx,
		organizationInsertQuery,
		o.ID(), o.Name(), o.Abbreviation(), rawSettings,
	).Scan(&createdAt, &updatedAt); err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to insert organization")
	}

	return organization.Hydrate(o.ID(), o.Name(), o.Abbreviation(), o.Settings(), createdAt, updatedAt), nil
}

func (g *PgOrganizationRepository) UpdateSettings(ctx context.Context, id uuid.UUID, s organization.Settings) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	rawSettings, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to encode organization settings")
	}

	tag, err := tx.Exec(ctx, organizationSettingsQuery, id, rawSettings)
	if err != nil {
		return errors.Wrap(err, "failed to update organization settings")
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}
