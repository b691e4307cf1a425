package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/repo"
)

const (
	factionFindQuery = `
        SELECT
            f.id,
            f.organization_id,
            f.parent_id,
            f.name,
            f.slug,
            f.abbreviation,
            f.description,
            f.is_active,
            f.created_at,
            f.updated_at,
            f.deleted_at
        FROM factions f`

	factionCountQuery = `SELECT COUNT(f.id) FROM factions f`

	factionAdjacencyQuery = `
        SELECT f.id, f.parent_id
        FROM factions f
        WHERE f.deleted_at IS NULL AND f.organization_id = $1`

	factionSubCountQuery = `
        SELECT COUNT(f.id)
        FROM factions f
        WHERE f.deleted_at IS NULL AND f.parent_id = $1`

	factionInsertQuery = `
        INSERT INTO factions (id, organization_id, parent_id, name, slug, abbreviation, description, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`

	factionUpdateQuery = `
        UPDATE factions
        SET parent_id = $2,
            name = $3,
            slug = $4,
            abbreviation = $5,
            description = $6,
            is_active = $7,
            updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL`

	factionSoftDeleteQuery = `
        UPDATE factions
        SET deleted_at = $2, updated_at = $2
        WHERE id = ANY($1) AND deleted_at IS NULL`
)

type PgFactionRepository struct{}

func NewFactionRepository() faction.Repository {
	return &PgFactionRepository{}
}

// translateConstraint maps unique-violation errors from the partial
// live indexes onto their domain sentinels.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.ConstraintName {
	case "factions_name_idx":
		return faction.ErrDuplicateName
	case "factions_slug_idx":
		return faction.ErrDuplicateSlug
	default:
		return nil
	}
}

func (g *PgFactionRepository) buildFilters(params *faction.FindParams) ([]string, []interface{}) {
	where := []string{"f.deleted_at IS NULL"}
	args := []interface{}{}

	if params.OrganizationID != uuid.Nil {
		where = append(where, fmt.Sprintf("f.organization_id = $%d", len(args)+1))
		args = append(args, params.OrganizationID)
	}
	if params.ParentID != nil {
		where = append(where, fmt.Sprintf("f.parent_id = $%d", len(args)+1))
		args = append(args, *params.ParentID)
	}
	if params.Search != "" {
		idx := len(args) + 1
		where = append(where, fmt.Sprintf("(f.name ILIKE $%d OR f.abbreviation ILIKE $%d)", idx, idx))
		args = append(args, "%"+params.Search+"%")
	}
	return where, args
}

func (g *PgFactionRepository) GetByID(ctx context.Context, id uuid.UUID) (faction.Faction, error) {
	return g.getOne(ctx, "WHERE f.deleted_at IS NULL AND f.id = $1", id)
}

func (g *PgFactionRepository) GetBySlug(ctx context.Context, slug string) (faction.Faction, error) {
	return g.getOne(ctx, "WHERE f.deleted_at IS NULL AND f.slug = $1", slug)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (g *PgFactionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (faction.Faction, error) {
	return g.getOne(ctx, "WHERE f.deleted_at IS NULL AND f.id = $1 FOR UPDATE", id)
}

func (g *PgFactionRepository) getOne(ctx context.Context, tail string, arg interface{}) (faction.Faction, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return faction.Faction{}, err
	}

	rows, err := tx.Query(ctx, repo.Join(factionFindQuery, tail), arg)
	if err != nil {
		return faction.Faction{}, errors.Wrap(err, "failed to query faction")
	}
	defer rows.Close()

	factions, err := scanFactions(rows)
	if err != nil {
		return faction.Faction{}, err
	}
	if len(factions) == 0 {
		return faction.Faction{}, faction.ErrNotFound
	}
	return factions[0], nil
}

func (g *PgFactionRepository) GetPaginated(ctx context.Context, params *faction.FindParams) ([]faction.Faction, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := g.buildFilters(params)
	query := repo.Join(
		factionFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY f.name ASC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query factions")
	}
	defer rows.Close()

	return scanFactions(rows)
}

func (g *PgFactionRepository) Count(ctx context.Context, params *faction.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	where, args := g.buildFilters(params)
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(factionCountQuery, repo.JoinWhere(where...)), args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "failed to count factions")
	}
	return total, nil
}

func (g *PgFactionRepository) Adjacency(ctx context.Context, organizationID uuid.UUID) ([]faction.Edge, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, factionAdjacencyQuery, organizationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query faction edges")
	}
	defer rows.Close()

	edges := make([]faction.Edge, 0, 32)
	for rows.Next() {
		var e faction.Edge
		if err := rows.Scan(&e.ID, &e.ParentID); err != nil {
			return nil, errors.Wrap(err, "failed to scan faction edge")
		}
		edges = append(edges, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return edges, nil
}

func (g *PgFactionRepository) SubFactionCount(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, factionSubCountQuery, id).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count sub-factions")
	}
	return count, nil
}

func (g *PgFactionRepository) Create(ctx context.Context, f faction.Faction) (faction.Faction, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return faction.Faction{}, err
	}

	var createdAt, updatedAt time.Time
	if err := tx.QueryRow(
		ctx,
		factionInsertQuery,
		f.ID(), f.OrganizationID(), f.ParentID(),
		f.Name(), f.Slug(), f.Abbreviation(), f.Description(), f.Active(),
	).Scan(&createdAt, &updatedAt); err != nil {
		if domainErr := translateConstraint(err); domainErr != nil {
			return faction.Faction{}, domainErr
		}
		return faction.Faction{}, errors.Wrap(err, "failed to insert faction")
	}

	return faction.Hydrate(
		f.ID(), f.OrganizationID(), f.ParentID(),
		f.Name(), f.Slug(), f.Abbreviation(), f.Description(),
		f.Active(), createdAt, updatedAt, nil,
	), nil
}

func (g *PgFactionRepository) Update(ctx context.Context, f faction.Faction) (faction.Faction, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return faction.Faction{}, err
	}

	tag, err := tx.Exec(
		ctx,
		factionUpdateQuery,
		f.ID(), f.ParentID(), f.Name(), f.Slug(), f.Abbreviation(), f.Description(), f.Active(),
	)
	if err != nil {
		if domainErr := translateConstraint(err); domainErr != nil {
			return faction.Faction{}, domainErr
		}
		return faction.Faction{}, errors.Wrap(err, "failed to update faction")
	}
	if tag.RowsAffected() == 0 {
		return faction.Faction{}, faction.ErrNotFound
	}
	return g.GetByID(ctx, f.ID())
}

func (g *PgFactionRepository) SoftDeleteMany(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, factionSoftDeleteQuery, ids, at)
	if err != nil {
		return errors.Wrap(err, "failed to soft delete factions")
	}
	if tag.RowsAffected() == 0 {
		return faction.ErrNotFound
	}
	return nil
}

func scanFactions(rows pgx.Rows) ([]faction.Faction, error) {
	out := make([]faction.Faction, 0, 16)
	for rows.Next() {
		var (
			id             uuid.UUID
			organizationID uuid.UUID
			parentID       *uuid.UUID
			name           string
			slug           string
			abbreviation   string
			description    string
			active         bool
			createdAt      time.Time
			updatedAt      time.Time
			deletedAt      *time.Time
		)
		if err := rows.Scan(
			&id, &organizationID, &parentID, &name, &slug, &abbreviation,
			&description, &active, &createdAt, &updatedAt, &deletedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan faction")
		}
		out = append(out, faction.Hydrate(
			id, organizationID, parentID, name, slug, abbreviation,
			description, active, createdAt, updatedAt, deletedAt,
		))
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
