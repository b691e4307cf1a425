package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/repo"
)

// Every membership read joins people on liveness, so a soft-deleted
// person never surfaces through a still-live membership row.
const (
	memberFindQuery = `
        SELECT
            m.id,
            m.kind,
            m.person_id,
            m.faction_id,
            m.organization_id,
            m.is_admin,
            p.username,
            p.email,
            p.display_name,
            m.created_at,
            m.updated_at,
            m.deleted_at
        FROM memberships m
        JOIN people p ON p.id = m.person_id AND p.deleted_at IS NULL`

	memberCountQuery = `
        SELECT COUNT(m.id)
        FROM memberships m
        JOIN people p ON p.id = m.person_id AND p.deleted_at IS NULL
        WHERE m.deleted_at IS NULL AND m.kind = $1 AND m.faction_id = ANY($2)`

	memberGroupedQuery = `
        SELECT m.faction_id, f.name, COUNT(m.id)
        FROM memberships m
        JOIN people p ON p.id = m.person_id AND p.deleted_at IS NULL
        JOIN factions f ON f.id = m.faction_id
        WHERE m.deleted_at IS NULL AND m.kind = $1 AND m.faction_id = ANY($2)
        GROUP BY m.faction_id, f.name
        ORDER BY f.name ASC`

	memberExistsQuery = `
        SELECT EXISTS (
            SELECT 1 FROM memberships m
            WHERE m.deleted_at IS NULL AND m.kind = $1 AND m.faction_id = $2 AND m.person_id = $3
        )`

	memberInsertQuery = `
        INSERT INTO memberships (id, kind, person_id, faction_id, organization_id, is_admin)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	memberUpdateQuery = `
        UPDATE memberships
        SET faction_id = $2, is_admin = $3, updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL`

	memberSoftDeleteQuery = `
        UPDATE memberships
        SET deleted_at = $2, updated_at = $2
        WHERE id = $1 AND deleted_at IS NULL`
)

type PgMemberRepository struct{}

func NewMemberRepository() member.Repository {
	return &PgMemberRepository{}
}

func (g *PgMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (member.Membership, error) {
	return g.getOne(ctx, "WHERE m.deleted_at IS NULL AND m.id = $1", id)
}

func (g *PgMemberRepository) GetByPerson(ctx context.Context, kind member.Kind, personID uuid.UUID) (member.Membership, error) {
	return g.getOne(ctx, "WHERE m.deleted_at IS NULL AND m.kind = $1 AND m.person_id = $2", kind, personID)
}

func (g *PgMemberRepository) getOne(ctx context.Context, tail string, args ...interface{}) (member.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return member.Membership{}, err
	}

	rows, err := tx.Query(ctx, repo.Join(memberFindQuery, tail), args...)
	if err != nil {
		return member.Membership{}, errors.Wrap(err, "failed to query membership")
	}
	defer rows.Close()

	memberships, err := scanMemberships(rows)
	if err != nil {
		return member.Membership{}, err
	}
	if len(memberships) == 0 {
		return member.Membership{}, member.ErrNotFound
	}
	return memberships[0], nil
}

func (g *PgMemberRepository) ListByFactionIDs(ctx context.Context, kind member.Kind, factionIDs []uuid.UUID) ([]member.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := repo.Join(
		memberFindQuery,
		"WHERE m.deleted_at IS NULL AND m.kind = $1 AND m.faction_id = ANY($2)",
		"ORDER BY p.display_name ASC",
	)
	rows, err := tx.Query(ctx, query, kind, factionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query memberships")
	}
	defer rows.Close()

	return scanMemberships(rows)
}

// CountByFactionIDs runs the scoped count as one aggregate regardless
// of how many factions the scope expanded to.
func (g *PgMemberRepository) CountByFactionIDs(ctx context.Context, kind member.Kind, factionIDs []uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, memberCountQuery, kind, factionIDs).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count memberships")
	}
	return count, nil
}

func (g *PgMemberRepository) CountGroupedByFaction(ctx context.Context, kind member.Kind, factionIDs []uuid.UUID) ([]member.FactionCount, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, memberGroupedQuery, kind, factionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query membership distribution")
	}
	defer rows.Close()

	out := make([]member.FactionCount, 0, 8)
	for rows.Next() {
		var c member.FactionCount
		if err := rows.Scan(&c.FactionID, &c.FactionName, &c.Count); err != nil {
			return nil, errors.Wrap(err, "failed to scan membership distribution")
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (g *PgMemberRepository) Roster(ctx context.Context, factionIDs []uuid.UUID) ([]member.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := repo.Join(
		memberFindQuery,
		"WHERE m.deleted_at IS NULL AND m.faction_id = ANY($1)",
		"ORDER BY CASE m.kind WHEN 'leader' THEN 0 ELSE 1 END, p.display_name ASC",
	)
	rows, err := tx.Query(ctx, query, factionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query roster")
	}
	defer rows.Close()

	return scanMemberships(rows)
}

// ExistsLive checks the uniqueness guard against raw membership rows.
// The partial unique index knows nothing about person liveness, so
// neither does this check.
func (g *PgMemberRepository) ExistsLive(ctx context.Context, kind member.Kind, factionID, personID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRow(ctx, memberExistsQuery, kind, factionID, personID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check membership existence")
	}
	return exists, nil
}

func (g *PgMemberRepository) Create(ctx context.Context, m member.Membership) (member.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return member.Membership{}, err
	}

	var createdAt, updatedAt time.Time
	if err := tx.QueryRow(
		ctx,
		memberInsertQuery,
		m.ID(), m.Kind(), m.PersonID(), m.FactionID(), m.OrganizationID(), m.IsAdmin(),
	).Scan(&createdAt, &updatedAt); err != nil {
		return member.Membership{}, errors.Wrap(err, "failed to insert membership")
	}

	return member.Hydrate(
		m.ID(), m.Kind(), m.PersonID(), m.FactionID(), m.OrganizationID(),
		m.IsAdmin(), m.Person(), createdAt, updatedAt, nil,
	), nil
}

func (g *PgMemberRepository) Update(ctx context.Context, m member.Membership) (member.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return member.Membership{}, err
	}

	tag, err := tx.Exec(ctx, memberUpdateQuery, m.ID(), m.FactionID(), m.IsAdmin())
	if err != nil {
		return member.Membership{}, errors.Wrap(err, "failed to update membership")
	}
	if tag.RowsAffected() == 0 {
		return member.Membership{}, member.ErrNotFound
	}
	return g.GetByID(ctx, m.ID())
}

func (g *PgMemberRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, memberSoftDeleteQuery, id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "failed to soft delete membership")
	}
	if tag.RowsAffected() == 0 {
		return member.ErrNotFound
	}
	return nil
}

func scanMemberships(rows pgx.Rows) ([]member.Membership, error) {
	out := make([]member.Membership, 0, 16)
	for rows.Next() {
		var (
			id             uuid.UUID
			kind           member.Kind
			personID       uuid.UUID
			factionID      *uuid.UUID
			organizationID uuid.UUID
			isAdmin        bool
			username       string
			email          string
			displayName    string
			createdAt      time.Time
			updatedAt      time.Time
			deletedAt      *time.Time
		)
		if err := rows.Scan(
			&id, &kind, &personID, &factionID, &organizationID, &isAdmin,
			&username, &email, &displayName, &createdAt, &updatedAt, &deletedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan membership")
		}
		out = append(out, member.Hydrate(
			id, kind, personID, factionID, organizationID, isAdmin,
			member.Person{ID: personID, Username: username, Email: email, DisplayName: displayName},
			createdAt, updatedAt, deletedAt,
		))
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
