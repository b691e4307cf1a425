package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/musterhq/muster/modules/person/domain/aggregates/person"
	"github.com/musterhq/muster/pkg/composables"
	"github.com/musterhq/muster/pkg/repo"
)

var (
	ErrPersonNotFound = errors.New("person not found")
)

const (
	personFindQuery = `
        SELECT
            p.id,
            p.username,
            p.email,
            p.display_name,
            p.is_active,
            p.created_at,
            p.updated_at,
            p.deleted_at
        FROM people p`

	personCountQuery = `SELECT COUNT(p.id) FROM people p`

	personInsertQuery = `
        INSERT INTO people (id, username, email, display_name, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`

	personSoftDeleteQuery = `UPDATE people SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
)

type PgPersonRepository struct{}

func NewPersonRepository() person.Repository {
	return &PgPersonRepository{}
}

func (g *PgPersonRepository) buildFilters(params *person.FindParams) ([]string, []interface{}) {
	where := []string{"p.deleted_at IS NULL"}
	args := []interface{}{}

	if params.Search != "" {
		where = append(where, "(p.username ILIKE $1 OR p.email ILIKE $1 OR p.display_name ILIKE $1)")
		args = append(args, "%"+params.Search+"%")
	}
	return where, args
}

func (g *PgPersonRepository) GetPaginated(ctx context.Context, params *person.FindParams) ([]person.Person, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where, args := g.buildFilters(params)

	query := repo.Join(
		personFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY p.username ASC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query people")
	}
	defer rows.Close()

	people, err := scanPeople(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery := repo.Join(personCountQuery, repo.JoinWhere(where...))
	var total int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count people")
	}
	return people, total, nil
}

func (g *PgPersonRepository) GetByID(ctx context.Context, id uuid.UUID) (person.Person, error) {
	return g.getOne(ctx, "p.deleted_at IS NULL AND p.id = $1", id)
}

func (g *PgPersonRepository) GetByUsername(ctx context.Context, username string) (person.Person, error) {
	return g.getOne(ctx, "p.deleted_at IS NULL AND p.username = $1", username)
}

func (g *PgPersonRepository) getOne(ctx context.Context, cond string, arg interface{}) (person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, err
	}

	rows, err := tx.Query(ctx, repo.Join(personFindQuery, "WHERE "+cond), arg)
	if err != nil {
		return person.Person{}, errors.Wrap(err, "failed to query person")
	}
	defer rows.Close()

	people, err := scanPeople(rows)
	if err != nil {
		return person.Person{}, err
	}
	if len(people) == 0 {
		return person.Person{}, ErrPersonNotFound
	}
	return people[0], nil
}

func (g *PgPersonRepository) Create(ctx context.Context, p person.Person) (person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, err
	}

	var createdAt, updatedAt time.Time
	if err := tx.QueryRow(
		ctx,
		personInsertQuery,
		p.ID(), p.Username(), p.Email(), p.DisplayName(), p.Active(),
	).Scan(&createdAt, &updatedAt); err != nil {
		return person.Person{}, errors.Wrap(err, "failed to insert person")
	}

	return person.Hydrate(
		p.ID(), p.Username(), p.Email(), p.DisplayName(), p.Active(),
		createdAt, updatedAt, nil,
	), nil
}

func (g *PgPersonRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, personSoftDeleteQuery, id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "failed to soft delete person")
	}
	if tag.RowsAffected() == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func scanPeople(rows pgx.Rows) ([]person.Person, error) {
	out := make([]person.Person, 0, 16)
	for rows.Next() {
		var (
			id          uuid.UUID
			username    string
			email       string
			displayName string
			active      bool
			createdAt   time.Time
			updatedAt   time.Time
			deletedAt   *time.Time
		)
		if err := rows.Scan(&id, &username, &email, &displayName, &active, &createdAt, &updatedAt, &deletedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan person")
		}
		out = append(out, person.Hydrate(id, username, email, displayName, active, createdAt, updatedAt, deletedAt))
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
