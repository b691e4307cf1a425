package application

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/go-faster/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationManager collects the schema files modules embed and applies
// them with goose over a database/sql connection.
type MigrationManager interface {
	RegisterSchema(fsys *embed.FS, dir string)
	Up(ctx context.Context, dsn string) error
	Down(ctx context.Context, dsn string) error
	Status(ctx context.Context, dsn string) error
}

type schemaSource struct {
	fsys *embed.FS
	dir  string
}

type migrationManager struct {
	sources []schemaSource
}

func NewMigrationManager() MigrationManager {
	return &migrationManager{}
}

func (m *migrationManager) RegisterSchema(fsys *embed.FS, dir string) {
	m.sources = append(m.sources, schemaSource{fsys: fsys, dir: dir})
}

func (m *migrationManager) open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open migration connection")
	}
	return db, nil
}

func (m *migrationManager) each(ctx context.Context, dsn string, fn func(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error) error {
	db, err := m.open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}

	for _, src := range m.sources {
		if err := fn(ctx, db, src.fsys, src.dir); err != nil {
			return err
		}
	}
	return nil
}

func (m *migrationManager) Up(ctx context.Context, dsn string) error {
	return m.each(ctx, dsn, func(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
		goose.SetBaseFS(fsys)
		defer goose.SetBaseFS(nil)
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return errors.Wrap(err, "migration up failed")
		}
		return nil
	})
}

func (m *migrationManager) Down(ctx context.Context, dsn string) error {
	return m.each(ctx, dsn, func(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
		goose.SetBaseFS(fsys)
		defer goose.SetBaseFS(nil)
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return errors.Wrap(err, "migration down failed")
		}
		return nil
	})
}

func (m *migrationManager) Status(ctx context.Context, dsn string) error {
	return m.each(ctx, dsn, func(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
		goose.SetBaseFS(fsys)
		defer goose.SetBaseFS(nil)
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			return errors.Wrap(err, "migration status failed")
		}
		return nil
	})
}
