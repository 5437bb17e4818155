package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const (
	defaultMigrationsTable = "schema_migrations"
	defaultLockTimeout     = 30 * time.Second
)

// Config описывает источник миграций.
type Config struct {
	// Path - каталог внутри FS.
	Path  string
	FS    fs.FS
	Table string
}

// Migrator применяет миграции поверх пула pgx.
type Migrator struct {
	config Config
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewMigrator(logger *zap.Logger, config Config, pool *pgxpool.Pool) *Migrator {
	if config.Table == "" {
		config.Table = defaultMigrationsTable
	}
	return &Migrator{
		config: config,
		pool:   pool,
		logger: logger.Named("Migrator"),
	}
}

// Up применяет все доступные миграции. Отсутствие изменений ошибкой не считается.
func (m *Migrator) Up(ctx context.Context) error {
	migrator, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer closeMigrator(m.logger, migrator)

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	m.logger.Info("Database migrations applied")
	return nil
}

// Down откатывает все миграции.
func (m *Migrator) Down(ctx context.Context) error {
	migrator, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer closeMigrator(m.logger, migrator)

	if err := migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}

	m.logger.Info("Database migrations rolled back")
	return nil
}

// Version возвращает текущую версию схемы и флаг dirty.
func (m *Migrator) Version(ctx context.Context) (uint, bool, error) {
	migrator, err := m.open(ctx)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m.logger, migrator)

	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

func (m *Migrator) open(ctx context.Context) (*migrate.Migrate, error) {
	if err := m.pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}

	db := stdlib.OpenDBFromPool(m.pool)

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable:       m.config.Table,
		MigrationsTableQuoted: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	source, err := iofs.New(m.config.FS, m.config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	migrator.LockTimeout = defaultLockTimeout

	return migrator, nil
}

func closeMigrator(logger *zap.Logger, migrator *migrate.Migrate) {
	srcErr, dbErr := migrator.Close()
	if srcErr != nil || dbErr != nil {
		logger.Warn("Failed to close migrator cleanly", zap.NamedError("source_error", srcErr), zap.NamedError("db_error", dbErr))
	}
}
