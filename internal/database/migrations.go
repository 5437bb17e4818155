package database

import (
	"context"
	"embed"
	"fmt"

	"cyoa-server/pkg/migration"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Команды обслуживания схемы для флага -migrate.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandVersion = "version"
)

func newMigrator(logger *zap.Logger, pool *pgxpool.Pool) *migration.Migrator {
	return migration.NewMigrator(logger, migration.Config{
		Path: "migrations",
		FS:   migrationsFS,
	}, pool)
}

// Migrate приводит схему к последней версии.
func Migrate(ctx context.Context, logger *zap.Logger, pool *pgxpool.Pool) error {
	return newMigrator(logger, pool).Up(ctx)
}

// Rollback откатывает все миграции. Данные историй и задач удаляются.
func Rollback(ctx context.Context, logger *zap.Logger, pool *pgxpool.Pool) error {
	return newMigrator(logger, pool).Down(ctx)
}

// SchemaVersion возвращает примененную версию схемы; 0 - миграций нет.
func SchemaVersion(ctx context.Context, logger *zap.Logger, pool *pgxpool.Pool) (uint, bool, error) {
	return newMigrator(logger, pool).Version(ctx)
}

// RunCommand выполняет одну команду обслуживания схемы.
func RunCommand(ctx context.Context, logger *zap.Logger, pool *pgxpool.Pool, command string) error {
	switch command {
	case CommandUp:
		return Migrate(ctx, logger, pool)
	case CommandDown:
		return Rollback(ctx, logger, pool)
	case CommandVersion:
		version, dirty, err := SchemaVersion(ctx, logger, pool)
		if err != nil {
			return err
		}
		logger.Info("Database schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q (expected up, down or version)", command)
	}
}
