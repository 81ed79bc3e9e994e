package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// MigrationRequest selects a goose action. Version is only read by up-to and
// down-to.
type MigrationRequest struct {
	Action  string
	Version int64
}

type migrationFunc func(ctx context.Context, db *sql.DB, version int64) error

var migrationActions = map[string]migrationFunc{
	"up": func(ctx context.Context, db *sql.DB, _ int64) error {
		return goose.UpContext(ctx, db, ".")
	},
	"down": func(ctx context.Context, db *sql.DB, _ int64) error {
		return goose.DownContext(ctx, db, ".")
	},
	"status": func(ctx context.Context, db *sql.DB, _ int64) error {
		return goose.StatusContext(ctx, db, ".")
	},
	"version": func(ctx context.Context, db *sql.DB, _ int64) error {
		return goose.VersionContext(ctx, db, ".")
	},
	"redo": func(ctx context.Context, db *sql.DB, _ int64) error {
		return goose.RedoContext(ctx, db, ".")
	},
	"reset": func(ctx context.Context, db *sql.DB, _ int64) error {
		return goose.ResetContext(ctx, db, ".")
	},
	"up-to": func(ctx context.Context, db *sql.DB, v int64) error {
		return goose.UpToContext(ctx, db, ".", v)
	},
	"down-to": func(ctx context.Context, db *sql.DB, v int64) error {
		return goose.DownToContext(ctx, db, ".", v)
	},
}

// MigrationActions lists the accepted action names in sorted order.
func MigrationActions() []string {
	names := make([]string, 0, len(migrationActions))
	for name := range migrationActions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NeedsVersion reports whether the action takes a target version.
func NeedsVersion(action string) bool {
	return action == "up-to" || action == "down-to"
}

// Migrate applies the embedded schema migrations to the primary database.
func Migrate(ctx context.Context, cfg config.Config, req MigrationRequest) error {
	run, ok := migrationActions[req.Action]
	if !ok {
		return fmt.Errorf("unknown migrate command %q", req.Action)
	}
	if cfg.Database.WriteDSN == "" {
		return errors.New("db: WriteDSN is required")
	}
	log, err := BuildLogger(cfg)
	if err != nil {
		return err
	}

	pgxCfg, err := pgx.ParseConfig(cfg.Database.WriteDSN)
	if err != nil {
		return err
	}
	pgxCfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db := stdlib.OpenDB(*pgxCfg)
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	entry := log.WithFields(logrus.Fields{"action": req.Action})
	if NeedsVersion(req.Action) {
		entry = entry.WithField("target_version", req.Version)
	}
	if err := run(ctx, db, req.Version); err != nil {
		entry.WithError(err).Error("migration failed")
		return err
	}
	if current, err := goose.GetDBVersionContext(ctx, db); err == nil {
		entry = entry.WithField("db_version", current)
	}
	entry.Info("migration finished")
	return nil
}
