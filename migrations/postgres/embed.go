// Package migrations embebe el esquema PostgreSQL y lo aplica con goose.
package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

//go:embed *.sql
var FS embed.FS

// Table es la tabla de versiones de goose.
const Table = "authhero_migrations"

func setup() error {
	goose.SetBaseFS(FS)
	goose.SetTableName(Table)
	goose.SetLogger(gooseLogger{})
	return goose.SetDialect("postgres")
}

// Up aplica las migraciones pendientes usando el pool pgx.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := setup(); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Version devuelve la versión aplicada.
func Version(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := setup(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}

// gooseLogger redirige el Printf de goose a zap.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logger.Named("migrations").Info(fmt.Sprintf(format, v...))
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logger.Named("migrations").Error(fmt.Sprintf(format, v...))
}
