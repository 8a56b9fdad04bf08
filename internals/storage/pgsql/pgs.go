package pgsql

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Whateverdoa/vertical-slice-service/pkg/config"
	"github.com/jmoiron/sqlx"
)

func CreatePGConnection(ctx context.Context) *sqlx.DB {
	slog.Debug("Creating Postgres pool connection")
	db, err := sqlx.Open("pgx", config.GetDBURL("postgresql"))
	if err != nil {
		slog.Error("SQL create connection error", "err", err)
		os.Exit(1)
	}

	db.SetMaxOpenConns(config.DB.MaxOpenConns)
	db.SetMaxIdleConns(config.DB.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DB.ConnMaxLifetimeMin) * time.Minute)

	slog.Debug("Try to ping Postgres")
	if err := db.PingContext(ctx); err != nil {
		slog.Error("SQL ping error", "err", err)
		os.Exit(1)
	}
	slog.Debug("Ping is successful")

	return db
}
