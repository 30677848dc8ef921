package dbconnection

import (
	"context"
	"fmt"
	"time"

	"github.com/rwk-liga/rwk-engine/queries"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type DBConnection struct {
	*queries.RWKDBConnection
}

func NewDBConnection(ctx context.Context, dsn string) (*DBConnection, *sqlx.DB, error) {
	db, connErr := sqlx.Open("postgres", dsn)
	if connErr != nil {
		return nil, nil, fmt.Errorf("failed to connect the database: %w", connErr)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	return &DBConnection{
		RWKDBConnection: &queries.RWKDBConnection{DB: db},
	}, db, nil
}
