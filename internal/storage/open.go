// Package storage picks the run store named by the configuration.
package storage

import (
	"context"
	"io"

	"hotel_value/internal/domain"
	"hotel_value/internal/shared"
	mysqlrepo "hotel_value/internal/storage/mysql"
	"hotel_value/internal/storage/sqlite"
)

// Open connects to the configured store. The returned Closer releases the connection pool.
func Open(ctx context.Context, cfg shared.Config) (domain.RunRepository, io.Closer, error) {
	switch cfg.StoreDriver {
	case "mysql":
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return mysqlrepo.New(db), db, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.New(db), db, nil
	default:
		return nil, nil, shared.ErrUnknownStore
	}
}
