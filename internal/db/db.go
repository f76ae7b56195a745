package db

import "database/sql"

// DB wraps the shared connection pool.
type DB struct {
	*sql.DB
}
