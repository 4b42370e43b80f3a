package persist

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// DB is the database handle the engine runs statements on.
// Satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxCoordinator supplies transaction boundaries for a save.
//
// BeginTransaction opens a transaction covering the statements the writer then
// runs on its DB handle, and returns the callback that rolls it back.
// CommitTransaction makes the writes durable.
type TxCoordinator interface {
	BeginTransaction(ctx context.Context) (rollback func() error, err error)
	CommitTransaction(ctx context.Context) error
}

// IDGenerator produces the batch id stamped on every row of one save.
// UUIDv7Generator is the default; tests inject deterministic generators.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 batch ids.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
