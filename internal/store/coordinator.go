package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/seorec/internal/persist"
)

// ConnCoordinator implements persist.TxCoordinator on a single pinned
// connection. The writer must run its statements on the same *sql.Conn so
// they fall inside the transaction.
//
// BEGIN IMMEDIATE takes the write lock up front, so a second writer waits on
// busy_timeout instead of failing halfway through a save.
type ConnCoordinator struct {
	conn *sql.Conn

	mu   sync.Mutex
	open bool
}

// NewConnCoordinator returns a coordinator for conn.
func NewConnCoordinator(conn *sql.Conn) *ConnCoordinator {
	return &ConnCoordinator{conn: conn}
}

// BeginTransaction opens a transaction and returns its rollback callback.
// The callback is a no-op once the transaction has been committed or rolled back.
func (c *ConnCoordinator) BeginTransaction(ctx context.Context) (func() error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return nil, errors.New("transaction already open")
	}
	if _, err := c.conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	c.open = true
	return c.rollback, nil
}

// CommitTransaction commits the open transaction. On failure the transaction
// stays open so the rollback callback can still undo it.
func (c *ConnCoordinator) CommitTransaction(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return errors.New("no open transaction")
	}
	if _, err := c.conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.open = false
	return nil
}

func (c *ConnCoordinator) rollback() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil
	}
	// Rollback must run even if the save's context was cancelled.
	_, err := c.conn.ExecContext(context.Background(), "ROLLBACK")
	c.open = false
	if err == nil || noActiveTransaction(err) {
		return nil
	}

	// The transaction may still be open. Discard the connection so it never
	// goes back to the pool.
	if rawErr := c.conn.Raw(func(any) error { return driver.ErrBadConn }); rawErr != nil && !errors.Is(rawErr, driver.ErrBadConn) {
		return fmt.Errorf("rollback: %w (discard connection: %v)", err, rawErr)
	}
	return fmt.Errorf("rollback: %w", err)
}

// noActiveTransaction reports whether SQLite already ended the transaction,
// as it does after some I/O and disk-full errors.
func noActiveTransaction(err error) bool {
	return strings.Contains(err.Error(), "no transaction is active")
}

var _ persist.TxCoordinator = (*ConnCoordinator)(nil)
