package txn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	// DefaultMaxAttempts bounds how many times a unit of work runs before
	// giving up on transient conflicts.
	DefaultMaxAttempts = 3
	// DefaultRetryDelay is multiplied by the attempt number (linear backoff).
	DefaultRetryDelay = 100 * time.Millisecond
)

// ErrReintentosAgotados wraps the last transient error after exhausting all
// attempts. Callers should surface it as temporary unavailability, not as a
// business rejection.
type ErrReintentosAgotados struct {
	Intentos int
	Ultimo   error
}

func (e *ErrReintentosAgotados) Error() string {
	return fmt.Sprintf("transaccion abortada tras %d intentos: %v", e.Intentos, e.Ultimo)
}

func (e *ErrReintentosAgotados) Unwrap() error { return e.Ultimo }

// Coordinator runs units of work inside SERIALIZABLE database transactions and
// retries the whole unit when the store reports a transient conflict. A unit
// must be side-effect-free outside the transaction: nothing written in an
// aborted attempt survives, so re-running it is safe.
type Coordinator struct {
	db          *gorm.DB
	maxAttempts int
	retryDelay  time.Duration
	opTimeout   time.Duration
}

// New returns a Coordinator with default retry policy. A nil db is allowed:
// units then run directly without a transaction (unit test mode, mirroring
// the nil-db passthrough used across the services).
func New(db *gorm.DB) *Coordinator {
	return &Coordinator{db: db, maxAttempts: DefaultMaxAttempts, retryDelay: DefaultRetryDelay}
}

// WithPolicy overrides max attempts and base delay.
func (c *Coordinator) WithPolicy(maxAttempts int, retryDelay time.Duration) *Coordinator {
	if maxAttempts > 0 {
		c.maxAttempts = maxAttempts
	}
	if retryDelay > 0 {
		c.retryDelay = retryDelay
	}
	return c
}

// WithTimeout bounds each attempt of a unit of work. When the deadline fires
// the store aborts the transaction with context.DeadlineExceeded, which
// IsTransient classifies as retryable. Zero disables the bound.
func (c *Coordinator) WithTimeout(d time.Duration) *Coordinator {
	if d > 0 {
		c.opTimeout = d
	}
	return c
}

// boundCtx applies the per-attempt timeout, if configured.
func (c *Coordinator) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout > 0 {
		return context.WithTimeout(ctx, c.opTimeout)
	}
	return ctx, func() {}
}

// Run executes fn inside a single SERIALIZABLE transaction, bounded by the
// configured operation timeout. On error the transaction is rolled back and
// the original error is returned untouched.
func (c *Coordinator) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if c.db == nil {
		return fn(nil)
	}
	ctx, cancel := c.boundCtx(ctx)
	defer cancel()
	return c.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// RunWithRetry executes fn via Run up to maxAttempts times. Only errors
// classified as transient by IsTransient are retried, with a linear backoff
// of attempt × retryDelay between attempts. Any other error — validation,
// insufficient stock, not found — is returned immediately on first occurrence.
func (c *Coordinator) RunWithRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var last error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := c.Run(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		last = err
		if attempt < c.maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}
	}
	return &ErrReintentosAgotados{Intentos: c.maxAttempts, Ultimo: last}
}

// PostgreSQL SQLSTATE codes that signal a conflict safe to retry.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// IsTransient reports whether err is a storage-level conflict that is safe to
// retry blindly. Classification is structural (driver error codes), never by
// message substring:
//   - serialization failures and deadlocks under SERIALIZABLE isolation,
//   - a unique violation on the venta number index (random suffix collision —
//     the retry regenerates the number),
//   - storage operation timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return true
		case codeUniqueViolation:
			return pgErr.ConstraintName == "idx_ventas_numero_venta"
		}
		return false
	}
	return errors.Is(err, context.DeadlineExceeded)
}
