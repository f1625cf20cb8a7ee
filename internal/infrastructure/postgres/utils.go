package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/erp-suite/internal/domain"
)

// DefaultTimeout límite por operación cuando el repositorio se construye sin uno.
const DefaultTimeout = 5 * time.Second

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation referencia a una fila inexistente (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
}

// storeErr traduce errores del driver a errores de dominio y añade la operación.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isTimeout(err):
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, domain.Invalid("referencia inexistente"))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// withTimeout acota una llamada al almacenamiento. d <= 0 usa DefaultTimeout.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
