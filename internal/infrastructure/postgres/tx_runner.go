package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/erp-suite/internal/application/billing"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

var _ billing.SalesTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner con el pool. timeout acota cada sentencia dentro de la tx.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, timeout: timeout}
}

// RunSales inicia una transacción con los repos de ventas y hace Commit o Rollback.
// Un número de factura consumido por una emisión fallida se devuelve con el Rollback.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	sequenceRepo repository.InvoiceSequenceRepository,
	eventRepo repository.PaymentEventRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	invoiceRepo := NewInvoiceRepository(tx, r.timeout)
	sequenceRepo := NewSequenceRepository(tx, r.timeout)
	eventRepo := NewPaymentEventRepository(tx, r.timeout)

	if err := fn(invoiceRepo, sequenceRepo, eventRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}
