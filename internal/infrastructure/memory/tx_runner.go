package memory

import (
	"context"

	"github.com/jhoicas/erp-suite/internal/application/billing"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

var _ billing.SalesTxRunner = (*TxRunner)(nil)

// TxRunner serializa las operaciones de ventas sobre el store. No hay rollback:
// un número consumido por una emisión fallida queda como hueco en la secuencia.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunSales ejecuta fn con los repos de ventas del store.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	sequenceRepo repository.InvoiceSequenceRepository,
	eventRepo repository.PaymentEventRepository,
) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	return fn(NewInvoiceRepository(r.s), NewSequenceRepository(r.s), NewPaymentEventRepository(r.s))
}
