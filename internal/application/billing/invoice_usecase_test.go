package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-suite/internal/application/billing"
	"github.com/jhoicas/erp-suite/internal/application/dto"
	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
	"github.com/jhoicas/erp-suite/internal/domain/tenancy"
	"github.com/jhoicas/erp-suite/internal/infrastructure/memory"
	"github.com/jhoicas/erp-suite/pkg/logger"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

type fixture struct {
	uc       *billing.InvoiceUseCase
	store    *memory.Store
	contacts *memory.ContactRepo
	metrics  *countingMetrics
}

type countingMetrics struct {
	created  int
	payments int
}

func (m *countingMetrics) InvoiceCreated(string) { m.created++ }
func (m *countingMetrics) PaymentUpdated(entity.InvoiceStatus, entity.InvoiceStatus) {
	m.payments++
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	contacts := memory.NewContactRepository(store)
	metrics := &countingMetrics{}
	uc := billing.NewInvoiceUseCase(
		memory.NewTxRunner(store),
		memory.NewInvoiceRepository(store),
		contacts,
		memory.NewPaymentEventRepository(store),
		metrics,
		logger.Nop(),
	)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	ctx := context.Background()
	for _, c := range []*entity.Contact{
		{ID: "cust-a", CompanyID: "A", Type: entity.ContactTypeCustomer, Name: "Acme", Email: "compras@acme.test", IsActive: true},
		{ID: "supp-a", CompanyID: "A", Type: entity.ContactTypeSupplier, Name: "Proveedor", IsActive: true},
		{ID: "old-a", CompanyID: "A", Type: entity.ContactTypeCustomer, Name: "Antiguo", IsActive: false},
		{ID: "cust-b", CompanyID: "B", Type: entity.ContactTypeCustomer, Name: "Beta", IsActive: true},
	} {
		require.NoError(t, contacts.Create(ctx, c))
	}
	return &fixture{uc: uc, store: store, contacts: contacts, metrics: metrics}
}

func seller(companyID string) entity.Principal {
	return entity.Principal{
		UserID: "u-" + companyID, Role: entity.RoleOwner, CompanyID: companyID,
		Modules: entity.ModuleAccess{Sales: true}, IsLoggedIn: true,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func widgetRequest(customerID string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		CustomerID: customerID,
		LineItems:  []dto.LineItemRequest{{ProductName: "Widget", Quantity: d("2"), UnitPrice: d("100"), TaxPercent: d("15")}},
		DueDate:    "2026-04-01",
	}
}

func paid(amount string) dto.UpdateInvoiceRequest {
	v := dto.LenientAmount(d(amount))
	return dto.UpdateInvoiceRequest{PaidAmount: &v}
}

// ─── Escenario completo ──────────────────────────────────────────────────────

func TestInvoice_EscenarioEmisionYPagos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := seller("A")

	created, err := f.uc.Create(ctx, p, widgetRequest("cust-a"))
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", created.InvoiceNumber)

	inv, err := f.uc.Get(ctx, p, created.ID)
	require.NoError(t, err)
	assert.True(t, inv.Subtotal.Equal(d("200")))
	assert.True(t, inv.TotalTax.Equal(d("30")))
	assert.True(t, inv.GrandTotal.Equal(d("230")))
	assert.Equal(t, "unpaid", inv.Status)
	assert.Equal(t, "Acme", inv.CustomerName)
	assert.Equal(t, "compras@acme.test", inv.CustomerEmail)
	assert.Equal(t, "A", inv.CompanyID)
	assert.Equal(t, "u-A", inv.CreatedBy)

	inv, err = f.uc.Update(ctx, p, created.ID, paid("230"))
	require.NoError(t, err)
	assert.Equal(t, "paid", inv.Status)
	assert.True(t, inv.RemainingAmount.IsZero())

	inv, err = f.uc.Update(ctx, p, created.ID, paid("100"))
	require.NoError(t, err)
	assert.Equal(t, "partially_paid", inv.Status)
	assert.True(t, inv.RemainingAmount.Equal(d("130")))

	events, err := f.uc.Payments(ctx, p, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "unpaid", events[0].PreviousStatus)
	assert.Equal(t, "paid", events[0].NewStatus)
	assert.Equal(t, "paid", events[1].PreviousStatus)
	assert.Equal(t, "partially_paid", events[1].NewStatus)

	assert.Equal(t, 1, f.metrics.created)
	assert.Equal(t, 2, f.metrics.payments)
}

func TestInvoice_NumeracionPorEmpresa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.Create(ctx, seller("A"), widgetRequest("cust-a"))
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, seller("A"), first.ID))

	second, err := f.uc.Create(ctx, seller("A"), widgetRequest("cust-a"))
	require.NoError(t, err)
	assert.Equal(t, "INV-000002", second.InvoiceNumber, "el número de una factura borrada no se reutiliza")

	other, err := f.uc.Create(ctx, seller("B"), widgetRequest("cust-b"))
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", other.InvoiceNumber)
}

func TestInvoice_LineasInvalidasNoConsumenNumero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := widgetRequest("cust-a")
	bad.LineItems[0].Quantity = d("0")
	_, err := f.uc.Create(ctx, seller("A"), bad)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	created, err := f.uc.Create(ctx, seller("A"), widgetRequest("cust-a"))
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", created.InvoiceNumber)
}

// ─── Resolución del cliente ─────────────────────────────────────────────────

func TestInvoice_ClienteDebeSerClienteActivoDeLaEmpresa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"supp-a", "old-a", "cust-b", "no-existe"} {
		_, err := f.uc.Create(ctx, seller("A"), widgetRequest(id))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), id)
	}
}

func TestInvoice_SuperAdminNecesitaEmpresaObjetivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := entity.Principal{UserID: "root", Role: entity.RoleSuperAdmin, Modules: entity.ModuleAccess{Sales: true}, IsLoggedIn: true}

	_, err := f.uc.Create(ctx, root, widgetRequest("cust-b"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	req := widgetRequest("cust-b")
	req.CompanyID = "B"
	created, err := f.uc.Create(ctx, root, req)
	require.NoError(t, err)

	inv, err := f.uc.Get(ctx, root, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", inv.CompanyID)
}

func TestInvoice_EmpresaObjetivoIgnoradaParaOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := widgetRequest("cust-b")
	req.CompanyID = "B"
	_, err := f.uc.Create(ctx, seller("A"), req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "el cliente de B no existe dentro de A")
}

// ─── Aislamiento y autorización ─────────────────────────────────────────────

func TestInvoice_OtraEmpresaEsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, seller("A"), widgetRequest("cust-a"))
	require.NoError(t, err)

	_, err = f.uc.Get(ctx, seller("B"), created.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.uc.Update(ctx, seller("B"), created.ID, paid("10"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(f.uc.Delete(ctx, seller("B"), created.ID), domain.ErrNotFound))

	list, err := f.uc.List(ctx, seller("B"), dto.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvoice_SinModuloVentas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := seller("A")
	p.Modules.Sales = false

	_, err := f.uc.List(ctx, p, dto.InvoiceFilter{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.uc.Create(ctx, p, widgetRequest("cust-a"))
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.uc.List(ctx, entity.Anonymous(), dto.InvoiceFilter{})
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestInvoice_SinEmpresaEsForbidden(t *testing.T) {
	f := newFixture(t)
	p := seller("")

	_, err := f.uc.Create(context.Background(), p, widgetRequest("cust-a"))
	assert.True(t, errors.Is(err, domain.ErrNoCompany))
}

// ─── Actualización parcial y borrado ────────────────────────────────────────

func TestInvoice_ActualizarNotasNoTocaPagos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := seller("A")

	created, err := f.uc.Create(ctx, p, widgetRequest("cust-a"))
	require.NoError(t, err)
	_, err = f.uc.Update(ctx, p, created.ID, paid("100"))
	require.NoError(t, err)

	notes := "  pagará el resto en abril "
	due := "2026-05-01"
	inv, err := f.uc.Update(ctx, p, created.ID, dto.UpdateInvoiceRequest{Notes: &notes, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "pagará el resto en abril", inv.Notes)
	assert.Equal(t, 5, int(inv.DueDate.Month()))
	assert.Equal(t, "partially_paid", inv.Status)
	assert.True(t, inv.PaidAmount.Equal(d("100")))

	events, err := f.uc.Payments(ctx, p, created.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestInvoice_BorradoLogicoConservaMontos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := seller("A")

	created, err := f.uc.Create(ctx, p, widgetRequest("cust-a"))
	require.NoError(t, err)
	_, err = f.uc.Update(ctx, p, created.ID, paid("50"))
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, p, created.ID))

	_, err = f.uc.Get(ctx, p, created.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	list, err := f.uc.List(ctx, p, dto.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	stored, err := memory.NewInvoiceRepository(f.store).List(ctx, includeInactive(t, "A"), repository.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].IsActive)
	assert.True(t, stored[0].GrandTotal.Equal(d("230")))
	assert.True(t, stored[0].PaidAmount.Equal(d("50")))
	assert.Equal(t, "INV-000001", stored[0].InvoiceNumber)
}

func TestInvoice_ListaFiltraEstadoYBusqueda(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := seller("A")

	first, err := f.uc.Create(ctx, p, widgetRequest("cust-a"))
	require.NoError(t, err)
	second, err := f.uc.Create(ctx, p, widgetRequest("cust-a"))
	require.NoError(t, err)
	_, err = f.uc.Update(ctx, p, first.ID, paid("230"))
	require.NoError(t, err)

	all, err := f.uc.List(ctx, p, dto.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "más recientes primero")

	paidOnly, err := f.uc.List(ctx, p, dto.InvoiceFilter{Status: "paid"})
	require.NoError(t, err)
	require.Len(t, paidOnly, 1)
	assert.Equal(t, first.ID, paidOnly[0].ID)

	unknown, err := f.uc.List(ctx, p, dto.InvoiceFilter{Status: "anulada"})
	require.NoError(t, err)
	assert.Len(t, unknown, 2, "un estado desconocido no filtra")

	byNumber, err := f.uc.List(ctx, p, dto.InvoiceFilter{Search: "inv-000002"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, second.ID, byNumber[0].ID)

	byEmail, err := f.uc.List(ctx, p, dto.InvoiceFilter{Search: "ACME.TEST"})
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)

	regex, err := f.uc.List(ctx, p, dto.InvoiceFilter{Search: "INV-.*"})
	require.NoError(t, err)
	assert.Empty(t, regex, "la búsqueda es literal")
}

func includeInactive(t *testing.T, companyID string) tenancy.Scope {
	t.Helper()
	s, err := tenancy.Build(seller(companyID), tenancy.IncludeInactive())
	require.NoError(t, err)
	return s
}

// lockRecorder envuelve el runner en memoria y cuenta cómo se lee la factura
// dentro de la transacción. beforeLock simula un pago confirmado por otra
// petición justo antes de que la actualización obtenga el lock.
type lockRecorder struct {
	inner      *memory.TxRunner
	plain      int
	locked     int
	beforeLock func()
}

func (r *lockRecorder) RunSales(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	sequenceRepo repository.InvoiceSequenceRepository,
	eventRepo repository.PaymentEventRepository,
) error) error {
	return r.inner.RunSales(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		sequenceRepo repository.InvoiceSequenceRepository,
		eventRepo repository.PaymentEventRepository,
	) error {
		return fn(&recordingInvoices{InvoiceRepository: invoiceRepo, rec: r}, sequenceRepo, eventRepo)
	})
}

type recordingInvoices struct {
	repository.InvoiceRepository
	rec *lockRecorder
}

func (r *recordingInvoices) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*entity.Invoice, error) {
	r.rec.plain++
	return r.InvoiceRepository.GetByID(ctx, scope, id)
}

func (r *recordingInvoices) GetByIDForUpdate(ctx context.Context, scope tenancy.Scope, id string) (*entity.Invoice, error) {
	r.rec.locked++
	if hook := r.rec.beforeLock; hook != nil {
		r.rec.beforeLock = nil
		hook()
	}
	return r.InvoiceRepository.GetByIDForUpdate(ctx, scope, id)
}

func TestInvoice_ActualizacionLeeConLockYNoPisaPagoConcurrente(t *testing.T) {
	store := memory.NewStore()
	contacts := memory.NewContactRepository(store)
	invoices := memory.NewInvoiceRepository(store)
	rec := &lockRecorder{inner: memory.NewTxRunner(store)}
	uc := billing.NewInvoiceUseCase(rec, invoices, contacts, memory.NewPaymentEventRepository(store), nil, logger.Nop())

	ctx := context.Background()
	require.NoError(t, contacts.Create(ctx, &entity.Contact{
		ID: "cust-a", CompanyID: "A", Type: entity.ContactTypeCustomer, Name: "Acme", IsActive: true,
	}))
	p := seller("A")
	created, err := uc.Create(ctx, p, widgetRequest("cust-a"))
	require.NoError(t, err)

	scope, err := tenancy.Build(p)
	require.NoError(t, err)
	rec.plain, rec.locked = 0, 0
	rec.beforeLock = func() {
		inv, err := invoices.GetByID(ctx, scope, created.ID)
		require.NoError(t, err)
		inv.PaidAmount = d("230")
		inv.RemainingAmount = decimal.Zero
		inv.Status = entity.InvoiceStatusPaid
		require.NoError(t, invoices.Update(ctx, scope, inv))
	}

	notes := "entregado"
	inv, err := uc.Update(ctx, p, created.ID, dto.UpdateInvoiceRequest{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.locked)
	assert.Zero(t, rec.plain, "la lectura previa a escribir debe tomar el lock")
	assert.Equal(t, "entregado", inv.Notes)
	assert.Equal(t, "paid", inv.Status)
	assert.True(t, inv.PaidAmount.Equal(d("230")))

	stored, err := invoices.GetByID(ctx, scope, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, stored.Status)
	assert.True(t, stored.RemainingAmount.IsZero())
}
