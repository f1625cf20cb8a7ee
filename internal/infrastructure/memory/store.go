// Package memory implementa los puertos de persistencia en memoria del proceso.
// Se usa con STORE_DRIVER=memory y como doble de pruebas en use cases y handlers.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/erp-suite/internal/domain"
	"github.com/jhoicas/erp-suite/internal/domain/entity"
	"github.com/jhoicas/erp-suite/internal/domain/repository"
)

type row[T any] struct {
	v   T
	seq uint64
}

type table[T any] struct {
	rows map[string]*row[T]
	next uint64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*row[T])}
}

func (t *table[T]) insert(id string, v T) {
	t.next++
	t.rows[id] = &row[T]{v: v, seq: t.next}
}

// sorted devuelve las filas que cumplen keep, de la más reciente a la más antigua
// según createdAt (y orden de inserción en empates).
func (t *table[T]) sorted(keep func(T) bool, createdAt func(T) time.Time) []T {
	rows := make([]*row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r.v) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ci, cj := createdAt(rows[i].v), createdAt(rows[j].v)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.v
	}
	return out
}

func paginate[T any](items []T, p repository.Page) []T {
	if p.Offset > 0 {
		if p.Offset >= len(items) {
			return items[:0]
		}
		items = items[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

// Store agrupa las tablas en memoria. Seguro para uso concurrente.
type Store struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	companies *table[*entity.Company]
	users     *table[*entity.User]
	contacts  *table[*entity.Contact]
	products  *table[*entity.Product]
	invoices  *table[*entity.Invoice]
	sequences map[string]int64
	events    []*entity.PaymentEvent
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		companies: newTable[*entity.Company](),
		users:     newTable[*entity.User](),
		contacts:  newTable[*entity.Contact](),
		products:  newTable[*entity.Product](),
		invoices:  newTable[*entity.Invoice](),
		sequences: make(map[string]int64),
	}
}

// ctxErr traduce la cancelación del contexto al error de dominio correspondiente.
func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}
