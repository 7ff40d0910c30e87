package billing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/inventory"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes for service tests.

type fakeSeriesRepo struct {
	mu     sync.Mutex
	series map[uuid.UUID]*billing.DocumentSeries

	// conflicts makes the next N UpdateSequence calls fail with
	// ErrConcurrencyConflict while advancing the stored counter, simulating
	// a competing allocator winning the race.
	conflicts int
}

func newFakeSeriesRepo() *fakeSeriesRepo {
	return &fakeSeriesRepo{series: make(map[uuid.UUID]*billing.DocumentSeries)}
}

func (r *fakeSeriesRepo) add(s *billing.DocumentSeries) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[s.ID] = s
}

func (r *fakeSeriesRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.DocumentSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[id]
	if !ok {
		return nil, nil
	}
	clone := *s
	clone.Sequences = make(map[billing.DocumentType]int64, len(s.Sequences))
	for k, v := range s.Sequences {
		clone.Sequences[k] = v
	}
	return &clone, nil
}

func (r *fakeSeriesRepo) FindByCode(_ context.Context, code string, fiscalYear int) (*billing.DocumentSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.series {
		if s.Code == code && s.FiscalYear == fiscalYear {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSeriesRepo) FindAll(_ context.Context, _ shared.Filter) ([]billing.DocumentSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]billing.DocumentSeries, 0, len(r.series))
	for _, s := range r.series {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSeriesRepo) Save(_ context.Context, series *billing.DocumentSeries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[series.ID] = series
	return nil
}

func (r *fakeSeriesRepo) UpdateSequence(_ context.Context, seriesID uuid.UUID, docType billing.DocumentType, oldValue, newValue int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[seriesID]
	if !ok {
		return shared.ErrSeriesNotFound
	}
	if s.Sequences == nil {
		s.Sequences = make(map[billing.DocumentType]int64)
	}
	if r.conflicts > 0 {
		r.conflicts--
		s.Sequences[docType]++
		return shared.ErrConcurrencyConflict
	}
	if s.Sequences[docType] != oldValue {
		return shared.ErrConcurrencyConflict
	}
	s.Sequences[docType] = newValue
	return nil
}

type fakeDocumentRepo struct {
	mu             sync.Mutex
	docs           map[uuid.UUID]*billing.FiscalDocument
	certifiedOrder []uuid.UUID
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*billing.FiscalDocument)}
}

func (r *fakeDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[id], nil
}

func (r *fakeDocumentRepo) FindByNumber(_ context.Context, number string) (*billing.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.Number == number {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(_ context.Context, filter billing.DocumentFilter) ([]billing.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.FiscalDocument
	for _, d := range r.docs {
		if matchesFilter(d, filter) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) FindBySeriesAndType(ctx context.Context, seriesID uuid.UUID, docType billing.DocumentType, filter billing.DocumentFilter) ([]billing.FiscalDocument, error) {
	filter.SeriesID = &seriesID
	filter.Type = &docType
	return r.FindAll(ctx, filter)
}

func (r *fakeDocumentRepo) FindBySource(_ context.Context, sourceID uuid.UUID) ([]billing.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.FiscalDocument
	for _, d := range r.docs {
		if d.SourceDocumentID != nil && *d.SourceDocumentID == sourceID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) FindDescendants(_ context.Context, rootID uuid.UUID) ([]billing.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frontier := map[uuid.UUID]bool{rootID: true}
	seen := map[uuid.UUID]bool{}
	var out []billing.FiscalDocument
	for len(frontier) > 0 {
		next := map[uuid.UUID]bool{}
		for _, d := range r.docs {
			if seen[d.ID] || d.SourceDocumentID == nil || !frontier[*d.SourceDocumentID] {
				continue
			}
			seen[d.ID] = true
			next[d.ID] = true
			out = append(out, *d)
		}
		frontier = next
	}
	return out, nil
}

func (r *fakeDocumentRepo) LatestCertified(_ context.Context, seriesID uuid.UUID, docType billing.DocumentType) (*billing.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.certifiedOrder) - 1; i >= 0; i-- {
		d := r.docs[r.certifiedOrder[i]]
		if d != nil && d.SeriesID == seriesID && d.Type == docType {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) Save(_ context.Context, doc *billing.FiscalDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.IsCertified() && !r.inCertifiedOrder(doc.ID) {
		r.certifiedOrder = append(r.certifiedOrder, doc.ID)
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) inCertifiedOrder(id uuid.UUID) bool {
	for _, known := range r.certifiedOrder {
		if known == id {
			return true
		}
	}
	return false
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[id]; ok && d.IsCertified() {
		return shared.ErrImmutableDocument
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, filter billing.DocumentFilter) (int64, error) {
	docs, err := r.FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func matchesFilter(d *billing.FiscalDocument, filter billing.DocumentFilter) bool {
	if filter.Type != nil && d.Type != *filter.Type {
		return false
	}
	if filter.Status != nil && d.Status != *filter.Status {
		return false
	}
	if filter.SeriesID != nil && d.SeriesID != *filter.SeriesID {
		return false
	}
	if filter.Certified != nil && d.IsCertified() != *filter.Certified {
		return false
	}
	return true
}

type fakeRegisterRepo struct {
	mu        sync.Mutex
	balances  map[uuid.UUID]decimal.Decimal
	adjustErr error
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{balances: make(map[uuid.UUID]decimal.Decimal)}
}

func (r *fakeRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*treasury.CashRegister, error) {
	register, err := treasury.NewCashRegister("fake")
	if err != nil {
		return nil, err
	}
	register.ID = id
	r.mu.Lock()
	register.Balance = r.balances[id]
	r.mu.Unlock()
	return register, nil
}

func (r *fakeRegisterRepo) Save(_ context.Context, register *treasury.CashRegister) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[register.ID] = register.Balance
	return nil
}

func (r *fakeRegisterRepo) AdjustBalance(_ context.Context, registerID uuid.UUID, delta decimal.Decimal) error {
	if r.adjustErr != nil {
		return r.adjustErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[registerID] = r.balances[registerID].Add(delta)
	return nil
}

func (r *fakeRegisterRepo) balance(id uuid.UUID) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[id]
}

type fakeCashPostingRepo struct {
	mu       sync.Mutex
	postings []*treasury.CashPosting
}

func (r *fakeCashPostingRepo) Record(_ context.Context, posting *treasury.CashPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postings = append(r.postings, posting)
	return nil
}

func (r *fakeCashPostingRepo) FindByDocument(_ context.Context, documentNumber string) ([]treasury.CashPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []treasury.CashPosting
	for _, p := range r.postings {
		if p.DocumentNumber == documentNumber {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeCashPostingRepo) FindByRegister(_ context.Context, registerID uuid.UUID) ([]treasury.CashPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []treasury.CashPosting
	for _, p := range r.postings {
		if p.RegisterID == registerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []*inventory.StockMovement
	recordErr error
}

func (r *fakeMovementRepo) Record(_ context.Context, movement *inventory.StockMovement) error {
	if r.recordErr != nil {
		return r.recordErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, movement)
	return nil
}

func (r *fakeMovementRepo) FindByDocument(_ context.Context, documentNumber string) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.DocumentNumber == documentNumber {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.WarehouseID == warehouseID {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

func (s *fakeIdempotencyStore) markedKeys(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			count++
		}
	}
	return count
}
