package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/jackc/pgx/v5"
)

// fakeStore is an in-memory stand-in for the seller_accounts, wallet_ledger
// and orders tables. The fake TxRunner serializes transactions with a single
// mutex, modeling the row-lock serialization the real store provides, and
// restores a snapshot when the transaction function fails so rollback
// semantics hold.
type fakeStore struct {
	mu       sync.Mutex
	balances map[int64]int64
	entries  []*domain.LedgerEntry
	nextID   int64
	orders   map[string]*domain.Order
	items    map[string][]*domain.OrderItem

	failAppend bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances: make(map[int64]int64),
		orders:   make(map[string]*domain.Order),
		items:    make(map[string][]*domain.OrderItem),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	snap := newFakeStore()
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for _, e := range s.entries {
		cp := *e
		snap.entries = append(snap.entries, &cp)
	}
	snap.nextID = s.nextID
	for k, v := range s.orders {
		cp := *v
		snap.orders[k] = &cp
	}
	for k, list := range s.items {
		for _, it := range list {
			cp := *it
			snap.items[k] = append(snap.items[k], &cp)
		}
	}
	return snap
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.balances = snap.balances
	s.entries = snap.entries
	s.nextID = snap.nextID
	s.orders = snap.orders
	s.items = snap.items
}

// approvedSum recomputes the balance invariant from the ledger.
func (s *fakeStore) approvedSum(sellerID int64) int64 {
	var sum int64
	for _, e := range s.entries {
		if e.SellerID == sellerID && e.Approval == domain.ApprovalApproved {
			sum += e.Amount
		}
	}
	return sum
}

type fakeTxRunner struct {
	store *fakeStore
}

func (r *fakeTxRunner) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snap := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type fakeAccountRepo struct {
	store *fakeStore
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, sellerID int64) (*domain.SellerAccount, error) {
	b, ok := f.store.balances[sellerID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &domain.SellerAccount{ID: sellerID, Balance: b}, nil
}

func (f *fakeAccountRepo) GetBalance(ctx context.Context, sellerID int64) (int64, error) {
	return f.store.balances[sellerID], nil
}

func (f *fakeAccountRepo) GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, sellerID int64) (int64, error) {
	b, ok := f.store.balances[sellerID]
	if !ok {
		return 0, xerrors.ErrNotFound
	}
	return b, nil
}

func (f *fakeAccountRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, sellerID int64, delta int64) (int64, error) {
	b, ok := f.store.balances[sellerID]
	if !ok {
		return 0, xerrors.ErrNotFound
	}
	newBalance := b + delta
	if newBalance < 0 {
		return 0, xerrors.ErrInsufficientBalance
	}
	f.store.balances[sellerID] = newBalance
	return newBalance, nil
}

type fakeLedgerRepo struct {
	store *fakeStore
}

func (f *fakeLedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	if f.store.failAppend {
		return errors.New("connection reset by peer")
	}
	f.store.nextID++
	e.ID = f.store.nextID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	f.store.entries = append(f.store.entries, &cp)
	return nil
}

func (f *fakeLedgerRepo) find(id int64) *domain.LedgerEntry {
	for _, e := range f.store.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (f *fakeLedgerRepo) GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	if e := f.find(id); e != nil {
		cp := *e
		return &cp, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeLedgerRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.LedgerEntry, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeLedgerRepo) ListBySeller(ctx context.Context, sellerID int64, filter *domain.LedgerFilter) ([]*domain.LedgerEntry, error) {
	var out []*domain.LedgerEntry
	for i := len(f.store.entries) - 1; i >= 0; i-- {
		e := f.store.entries[i]
		if e.SellerID != sellerID {
			continue
		}
		if filter != nil {
			if filter.Approval != nil && e.Approval != *filter.Approval {
				continue
			}
			if filter.Sign == domain.SignPositive && e.Amount <= 0 {
				continue
			}
			if filter.Sign == domain.SignNegative && e.Amount >= 0 {
				continue
			}
			if filter.Since != nil && e.CreatedAt.Before(*filter.Since) {
				continue
			}
		}
		cp := *e
		out = append(out, &cp)
		if filter != nil && filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) SumApproved(ctx context.Context, sellerID int64, sign domain.EntrySign, since *time.Time) (int64, error) {
	var sum int64
	for _, e := range f.store.entries {
		if e.SellerID != sellerID || e.Approval != domain.ApprovalApproved {
			continue
		}
		if sign == domain.SignPositive && e.Amount <= 0 {
			continue
		}
		if sign == domain.SignNegative && e.Amount >= 0 {
			continue
		}
		if since != nil && e.CreatedAt.Before(*since) {
			continue
		}
		sum += e.Amount
	}
	return sum, nil
}

func (f *fakeLedgerRepo) SumWithdrawnToday(ctx context.Context, tx pgx.Tx, sellerID int64, since time.Time) (int64, error) {
	var sum int64
	for _, e := range f.store.entries {
		if e.SellerID == sellerID && e.Amount < 0 &&
			e.Approval >= domain.ApprovalPending && !e.CreatedAt.Before(since) {
			sum += -e.Amount
		}
	}
	return sum, nil
}

func (f *fakeLedgerRepo) SumPendingHold(ctx context.Context, tx pgx.Tx, sellerID int64) (int64, error) {
	var sum int64
	for _, e := range f.store.entries {
		if e.SellerID == sellerID && e.Amount < 0 && e.Approval == domain.ApprovalPending {
			sum += -e.Amount
		}
	}
	return sum, nil
}

func (f *fakeLedgerRepo) UpdateApproval(ctx context.Context, tx pgx.Tx, id int64, status domain.ApprovalStatus) error {
	e := f.find(id)
	if e == nil {
		return xerrors.ErrNotFound
	}
	if e.Approval != domain.ApprovalPending {
		return xerrors.ErrEntryNotPending
	}
	e.Approval = status
	if status == domain.ApprovalApproved {
		now := time.Now()
		e.ApprovedAt = &now
	}
	return nil
}

type fakeOrderRepo struct {
	store *fakeStore
}

func (f *fakeOrderRepo) GetForSeller(ctx context.Context, orderID string, sellerID int64) (*domain.Order, error) {
	o, ok := f.store.orders[orderID]
	if !ok || o.SellerID != sellerID {
		return nil, xerrors.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) GetForSellerWithLock(ctx context.Context, tx pgx.Tx, orderID string, sellerID int64) (*domain.Order, error) {
	return f.GetForSeller(ctx, orderID, sellerID)
}

func (f *fakeOrderRepo) UpdateDeliveryStatus(ctx context.Context, tx pgx.Tx, orderID string, status domain.DeliveryStatus, trackingCode *string) error {
	o, ok := f.store.orders[orderID]
	if !ok {
		return xerrors.ErrNotFound
	}
	o.DeliveryStatus = status
	if trackingCode != nil {
		o.TrackingCode = trackingCode
	}
	for _, it := range f.store.items[orderID] {
		it.DeliveryStatus = status
	}
	return nil
}

func (f *fakeOrderRepo) ListItems(ctx context.Context, orderID string) ([]*domain.OrderItem, error) {
	var out []*domain.OrderItem
	for _, it := range f.store.items[orderID] {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrderRepo) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range f.store.orders {
		if o.SellerID == sellerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}
