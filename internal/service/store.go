package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pradipta/bankstore-go/internal/domain"
	"github.com/pradipta/bankstore-go/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var storeTracer = otel.Tracer("service/store")

// StoreService owns the global item catalog, the buyer and seller
// directories, and the append-only purchase ledger. Buyers and
// sellers are ephemeral per run; only items and purchases persist.
type StoreService struct {
	mu sync.Mutex

	items     map[int32]*domain.Item
	buyers    map[int32]*domain.Buyer
	sellers   map[int32]*domain.Seller
	purchases []domain.Purchase

	bank *BankService

	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewStoreService creates an empty store. The bank reference resolves
// buyer account links at call time; the store never owns accounts.
func NewStoreService(bank *BankService, metrics *observability.Metrics, logger *zap.Logger) *StoreService {
	return &StoreService{
		items:   make(map[int32]*domain.Item),
		buyers:  make(map[int32]*domain.Buyer),
		sellers: make(map[int32]*domain.Seller),
		bank:    bank,
		metrics: metrics,
		logger:  logger,
	}
}

// Hydrate replaces catalog and ledger state with a loaded snapshot.
// Buyers and sellers are not in the blob and start empty.
func (s *StoreService) Hydrate(snap domain.StoreSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int32]*domain.Item, len(snap.Items))
	for _, i := range snap.Items {
		item := i
		s.items[i.ID] = &item
	}
	s.purchases = append([]domain.Purchase(nil), snap.Purchases...)
}

// Snapshot copies the persistable store state out.
func (s *StoreService) Snapshot() domain.StoreSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.StoreSnapshot{
		Purchases: append([]domain.Purchase(nil), s.purchases...),
	}
	snap.Items = make([]domain.Item, 0, len(s.items))
	for _, i := range s.items {
		snap.Items = append(snap.Items, *i)
	}
	sort.Slice(snap.Items, func(i, j int) bool { return snap.Items[i].ID < snap.Items[j].ID })
	return snap
}

// ============================================================
// Item catalog
// ============================================================

// AddItem inserts a new catalog item; duplicate ids are rejected.
func (s *StoreService) AddItem(ctx context.Context, item domain.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return false
	}
	if item.LastRestock.IsZero() {
		item.LastRestock = time.Now()
	}
	cp := item
	s.items[item.ID] = &cp
	return true
}

// FindItem returns a copy of the item, if present.
func (s *StoreService) FindItem(ctx context.Context, itemID int32) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.items[itemID]
	if !ok {
		return domain.Item{}, false
	}
	return *i, true
}

// Restock adds qty units to an item's stock.
func (s *StoreService) Restock(ctx context.Context, itemID, qty int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.items[itemID]
	if !ok || qty <= 0 {
		return false
	}
	i.IncreaseStock(qty, time.Now())
	return true
}

// SetPrice updates an item's price; negative prices are rejected.
func (s *StoreService) SetPrice(ctx context.Context, itemID int32, price domain.Money) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.items[itemID]
	if !ok || price < 0 {
		return false
	}
	i.Price = price
	return true
}

// DeleteItem removes an item from the global catalog.
func (s *StoreService) DeleteItem(ctx context.Context, itemID int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return false
	}
	delete(s.items, itemID)
	return true
}

// ============================================================
// Users
// ============================================================

// RegisterBuyer adds a buyer to the directory; duplicate ids rejected.
func (s *StoreService) RegisterBuyer(ctx context.Context, id int32, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.buyers[id]; exists {
		return false
	}
	s.buyers[id] = &domain.Buyer{Profile: domain.Profile{ID: id, Name: name}}
	return true
}

// RegisterSeller adds a seller to the directory; duplicate ids rejected.
func (s *StoreService) RegisterSeller(ctx context.Context, id int32, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sellers[id]; exists {
		return false
	}
	s.sellers[id] = &domain.Seller{Profile: domain.Profile{ID: id, Name: name}}
	return true
}

// LinkBuyerAccount attaches a bank account number to a buyer. The
// account must exist in the bank at link time; the bank keeps
// exclusive ownership of the account itself.
func (s *StoreService) LinkBuyerAccount(ctx context.Context, buyerID int32, accountNumber string) bool {
	if _, ok := s.bank.FindAccount(ctx, accountNumber); !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buyers[buyerID]
	if !ok {
		return false
	}
	b.AccountNumber = accountNumber
	return true
}

// FindBuyer returns a copy of the buyer, if registered.
func (s *StoreService) FindBuyer(ctx context.Context, buyerID int32) (domain.Buyer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buyers[buyerID]
	if !ok {
		return domain.Buyer{}, false
	}
	return copyBuyer(b), true
}

// FindSeller returns a copy of the seller, if registered.
func (s *StoreService) FindSeller(ctx context.Context, sellerID int32) (domain.Seller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[sellerID]
	if !ok {
		return domain.Seller{}, false
	}
	return copySeller(sl), true
}

// ============================================================
// Purchase lifecycle
// ============================================================

// ProcessPurchase advances a PENDING purchase into the ledger: the
// target item must have stock, which is decremented by one while the
// sold count grows by one. The record is appended to the global
// ledger and to the buyer's and seller's private histories when they
// are registered. A rejected purchase leaves no trace anywhere.
// Status stays PENDING; advancing to PAID/COMPLETED is the caller's
// decision (payment confirmation is external). The recorded purchase
// is returned on success.
func (s *StoreService) ProcessPurchase(ctx context.Context, p domain.Purchase) (domain.Purchase, bool) {
	_, span := storeTracer.Start(ctx, "StoreService.ProcessPurchase")
	defer span.End()
	span.SetAttributes(attribute.Int("item.id", int(p.ItemID)))

	start := time.Now()
	defer func() { s.metrics.RecordOpDuration("store.process_purchase", time.Since(start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[p.ItemID]
	if p.Status != domain.StatusPending || !ok || !item.DecreaseStock(1) {
		s.metrics.IncrPurchase("rejected")
		s.logger.Info("purchase rejected",
			zap.Int32("purchase_id", p.ID),
			zap.Int32("item_id", p.ItemID),
			zap.Bool("item_exists", ok),
			zap.String("status", p.Status.String()),
		)
		return domain.Purchase{}, false
	}

	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	s.purchases = append(s.purchases, p)
	if b, ok := s.buyers[p.BuyerID]; ok {
		b.AddPurchase(p)
	}
	if sl, ok := s.sellers[p.SellerID]; ok {
		sl.AddPurchase(p)
	}

	s.metrics.IncrPurchase("processed")
	s.logger.Info("purchase processed",
		zap.Int32("purchase_id", p.ID),
		zap.Int32("buyer_id", p.BuyerID),
		zap.Int32("seller_id", p.SellerID),
		zap.Int32("item_id", p.ItemID),
		zap.String("amount", p.Amount.String()),
	)
	return p, true
}

// AdvancePurchase moves a ledger purchase to the next lifecycle state.
// Only PENDING→PAID, PAID→COMPLETED and PENDING|PAID→CANCELED are
// legal; terminal purchases never change. The new status propagates
// to the buyer's and seller's private copies so their analytics agree
// with the ledger.
func (s *StoreService) AdvancePurchase(ctx context.Context, purchaseID int32, next domain.PurchaseStatus) error {
	_, span := storeTracer.Start(ctx, "StoreService.AdvancePurchase")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	for idx := range s.purchases {
		if s.purchases[idx].ID != purchaseID {
			continue
		}
		current := s.purchases[idx].Status
		if !current.CanTransitionTo(next) {
			return &domain.ErrInvalidTransition{From: current, To: next}
		}
		s.purchases[idx].Status = next
		s.propagateStatusLocked(purchaseID, next)
		s.logger.Info("purchase status advanced",
			zap.Int32("purchase_id", purchaseID),
			zap.String("from", current.String()),
			zap.String("to", next.String()),
		)
		return nil
	}
	return &domain.ErrNotFound{Resource: "purchase", ID: itoa32(purchaseID)}
}

// CancelPurchase cancels a non-terminal purchase.
func (s *StoreService) CancelPurchase(ctx context.Context, purchaseID int32) error {
	return s.AdvancePurchase(ctx, purchaseID, domain.StatusCanceled)
}

func (s *StoreService) propagateStatusLocked(purchaseID int32, status domain.PurchaseStatus) {
	for _, b := range s.buyers {
		for idx := range b.Purchases {
			if b.Purchases[idx].ID == purchaseID {
				b.Purchases[idx].Status = status
			}
		}
	}
	for _, sl := range s.sellers {
		for idx := range sl.Purchases {
			if sl.Purchases[idx].ID == purchaseID {
				sl.Purchases[idx].Status = status
			}
		}
	}
}

// ============================================================
// Analytics
// ============================================================

// TransactionsInWindow returns ledger purchases at most days*24 whole
// hours old, in ledger order.
func (s *StoreService) TransactionsInWindow(ctx context.Context, days int) []domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inWindowLocked(time.Now(), days)
}

func (s *StoreService) inWindowLocked(now time.Time, days int) []domain.Purchase {
	recent := make([]domain.Purchase, 0)
	for _, p := range s.purchases {
		if p.WithinDays(now, days) {
			recent = append(recent, p)
		}
	}
	return recent
}

// PendingPurchases returns purchases awaiting fulfillment. Note: this
// deliberately filters on PAID, not PENDING: paid-but-not-completed
// is what "pending" means to fulfillment, and the filter is part of
// the observable contract.
func (s *StoreService) PendingPurchases(ctx context.Context) []domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

func (s *StoreService) pendingLocked() []domain.Purchase {
	pending := make([]domain.Purchase, 0)
	for _, p := range s.purchases {
		if p.Status == domain.StatusPaid {
			pending = append(pending, p)
		}
	}
	return pending
}

// MostSoldItems ranks catalog items by sold count, descending, and
// returns at most n.
func (s *StoreService) MostSoldItems(ctx context.Context, n int) []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mostSoldLocked(n)
}

func (s *StoreService) mostSoldLocked(n int) []domain.Item {
	items := make([]domain.Item, 0, len(s.items))
	for _, i := range s.items {
		items = append(items, *i)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	sort.SliceStable(items, func(i, j int) bool { return items[i].SoldCount > items[j].SoldCount })
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// MostActiveUsersToday returns the single buyer and single seller
// with the most last-24h purchases touching them. A nil result means
// nobody traded today on that side.
func (s *StoreService) MostActiveUsersToday(ctx context.Context) (*domain.Buyer, *domain.Seller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var topBuyer *domain.Buyer
	var topSeller *domain.Seller
	maxBuyer, maxSeller := 0, 0

	for _, b := range s.buyers {
		count := s.todayPurchasesLocked(now, b.ID, true)
		if count > maxBuyer {
			maxBuyer = count
			cp := copyBuyer(b)
			topBuyer = &cp
		}
	}
	for _, sl := range s.sellers {
		count := s.todayPurchasesLocked(now, sl.ID, false)
		if count > maxSeller {
			maxSeller = count
			cp := copySeller(sl)
			topSeller = &cp
		}
	}
	return topBuyer, topSeller
}

func (s *StoreService) todayPurchasesLocked(now time.Time, userID int32, isBuyer bool) int {
	count := 0
	for _, p := range s.purchases {
		if !p.WithinDays(now, 1) {
			continue
		}
		if (isBuyer && p.BuyerID == userID) || (!isBuyer && p.SellerID == userID) {
			count++
		}
	}
	return count
}

func copyBuyer(b *domain.Buyer) domain.Buyer {
	cp := *b
	cp.Purchases = append([]domain.Purchase(nil), b.Purchases...)
	return cp
}

func copySeller(sl *domain.Seller) domain.Seller {
	cp := *sl
	cp.Items = append([]domain.Item(nil), sl.Items...)
	cp.Purchases = append([]domain.Purchase(nil), sl.Purchases...)
	return cp
}
