package service

import (
	"context"
	"strconv"
	"time"

	"github.com/pradipta/bankstore-go/internal/domain"
)

// Facade operations over registered buyers and sellers. Buyer money
// operations delegate to the bank through the buyer's account-number
// link; nothing here touches an account directly.

func itoa32(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// ============================================================
// Buyer facade
// ============================================================

// BuyerDeposit credits the buyer's linked account. False when the
// buyer is unknown, unlinked, or the amount is non-positive.
func (s *StoreService) BuyerDeposit(ctx context.Context, buyerID int32, amount domain.Money) bool {
	s.mu.Lock()
	b, ok := s.buyers[buyerID]
	var accountNumber string
	if ok {
		accountNumber = b.AccountNumber
	}
	s.mu.Unlock()

	if !ok || accountNumber == "" {
		return false
	}
	return s.bank.Deposit(ctx, accountNumber, amount)
}

// BuyerWithdraw debits the buyer's linked account. False when the
// buyer is unknown, unlinked, the amount is non-positive, or funds
// are insufficient.
func (s *StoreService) BuyerWithdraw(ctx context.Context, buyerID int32, amount domain.Money) bool {
	s.mu.Lock()
	b, ok := s.buyers[buyerID]
	var accountNumber string
	if ok {
		accountNumber = b.AccountNumber
	}
	s.mu.Unlock()

	if !ok || accountNumber == "" {
		return false
	}
	return s.bank.Withdraw(ctx, accountNumber, amount)
}

// BuyerBalance resolves the linked account and returns its balance;
// zero when unlinked.
func (s *StoreService) BuyerBalance(ctx context.Context, buyerID int32) (domain.Money, bool) {
	s.mu.Lock()
	b, ok := s.buyers[buyerID]
	var accountNumber string
	if ok {
		accountNumber = b.AccountNumber
	}
	s.mu.Unlock()

	if !ok {
		return 0, false
	}
	if accountNumber == "" {
		return 0, true
	}
	acct, found := s.bank.FindAccount(ctx, accountNumber)
	if !found {
		return 0, true
	}
	return acct.Balance, true
}

// BuyerTotalSpending sums the buyer's own purchases in the window,
// excluding canceled ones.
func (s *StoreService) BuyerTotalSpending(ctx context.Context, buyerID int32, days int) (domain.Money, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buyers[buyerID]
	if !ok {
		return 0, false
	}
	return b.TotalSpending(time.Now(), days), true
}

// BuyerCashFlow buckets the buyer's purchases by day, or by
// first-of-month when monthly is set.
func (s *StoreService) BuyerCashFlow(ctx context.Context, buyerID int32, monthly bool) ([]domain.CashFlowBucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buyers[buyerID]
	if !ok {
		return nil, false
	}
	return b.CashFlow(monthly), true
}

// ============================================================
// Seller facade
// ============================================================

// SellerAddItem adds an item to the seller's private catalog subset.
func (s *StoreService) SellerAddItem(ctx context.Context, sellerID int32, item domain.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[sellerID]
	if !ok {
		return false
	}
	if item.LastRestock.IsZero() {
		item.LastRestock = time.Now()
	}
	return sl.AddItem(item)
}

// SellerDeleteItem removes an item from the seller's private catalog.
func (s *StoreService) SellerDeleteItem(ctx context.Context, sellerID, itemID int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[sellerID]
	if !ok {
		return false
	}
	return sl.DeleteItem(itemID)
}

// SellerRestockItem restocks an item in the seller's private catalog.
func (s *StoreService) SellerRestockItem(ctx context.Context, sellerID, itemID, qty int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[sellerID]
	if !ok {
		return false
	}
	return sl.RestockItem(itemID, qty, time.Now())
}

// SellerSetItemPrice reprices an item in the seller's private catalog.
func (s *StoreService) SellerSetItemPrice(ctx context.Context, sellerID, itemID int32, price domain.Money) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[sellerID]
	if !ok {
		return false
	}
	return sl.SetItemPrice(itemID, price)
}

// SellerMonthlyItemSales counts the seller's completed sales of one
// item over the last 30 days.
func (s *StoreService) SellerMonthlyItemSales(ctx context.Context, sellerID, itemID int32) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[sellerID]
	if !ok {
		return 0, false
	}
	return sl.MonthlyItemSales(time.Now(), itemID), true
}

// SellerMonthlyPopularItems ranks the seller's items by monthly sales.
func (s *StoreService) SellerMonthlyPopularItems(ctx context.Context, sellerID int32) ([]domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[sellerID]
	if !ok {
		return nil, false
	}
	return sl.MonthlyPopularItems(time.Now()), true
}

// SellerLoyalCustomers returns buyer ids ranked by completed purchase
// count, then total amount.
func (s *StoreService) SellerLoyalCustomers(ctx context.Context, sellerID int32) ([]int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[sellerID]
	if !ok {
		return nil, false
	}
	return sl.LoyalCustomers(), true
}

// ============================================================
// Shared user surface
// ============================================================

// FindUser resolves a registered buyer or seller behind the shared
// User surface. The returned value is a copy.
func (s *StoreService) FindUser(ctx context.Context, kind domain.UserKind, id int32) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.KindBuyer:
		if b, ok := s.buyers[id]; ok {
			cp := copyBuyer(b)
			return &cp, true
		}
	case domain.KindSeller:
		if sl, ok := s.sellers[id]; ok {
			cp := copySeller(sl)
			return &cp, true
		}
	}
	return nil, false
}

// ============================================================
// Login flag
// ============================================================

// LoginUser flips the login flag on a registered buyer or seller.
// There are no credentials; the flag is the entire auth model.
func (s *StoreService) LoginUser(ctx context.Context, kind domain.UserKind, id int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	switch kind {
	case domain.KindBuyer:
		if b, ok := s.buyers[id]; ok {
			b.Login(now)
			return true
		}
	case domain.KindSeller:
		if sl, ok := s.sellers[id]; ok {
			sl.Login(now)
			return true
		}
	}
	return false
}

// LogoutUser clears the login flag.
func (s *StoreService) LogoutUser(ctx context.Context, kind domain.UserKind, id int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.KindBuyer:
		if b, ok := s.buyers[id]; ok {
			b.Logout()
			return true
		}
	case domain.KindSeller:
		if sl, ok := s.sellers[id]; ok {
			sl.Logout()
			return true
		}
	}
	return false
}
