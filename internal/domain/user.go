package domain

import (
	"fmt"
	"sort"
	"time"
)

// UserKind discriminates the closed set of user variants. Only buyers
// and sellers exist; new kinds are not expected.
type UserKind string

const (
	KindBuyer  UserKind = "buyer"
	KindSeller UserKind = "seller"
)

// User is the shared capability surface of the two user variants.
type User interface {
	UserID() int32
	UserName() string
	LoggedIn() bool
	Kind() UserKind
	Info() string
}

// Profile holds the fields common to buyers and sellers. Login is a
// plain boolean flag; there are no credentials.
type Profile struct {
	ID         int32     `json:"id"`
	Name       string    `json:"name"`
	LoginState bool      `json:"login_state"`
	LastLogin  time.Time `json:"last_login,omitempty"`
}

func (p *Profile) UserID() int32    { return p.ID }
func (p *Profile) UserName() string { return p.Name }
func (p *Profile) LoggedIn() bool   { return p.LoginState }

// Login flips the login flag and stamps the login time.
func (p *Profile) Login(now time.Time) {
	p.LoginState = true
	p.LastLogin = now
}

func (p *Profile) Logout() {
	p.LoginState = false
}

// ============================================================
// Buyer
// ============================================================

// Buyer is a store user with an optional link to one bank account.
// The link is a foreign key (account number) resolved through the
// bank at call time; the bank exclusively owns the account.
type Buyer struct {
	Profile
	AccountNumber string     `json:"account_number,omitempty"`
	Purchases     []Purchase `json:"purchases,omitempty"`
}

func (b *Buyer) Kind() UserKind { return KindBuyer }

func (b *Buyer) Info() string {
	info := fmt.Sprintf("ID: %d, Name: %s", b.ID, b.Name)
	if b.AccountNumber != "" {
		info += "\nAccount: " + b.AccountNumber
	}
	return info
}

// HasAccount reports whether the buyer is linked to a bank account.
func (b *Buyer) HasAccount() bool { return b.AccountNumber != "" }

// AddPurchase appends to the buyer's personal purchase history.
func (b *Buyer) AddPurchase(p Purchase) {
	b.Purchases = append(b.Purchases, p)
}

// TotalSpending sums the buyer's purchases inside the window,
// excluding canceled ones.
func (b *Buyer) TotalSpending(now time.Time, days int) Money {
	var total Money
	for _, p := range b.Purchases {
		if p.WithinDays(now, days) && p.Status != StatusCanceled {
			total += p.Amount
		}
	}
	return total
}

// CashFlowBucket is one time bucket of aggregated purchase amounts.
type CashFlowBucket struct {
	Bucket time.Time `json:"bucket"`
	Total  Money     `json:"total"`
}

// CashFlow buckets the buyer's purchases by day, or by first-of-month
// when monthly is set, and sums amounts per bucket. Buckets come back
// sorted ascending by time.
func (b *Buyer) CashFlow(monthly bool) []CashFlowBucket {
	grouped := make(map[time.Time]Money)
	for _, p := range b.Purchases {
		ts := p.Timestamp
		var bucket time.Time
		if monthly {
			bucket = time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
		} else {
			bucket = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		}
		grouped[bucket] += p.Amount
	}

	flow := make([]CashFlowBucket, 0, len(grouped))
	for bucket, total := range grouped {
		flow = append(flow, CashFlowBucket{Bucket: bucket, Total: total})
	}
	sort.Slice(flow, func(i, j int) bool { return flow[i].Bucket.Before(flow[j].Bucket) })
	return flow
}

// ============================================================
// Seller
// ============================================================

// Seller owns a private item subset and its own purchase history,
// independent of the store's global catalog and ledger.
type Seller struct {
	Profile
	Items     []Item     `json:"items,omitempty"`
	Purchases []Purchase `json:"purchases,omitempty"`
}

func (s *Seller) Kind() UserKind { return KindSeller }

func (s *Seller) Info() string {
	return fmt.Sprintf("ID: %d, Name: %s\nTotal Items: %d\nTotal Transactions: %d",
		s.ID, s.Name, len(s.Items), len(s.Purchases))
}

// AddItem inserts into the seller's private catalog; duplicate ids
// are rejected.
func (s *Seller) AddItem(item Item) bool {
	for _, i := range s.Items {
		if i.ID == item.ID {
			return false
		}
	}
	s.Items = append(s.Items, item)
	return true
}

// DeleteItem removes an item from the private catalog.
func (s *Seller) DeleteItem(itemID int32) bool {
	for idx, i := range s.Items {
		if i.ID == itemID {
			s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
			return true
		}
	}
	return false
}

// RestockItem adds qty units of an item in the private catalog.
func (s *Seller) RestockItem(itemID, qty int32, now time.Time) bool {
	if qty <= 0 {
		return false
	}
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			s.Items[idx].IncreaseStock(qty, now)
			return true
		}
	}
	return false
}

// SetItemPrice updates the price of an item in the private catalog.
func (s *Seller) SetItemPrice(itemID int32, price Money) bool {
	if price < 0 {
		return false
	}
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			s.Items[idx].Price = price
			return true
		}
	}
	return false
}

// AddPurchase appends to the seller's personal purchase history.
func (s *Seller) AddPurchase(p Purchase) {
	s.Purchases = append(s.Purchases, p)
}

// MonthlyItemSales counts completed purchases of the item within the
// last 30 days of the seller's own history.
func (s *Seller) MonthlyItemSales(now time.Time, itemID int32) int {
	count := 0
	for _, p := range s.Purchases {
		if p.ItemID == itemID && p.Status == StatusCompleted && p.WithinDays(now, 30) {
			count++
		}
	}
	return count
}

// MonthlyPopularItems ranks the seller's items by their monthly sales
// count, descending. Ties keep catalog order.
func (s *Seller) MonthlyPopularItems(now time.Time) []Item {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return s.MonthlyItemSales(now, items[i].ID) > s.MonthlyItemSales(now, items[j].ID)
	})
	return items
}

// CustomerStats aggregates a buyer's completed purchases with one
// seller.
type CustomerStats struct {
	BuyerID       int32     `json:"buyer_id"`
	PurchaseCount int       `json:"purchase_count"`
	TotalAmount   Money     `json:"total_amount"`
	LastPurchase  time.Time `json:"last_purchase"`
}

// LoyalCustomers aggregates completed purchases per buyer and returns
// buyer ids ranked by purchase count, then total amount, descending.
func (s *Seller) LoyalCustomers() []int32 {
	stats := make(map[int32]*CustomerStats)
	for _, p := range s.Purchases {
		if p.Status != StatusCompleted {
			continue
		}
		cs, ok := stats[p.BuyerID]
		if !ok {
			cs = &CustomerStats{BuyerID: p.BuyerID}
			stats[p.BuyerID] = cs
		}
		cs.PurchaseCount++
		cs.TotalAmount += p.Amount
		cs.LastPurchase = p.Timestamp
	}

	ranked := make([]*CustomerStats, 0, len(stats))
	for _, cs := range stats {
		ranked = append(ranked, cs)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].PurchaseCount != ranked[j].PurchaseCount {
			return ranked[i].PurchaseCount > ranked[j].PurchaseCount
		}
		return ranked[i].TotalAmount > ranked[j].TotalAmount
	})

	ids := make([]int32, len(ranked))
	for i, cs := range ranked {
		ids[i] = cs.BuyerID
	}
	return ids
}
