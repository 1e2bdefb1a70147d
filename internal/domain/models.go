// Package domain defines the core entities of the bank/store ledger
// engine. These models are independent of transport and persistence
// and represent the canonical data structures used throughout the
// system.
package domain

import "time"

// ============================================================
// Bank side
// ============================================================

// Account is a customer account owned by the bank, keyed by its
// account number.
type Account struct {
	ID            int32      `json:"id"`
	OwnerName     string     `json:"owner_name"`
	AccountNumber string     `json:"account_number"`
	Balance       Money      `json:"balance"`
	LastActivity  time.Time  `json:"last_activity"`
	History       []Transfer `json:"history,omitempty"`
}

// Deposit credits the account. Non-positive amounts are rejected.
func (a *Account) Deposit(amount Money, now time.Time) bool {
	if amount <= 0 {
		return false
	}
	a.Balance += amount
	a.LastActivity = now
	return true
}

// Withdraw debits the account, keeping the balance non-negative.
func (a *Account) Withdraw(amount Money, now time.Time) bool {
	if amount <= 0 || a.Balance < amount {
		return false
	}
	a.Balance -= amount
	a.LastActivity = now
	return true
}

// RecordTransfer appends a transfer touching this account to its
// personal history and refreshes the activity timestamp.
func (a *Account) RecordTransfer(t Transfer, now time.Time) {
	a.History = append(a.History, t)
	a.LastActivity = now
}

// Transfer is an immutable inter-account transfer record. Once
// appended to the bank's ledger it is never mutated or removed.
type Transfer struct {
	ID          int32     `json:"id"`
	FromAccount string    `json:"from_account"`
	ToAccount   string    `json:"to_account"`
	Amount      Money     `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// WithinDays reports whether the transfer's age at now, in whole
// hours, is at most days*24.
func (t Transfer) WithinDays(now time.Time, days int) bool {
	return withinHours(now, t.Timestamp, int64(days)*24)
}

// Touches reports whether the account is sender or receiver.
func (t Transfer) Touches(accountNumber string) bool {
	return t.FromAccount == accountNumber || t.ToAccount == accountNumber
}

// ============================================================
// Store side
// ============================================================

// Item is a catalog entry with stock tracking.
type Item struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	Price       Money     `json:"price"`
	Stock       int32     `json:"stock"`
	SoldCount   int32     `json:"sold_count"`
	LastRestock time.Time `json:"last_restock"`
}

// DecreaseStock sells n units if available; SoldCount only ever grows.
func (i *Item) DecreaseStock(n int32) bool {
	if n <= 0 || i.Stock < n {
		return false
	}
	i.Stock -= n
	i.SoldCount += n
	return true
}

// IncreaseStock restocks n units and refreshes the restock timestamp.
func (i *Item) IncreaseStock(n int32, now time.Time) {
	i.Stock += n
	i.LastRestock = now
}

// Purchase is a store transaction between a buyer and a seller.
type Purchase struct {
	ID        int32          `json:"id"`
	BuyerID   int32          `json:"buyer_id"`
	SellerID  int32          `json:"seller_id"`
	ItemID    int32          `json:"item_id"`
	Amount    Money          `json:"amount"`
	Status    PurchaseStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
}

// WithinDays reports whether the purchase's age at now, in whole
// hours, is at most days*24.
func (p Purchase) WithinDays(now time.Time, days int) bool {
	return withinHours(now, p.Timestamp, int64(days)*24)
}

// ============================================================
// Snapshots (persisted state)
// ============================================================

// BankSnapshot is the whole-bank state persisted as a single blob.
type BankSnapshot struct {
	ID        int32
	Name      string
	Accounts  []Account
	Transfers []Transfer
}

// StoreSnapshot is the whole-store state persisted as a single blob.
// Buyers and sellers are intentionally absent: the on-disk contract
// only carries items and purchases, users are rebuilt per run.
type StoreSnapshot struct {
	Items     []Item
	Purchases []Purchase
}

// withinHours implements the ledger-wide age rule: age is measured in
// whole hours (truncated), and a record is inside the window when that
// age does not exceed maxHours.
func withinHours(now, ts time.Time, maxHours int64) bool {
	return int64(now.Sub(ts)/time.Hour) <= maxHours
}

// AgeAtLeastHours reports whether ts is at least minHours old at now,
// using the same whole-hour truncation. Used for dormancy checks.
func AgeAtLeastHours(now, ts time.Time, minHours int64) bool {
	return int64(now.Sub(ts)/time.Hour) >= minHours
}
