// Package service implements the ledger engines: the bank's account
// ledger and the store's item catalog / trade ledger. All mutation
// goes through these services; analytics are computed on demand from
// the in-memory state, never cached.
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

var bankTracer = otel.Tracer("service/bank")

// BankService owns all accounts (keyed by account number) and the
// append-only transfer ledger. One mutex serializes every operation;
// lookups return copies, never interior pointers.
type BankService struct {
	mu sync.Mutex

	id      int32
	name    string
	address string
	phone   string

	accounts       map[string]*domain.Account
	transfers      []domain.Transfer
	nextTransferID int32

	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewBankService creates an empty bank. State is hydrated separately
// via Hydrate so load failures stay observable at the call site.
func NewBankService(id int32, name, address, phone string, metrics *observability.Metrics, logger *zap.Logger) *BankService {
	return &BankService{
		id:             id,
		name:           name,
		address:        address,
		phone:          phone,
		accounts:       make(map[string]*domain.Account),
		transfers:      nil,
		nextTransferID: 1,
		metrics:        metrics,
		logger:         logger,
	}
}

// Hydrate replaces the bank's state with a loaded snapshot. The blob
// carries id and name; address and phone stay as constructed.
func (s *BankService) Hydrate(snap domain.BankSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = snap.ID
	if snap.Name != "" {
		s.name = snap.Name
	}
	s.accounts = make(map[string]*domain.Account, len(snap.Accounts))
	for _, a := range snap.Accounts {
		acct := a
		s.accounts[a.AccountNumber] = &acct
	}
	s.transfers = append([]domain.Transfer(nil), snap.Transfers...)

	s.nextTransferID = 1
	for _, t := range s.transfers {
		if t.ID >= s.nextTransferID {
			s.nextTransferID = t.ID + 1
		}
	}
}

// Snapshot copies the whole bank state out for persistence.
func (s *BankService) Snapshot() domain.BankSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.BankSnapshot{
		ID:        s.id,
		Name:      s.name,
		Transfers: append([]domain.Transfer(nil), s.transfers...),
	}
	snap.Accounts = make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		cp := *a
		cp.History = append([]domain.Transfer(nil), a.History...)
		snap.Accounts = append(snap.Accounts, cp)
	}
	// Deterministic blob layout regardless of map iteration.
	sort.Slice(snap.Accounts, func(i, j int) bool {
		return snap.Accounts[i].AccountNumber < snap.Accounts[j].AccountNumber
	})
	return snap
}

// Name returns the bank's display name.
func (s *BankService) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// AddCustomer inserts a new account. Existing account numbers are
// never overwritten; the return value reports whether the insert
// happened.
func (s *BankService) AddCustomer(ctx context.Context, acct domain.Account) bool {
	_, span := bankTracer.Start(ctx, "BankService.AddCustomer")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acct.AccountNumber]; exists {
		s.logger.Debug("add customer rejected, duplicate account number",
			zap.String("account_number", acct.AccountNumber))
		return false
	}
	if acct.LastActivity.IsZero() {
		acct.LastActivity = time.Now()
	}
	cp := acct
	s.accounts[acct.AccountNumber] = &cp
	return true
}

// FindAccount looks up an account by number and returns a copy.
// Absence is not an error.
func (s *BankService) FindAccount(ctx context.Context, accountNumber string) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountNumber]
	if !ok {
		return domain.Account{}, false
	}
	cp := *a
	cp.History = append([]domain.Transfer(nil), a.History...)
	return cp, true
}

// Deposit credits an account directly (teller deposit, or a buyer
// facade delegating through its account link).
func (s *BankService) Deposit(ctx context.Context, accountNumber string, amount domain.Money) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountNumber]
	if !ok {
		return false
	}
	return a.Deposit(amount, time.Now())
}

// Withdraw debits an account directly, rejecting overdrafts.
func (s *BankService) Withdraw(ctx context.Context, accountNumber string, amount domain.Money) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountNumber]
	if !ok {
		return false
	}
	return a.Withdraw(amount, time.Now())
}

// Transfer moves amount between two accounts, all-or-nothing: both
// accounts must exist and the sender must cover the amount. On
// success the debit, credit, ledger append and activity stamps happen
// under one lock; on failure no state changes at all.
func (s *BankService) Transfer(ctx context.Context, from, to string, amount domain.Money, description string) (domain.Transfer, bool) {
	_, span := bankTracer.Start(ctx, "BankService.Transfer")
	defer span.End()
	span.SetAttributes(attribute.String("transfer.from", from), attribute.String("transfer.to", to))

	start := time.Now()
	defer func() { s.metrics.RecordOpDuration("bank.transfer", time.Since(start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, okFrom := s.accounts[from]
	receiver, okTo := s.accounts[to]
	if !okFrom || !okTo || from == to || amount <= 0 || sender.Balance < amount {
		s.metrics.IncrTransfer("rejected")
		s.logger.Info("transfer not processed",
			zap.String("from", from),
			zap.String("to", to),
			zap.String("amount", amount.String()),
			zap.Bool("from_exists", okFrom),
			zap.Bool("to_exists", okTo),
		)
		return domain.Transfer{}, false
	}

	now := time.Now()
	t := domain.Transfer{
		ID:          s.nextTransferID,
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		Timestamp:   now,
		Description: description,
	}
	s.nextTransferID++

	sender.Balance -= amount
	receiver.Balance += amount
	sender.RecordTransfer(t, now)
	receiver.RecordTransfer(t, now)
	s.transfers = append(s.transfers, t)

	s.metrics.IncrTransfer("processed")
	s.logger.Info("transfer processed",
		zap.Int32("transfer_id", t.ID),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount.String()),
	)
	return t, true
}

// RecentTransfers returns all transfers at most days*24 whole hours
// old, preserving ledger order.
func (s *BankService) RecentTransfers(ctx context.Context, days int) []domain.Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recentTransfersLocked(time.Now(), days)
}

func (s *BankService) recentTransfersLocked(now time.Time, days int) []domain.Transfer {
	recent := make([]domain.Transfer, 0)
	for _, t := range s.transfers {
		if t.WithinDays(now, days) {
			recent = append(recent, t)
		}
	}
	return recent
}

// DormantAccounts returns accounts whose last activity is at least
// thresholdDays*24 whole hours ago.
func (s *BankService) DormantAccounts(ctx context.Context, thresholdDays int) []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dormantLocked(time.Now(), thresholdDays)
}

func (s *BankService) dormantLocked(now time.Time, thresholdDays int) []domain.Account {
	dormant := make([]domain.Account, 0)
	for _, a := range s.accounts {
		if domain.AgeAtLeastHours(now, a.LastActivity, int64(thresholdDays)*24) {
			cp := *a
			cp.History = nil
			dormant = append(dormant, cp)
		}
	}
	sort.Slice(dormant, func(i, j int) bool {
		return dormant[i].AccountNumber < dormant[j].AccountNumber
	})
	return dormant
}

// MostActiveAccounts ranks accounts by how many transfers touched
// them in the last 24 hours, descending, and returns at most n. Tie
// order is stable within a run but not across runs.
func (s *BankService) MostActiveAccounts(ctx context.Context, n int) []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mostActiveLocked(time.Now(), n)
}

func (s *BankService) mostActiveLocked(now time.Time, n int) []domain.Account {
	active := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		cp := *a
		cp.History = nil
		active = append(active, cp)
	}
	// Pre-sort by key so ties come out in a deterministic order
	// instead of map iteration order.
	sort.Slice(active, func(i, j int) bool {
		return active[i].AccountNumber < active[j].AccountNumber
	})
	sort.SliceStable(active, func(i, j int) bool {
		return s.todayTransfersLocked(now, active[i].AccountNumber) >
			s.todayTransfersLocked(now, active[j].AccountNumber)
	})
	if len(active) > n {
		active = active[:n]
	}
	return active
}

// todayTransfersLocked counts transfers touching the account within
// the last 24 whole hours.
func (s *BankService) todayTransfersLocked(now time.Time, accountNumber string) int {
	count := 0
	for _, t := range s.transfers {
		if t.WithinDays(now, 1) && t.Touches(accountNumber) {
			count++
		}
	}
	return count
}
