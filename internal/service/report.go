package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// moneySum formats a minor-unit total as a fixed two-decimal string.
func moneySum(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Report renders a human-readable summary of the bank's state: customer
// count, dormant count, last-7-day transfer volume and the top five
// active accounts with their today-transfer counts. Pure read; the
// only output is the text.
func (s *BankService) Report(ctx context.Context) string {
	_, span := bankTracer.Start(ctx, "BankService.Report")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var b strings.Builder

	fmt.Fprintf(&b, "Bank Report - %s\n", s.name)
	b.WriteString("================================\n\n")

	b.WriteString("Customer Statistics:\n")
	fmt.Fprintf(&b, "Total Customers: %d\n", len(s.accounts))
	fmt.Fprintf(&b, "Dormant Accounts: %d\n\n", len(s.dormantLocked(now, 30)))

	recent := s.recentTransfersLocked(now, 7)
	b.WriteString("Transaction Statistics (Last 7 Days):\n")
	fmt.Fprintf(&b, "Total Transactions: %d\n", len(recent))

	var sum int64
	for _, t := range recent {
		sum += int64(t.Amount)
	}
	fmt.Fprintf(&b, "Total Transaction Value: $%s\n\n", moneySum(sum))

	b.WriteString("Top 5 Most Active Users Today:\n")
	for _, a := range s.mostActiveLocked(now, 5) {
		fmt.Fprintf(&b, "%s - %d transactions\n", a.OwnerName, s.todayTransfersLocked(now, a.AccountNumber))
	}

	return b.String()
}

// Report renders a summary of the store's trade ledger: catalog size,
// purchases awaiting fulfillment, 7-day volume and the best-selling
// items.
func (s *StoreService) Report(ctx context.Context) string {
	_, span := storeTracer.Start(ctx, "StoreService.Report")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var b strings.Builder

	b.WriteString("Store Report\n")
	b.WriteString("================================\n\n")

	b.WriteString("Catalog Statistics:\n")
	fmt.Fprintf(&b, "Total Items: %d\n", len(s.items))
	fmt.Fprintf(&b, "Registered Buyers: %d\n", len(s.buyers))
	fmt.Fprintf(&b, "Registered Sellers: %d\n\n", len(s.sellers))

	recent := s.inWindowLocked(now, 7)
	b.WriteString("Transaction Statistics (Last 7 Days):\n")
	fmt.Fprintf(&b, "Total Transactions: %d\n", len(recent))
	var sum int64
	for _, p := range recent {
		sum += int64(p.Amount)
	}
	fmt.Fprintf(&b, "Total Transaction Value: $%s\n", moneySum(sum))
	fmt.Fprintf(&b, "Awaiting Fulfillment: %d\n\n", len(s.pendingLocked()))

	b.WriteString("Top 5 Best Sellers:\n")
	for _, item := range s.mostSoldLocked(5) {
		fmt.Fprintf(&b, "%s - %d sold\n", item.Name, item.SoldCount)
	}

	return b.String()
}
