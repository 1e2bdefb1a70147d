package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pradipta/bankstore-go/internal/domain"
)

// ============================================================
// Money
// ============================================================

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in      string
		want    domain.Money
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"0.01", 1, false},
		{"100", 10000, false},
		{"-5.50", -550, false},
		{"12.345", 0, true},
		{"abc", 0, true},
	}
	for _, c := range cases {
		got, err := domain.ParseMoney(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseMoney(%q) = %d; want error", c.in, got)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParseMoney(%q) = %d, %v; want %d", c.in, got, err, c.want)
		}
	}
}

func TestMoney_String(t *testing.T) {
	if got := domain.Money(1234).String(); got != "12.34" {
		t.Errorf("String = %q; want %q", got, "12.34")
	}
	if got := domain.Money(5).String(); got != "0.05" {
		t.Errorf("String = %q; want %q", got, "0.05")
	}
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(domain.Money(999))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"9.99"` {
		t.Errorf("marshal = %s; want \"9.99\"", b)
	}
	var m domain.Money
	if err := json.Unmarshal([]byte(`"9.99"`), &m); err != nil || m != 999 {
		t.Errorf("unmarshal = %d, %v; want 999", m, err)
	}
}

// ============================================================
// Purchase status machine
// ============================================================

func TestPurchaseStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to domain.PurchaseStatus
		ok       bool
	}{
		{domain.StatusPending, domain.StatusPaid, true},
		{domain.StatusPending, domain.StatusCanceled, true},
		{domain.StatusPending, domain.StatusCompleted, false},
		{domain.StatusPaid, domain.StatusCompleted, true},
		{domain.StatusPaid, domain.StatusCanceled, true},
		{domain.StatusPaid, domain.StatusPending, false},
		{domain.StatusCompleted, domain.StatusCanceled, false},
		{domain.StatusCanceled, domain.StatusPaid, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%v -> %v = %v; want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestPurchaseStatus_Terminal(t *testing.T) {
	if domain.StatusPending.Terminal() || domain.StatusPaid.Terminal() {
		t.Error("PENDING/PAID must not be terminal")
	}
	if !domain.StatusCompleted.Terminal() || !domain.StatusCanceled.Terminal() {
		t.Error("COMPLETED/CANCELED must be terminal")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []domain.PurchaseStatus{
		domain.StatusPending, domain.StatusPaid, domain.StatusCompleted, domain.StatusCanceled,
	} {
		got, ok := domain.ParseStatus(s.String())
		if !ok || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := domain.ParseStatus("SHIPPED"); ok {
		t.Error("ParseStatus accepted unknown name")
	}
}

// ============================================================
// Whole-hour age rule
// ============================================================

func TestTransfer_WithinDays_WholeHourRule(t *testing.T) {
	now := time.Now()
	cases := []struct {
		age  time.Duration
		days int
		want bool
	}{
		{6 * 24 * time.Hour, 7, true},
		// 7 days minus a minute truncates to 167 whole hours, still inside.
		{7*24*time.Hour - time.Minute, 7, true},
		// Exactly 168 whole hours is the boundary and counts as inside.
		{7 * 24 * time.Hour, 7, true},
		// 168 hours and change truncates to 168, still inside.
		{7*24*time.Hour + 30*time.Minute, 7, true},
		{7*24*time.Hour + time.Hour, 7, false},
		{40 * 24 * time.Hour, 30, false},
	}
	for _, c := range cases {
		tr := domain.Transfer{Timestamp: now.Add(-c.age)}
		if got := tr.WithinDays(now, c.days); got != c.want {
			t.Errorf("age %v within %d days = %v; want %v", c.age, c.days, got, c.want)
		}
	}
}

func TestAgeAtLeastHours(t *testing.T) {
	now := time.Now()
	ts := now.Add(-30*24*time.Hour + time.Minute) // 719 whole hours
	if domain.AgeAtLeastHours(now, ts, 30*24) {
		t.Error("719 whole hours reported as >= 720")
	}
	ts = now.Add(-30 * 24 * time.Hour)
	if !domain.AgeAtLeastHours(now, ts, 30*24) {
		t.Error("720 whole hours reported as < 720")
	}
}

// ============================================================
// Account
// ============================================================

func TestAccount_DepositWithdraw(t *testing.T) {
	now := time.Now()
	a := domain.Account{AccountNumber: "ACC-001", Balance: 1000}

	if a.Deposit(0, now) || a.Deposit(-5, now) {
		t.Error("non-positive deposit accepted")
	}
	if !a.Deposit(500, now) || a.Balance != 1500 {
		t.Errorf("balance after deposit = %d; want 1500", a.Balance)
	}
	if a.Withdraw(2000, now) {
		t.Error("overdraft accepted")
	}
	if !a.Withdraw(1500, now) || a.Balance != 0 {
		t.Errorf("balance after withdraw = %d; want 0", a.Balance)
	}
	if !a.LastActivity.Equal(now) {
		t.Errorf("LastActivity = %v; want %v", a.LastActivity, now)
	}
}

// ============================================================
// Item
// ============================================================

func TestItem_Stock(t *testing.T) {
	i := domain.Item{ID: 1, Stock: 2}
	if !i.DecreaseStock(2) {
		t.Fatal("sale of available stock rejected")
	}
	if i.Stock != 0 || i.SoldCount != 2 {
		t.Errorf("stock=%d sold=%d; want 0, 2", i.Stock, i.SoldCount)
	}
	if i.DecreaseStock(1) {
		t.Error("sale from empty stock accepted")
	}
	if i.SoldCount != 2 {
		t.Errorf("SoldCount changed on rejected sale: %d", i.SoldCount)
	}
	now := time.Now()
	i.IncreaseStock(5, now)
	if i.Stock != 5 || !i.LastRestock.Equal(now) {
		t.Errorf("restock: stock=%d last=%v", i.Stock, i.LastRestock)
	}
}

// ============================================================
// Buyer
// ============================================================

func TestBuyer_TotalSpending_ExcludesCanceled(t *testing.T) {
	now := time.Now()
	b := domain.Buyer{Profile: domain.Profile{ID: 1, Name: "Alice"}}
	b.AddPurchase(domain.Purchase{Amount: 100, Status: domain.StatusCompleted, Timestamp: now})
	b.AddPurchase(domain.Purchase{Amount: 200, Status: domain.StatusPending, Timestamp: now})
	b.AddPurchase(domain.Purchase{Amount: 400, Status: domain.StatusCanceled, Timestamp: now})
	b.AddPurchase(domain.Purchase{Amount: 800, Status: domain.StatusPaid, Timestamp: now.Add(-60 * 24 * time.Hour)})

	if got := b.TotalSpending(now, 30); got != 300 {
		t.Errorf("TotalSpending = %d; want 300", got)
	}
}

func TestBuyer_CashFlow_DailyAndMonthly(t *testing.T) {
	b := domain.Buyer{Profile: domain.Profile{ID: 1}}
	day1 := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 11, 23, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	b.AddPurchase(domain.Purchase{Amount: 100, Timestamp: day1})
	b.AddPurchase(domain.Purchase{Amount: 50, Timestamp: day1.Add(2 * time.Hour)})
	b.AddPurchase(domain.Purchase{Amount: 70, Timestamp: day2})
	b.AddPurchase(domain.Purchase{Amount: 30, Timestamp: feb})

	daily := b.CashFlow(false)
	if len(daily) != 3 {
		t.Fatalf("daily buckets = %d; want 3", len(daily))
	}
	if daily[0].Total != 150 || daily[1].Total != 70 || daily[2].Total != 30 {
		t.Errorf("daily totals = %d, %d, %d; want 150, 70, 30", daily[0].Total, daily[1].Total, daily[2].Total)
	}
	if !daily[0].Bucket.Before(daily[1].Bucket) || !daily[1].Bucket.Before(daily[2].Bucket) {
		t.Error("daily buckets not ascending")
	}

	monthly := b.CashFlow(true)
	if len(monthly) != 2 {
		t.Fatalf("monthly buckets = %d; want 2", len(monthly))
	}
	if monthly[0].Total != 220 || monthly[1].Total != 30 {
		t.Errorf("monthly totals = %d, %d; want 220, 30", monthly[0].Total, monthly[1].Total)
	}
	if monthly[0].Bucket.Day() != 1 {
		t.Errorf("monthly bucket not first of month: %v", monthly[0].Bucket)
	}
}

// ============================================================
// Seller
// ============================================================

func TestSeller_PrivateCatalog(t *testing.T) {
	s := domain.Seller{Profile: domain.Profile{ID: 1, Name: "Shop"}}
	if !s.AddItem(domain.Item{ID: 1, Name: "Mug", Price: 500}) {
		t.Fatal("AddItem rejected fresh id")
	}
	if s.AddItem(domain.Item{ID: 1, Name: "Dup"}) {
		t.Error("AddItem accepted duplicate id")
	}
	if !s.SetItemPrice(1, 600) {
		t.Error("SetItemPrice rejected existing item")
	}
	if s.SetItemPrice(1, -1) {
		t.Error("SetItemPrice accepted negative price")
	}
	if !s.RestockItem(1, 3, time.Now()) || s.Items[0].Stock != 3 {
		t.Errorf("restock: %+v", s.Items[0])
	}
	if s.RestockItem(1, 0, time.Now()) {
		t.Error("RestockItem accepted zero quantity")
	}
	if !s.DeleteItem(1) || s.DeleteItem(1) {
		t.Error("DeleteItem behavior wrong")
	}
}

func TestSeller_MonthlyItemSales(t *testing.T) {
	now := time.Now()
	s := domain.Seller{Profile: domain.Profile{ID: 1}}
	s.AddPurchase(domain.Purchase{ItemID: 5, Status: domain.StatusCompleted, Timestamp: now})
	s.AddPurchase(domain.Purchase{ItemID: 5, Status: domain.StatusCompleted, Timestamp: now.Add(-10 * 24 * time.Hour)})
	s.AddPurchase(domain.Purchase{ItemID: 5, Status: domain.StatusPaid, Timestamp: now})
	s.AddPurchase(domain.Purchase{ItemID: 5, Status: domain.StatusCompleted, Timestamp: now.Add(-40 * 24 * time.Hour)})
	s.AddPurchase(domain.Purchase{ItemID: 6, Status: domain.StatusCompleted, Timestamp: now})

	if got := s.MonthlyItemSales(now, 5); got != 2 {
		t.Errorf("MonthlyItemSales = %d; want 2", got)
	}
}

func TestSeller_LoyalCustomers_Ranking(t *testing.T) {
	now := time.Now()
	s := domain.Seller{Profile: domain.Profile{ID: 1}}
	// Buyer 10: two completed, total 300. Buyer 20: two completed, total 500.
	// Buyer 30: one completed. Buyer 40: only canceled.
	s.AddPurchase(domain.Purchase{BuyerID: 10, Amount: 100, Status: domain.StatusCompleted, Timestamp: now})
	s.AddPurchase(domain.Purchase{BuyerID: 10, Amount: 200, Status: domain.StatusCompleted, Timestamp: now})
	s.AddPurchase(domain.Purchase{BuyerID: 20, Amount: 250, Status: domain.StatusCompleted, Timestamp: now})
	s.AddPurchase(domain.Purchase{BuyerID: 20, Amount: 250, Status: domain.StatusCompleted, Timestamp: now})
	s.AddPurchase(domain.Purchase{BuyerID: 30, Amount: 999, Status: domain.StatusCompleted, Timestamp: now})
	s.AddPurchase(domain.Purchase{BuyerID: 40, Amount: 999, Status: domain.StatusCanceled, Timestamp: now})

	got := s.LoyalCustomers()
	if len(got) != 3 {
		t.Fatalf("LoyalCustomers = %v; want 3 buyers", got)
	}
	if got[0] != 20 || got[1] != 10 || got[2] != 30 {
		t.Errorf("ranking = %v; want [20 10 30]", got)
	}
}

// Both variants satisfy the shared User surface.
var (
	_ domain.User = (*domain.Buyer)(nil)
	_ domain.User = (*domain.Seller)(nil)
)

func TestUser_Surface(t *testing.T) {
	b := &domain.Buyer{Profile: domain.Profile{ID: 1, Name: "Alice"}, AccountNumber: "ACC-001"}
	s := &domain.Seller{Profile: domain.Profile{ID: 2, Name: "Shop"}}
	s.AddItem(domain.Item{ID: 5, Name: "Mug"})
	s.AddPurchase(domain.Purchase{ID: 9})

	users := []domain.User{b, s}
	if users[0].Kind() != domain.KindBuyer || users[1].Kind() != domain.KindSeller {
		t.Errorf("kinds = %v, %v", users[0].Kind(), users[1].Kind())
	}
	if users[0].UserID() != 1 || users[0].UserName() != "Alice" {
		t.Errorf("buyer identity = %d, %q", users[0].UserID(), users[0].UserName())
	}

	info := b.Info()
	if !strings.Contains(info, "Name: Alice") || !strings.Contains(info, "Account: ACC-001") {
		t.Errorf("buyer info = %q", info)
	}
	unlinked := &domain.Buyer{Profile: domain.Profile{ID: 3, Name: "Carol"}}
	if strings.Contains(unlinked.Info(), "Account:") {
		t.Errorf("unlinked buyer info mentions account: %q", unlinked.Info())
	}

	info = s.Info()
	for _, want := range []string{"Name: Shop", "Total Items: 1", "Total Transactions: 1"} {
		if !strings.Contains(info, want) {
			t.Errorf("seller info missing %q: %q", want, info)
		}
	}
}

func TestProfile_LoginFlag(t *testing.T) {
	now := time.Now()
	var p domain.Profile
	if p.LoggedIn() {
		t.Error("fresh profile logged in")
	}
	p.Login(now)
	if !p.LoggedIn() || !p.LastLogin.Equal(now) {
		t.Errorf("after Login: %+v", p)
	}
	p.Logout()
	if p.LoggedIn() {
		t.Error("still logged in after Logout")
	}
	if !p.LastLogin.Equal(now) {
		t.Error("Logout cleared LastLogin")
	}
}
