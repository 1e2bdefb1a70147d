package codec_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pradipta/bankstore-go/internal/codec"
	"github.com/pradipta/bankstore-go/internal/domain"
)

func sameTime(a, b time.Time) bool { return a.UnixNano() == b.UnixNano() }

func TestBankSnapshot_RoundTrip(t *testing.T) {
	now := time.Now()
	transfers := []domain.Transfer{
		{ID: 1, FromAccount: "ACC-001", ToAccount: "ACC-002", Amount: 2500, Timestamp: now.Add(-time.Hour), Description: "rent"},
		{ID: 2, FromAccount: "ACC-002", ToAccount: "ACC-001", Amount: 199, Timestamp: now, Description: ""},
	}
	snap := domain.BankSnapshot{
		ID:   7,
		Name: "Bank Nasional",
		Accounts: []domain.Account{
			{ID: 1, OwnerName: "Alice", AccountNumber: "ACC-001", Balance: 100000, LastActivity: now, History: transfers},
			{ID: 2, OwnerName: "Bob", AccountNumber: "ACC-002", Balance: 50, LastActivity: now.Add(-24 * time.Hour)},
		},
		Transfers: transfers,
	}

	buf, err := codec.EncodeBankSnapshot(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := codec.DecodeBankSnapshot(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.ID != snap.ID || got.Name != snap.Name {
		t.Errorf("identity = (%d, %q); want (%d, %q)", got.ID, got.Name, snap.ID, snap.Name)
	}
	if len(got.Accounts) != 2 || len(got.Transfers) != 2 {
		t.Fatalf("got %d accounts, %d transfers; want 2, 2", len(got.Accounts), len(got.Transfers))
	}

	a := got.Accounts[0]
	if a.OwnerName != "Alice" || a.AccountNumber != "ACC-001" || a.Balance != 100000 {
		t.Errorf("account[0] = %+v", a)
	}
	if !sameTime(a.LastActivity, now) {
		t.Errorf("LastActivity = %v; want %v", a.LastActivity, now)
	}
	if len(a.History) != 2 {
		t.Fatalf("account[0] history length = %d; want 2", len(a.History))
	}

	tr := got.Transfers[0]
	if tr.ID != 1 || tr.FromAccount != "ACC-001" || tr.ToAccount != "ACC-002" || tr.Amount != 2500 || tr.Description != "rent" {
		t.Errorf("transfer[0] = %+v", tr)
	}
	if !sameTime(tr.Timestamp, transfers[0].Timestamp) {
		t.Errorf("transfer timestamp = %v; want %v", tr.Timestamp, transfers[0].Timestamp)
	}
	// Ledger order must survive the round trip.
	if got.Transfers[1].ID != 2 {
		t.Errorf("transfer order changed: second id = %d", got.Transfers[1].ID)
	}
}

func TestStoreSnapshot_RoundTrip(t *testing.T) {
	now := time.Now()
	snap := domain.StoreSnapshot{
		Items: []domain.Item{
			{ID: 10, Name: "Keyboard", Price: 4999, Stock: 3, SoldCount: 12, LastRestock: now},
			{ID: 11, Name: "", Price: 0, Stock: 0, SoldCount: 0},
		},
		Purchases: []domain.Purchase{
			{ID: 1, BuyerID: 100, SellerID: 200, ItemID: 10, Amount: 4999, Status: domain.StatusPaid, Timestamp: now},
			{ID: 2, BuyerID: 101, SellerID: 200, ItemID: 10, Amount: 4999, Status: domain.StatusCanceled, Timestamp: now.Add(-time.Minute)},
		},
	}

	buf, err := codec.EncodeStoreSnapshot(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := codec.DecodeStoreSnapshot(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(got.Items) != 2 || len(got.Purchases) != 2 {
		t.Fatalf("got %d items, %d purchases; want 2, 2", len(got.Items), len(got.Purchases))
	}
	if got.Items[0].Name != "Keyboard" || got.Items[0].SoldCount != 12 {
		t.Errorf("item[0] = %+v", got.Items[0])
	}
	if got.Purchases[0].Status != domain.StatusPaid {
		t.Errorf("purchase[0] status = %v; want PAID", got.Purchases[0].Status)
	}
	if got.Purchases[1].Status != domain.StatusCanceled {
		t.Errorf("purchase[1] status = %v; want CANCELED", got.Purchases[1].Status)
	}
}

func TestDecodeBankSnapshot_TruncatedIsAllOrNothing(t *testing.T) {
	snap := domain.BankSnapshot{
		ID:   1,
		Name: "B",
		Accounts: []domain.Account{
			{ID: 1, OwnerName: "Alice", AccountNumber: "ACC-001", Balance: 100},
		},
	}
	buf, err := codec.EncodeBankSnapshot(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := codec.DecodeBankSnapshot(buf[:len(buf)-3])
	if err == nil {
		t.Fatal("decode of truncated blob succeeded; want error")
	}
	var decErr *domain.ErrDecoding
	if !errors.As(err, &decErr) {
		t.Fatalf("error = %v; want *domain.ErrDecoding", err)
	}
	if got.Accounts != nil || got.Name != "" {
		t.Errorf("truncated decode returned partial state: %+v", got)
	}
}

func TestDecodePurchase_RejectsUnknownStatus(t *testing.T) {
	p := domain.Purchase{ID: 1, Status: domain.StatusPending, Timestamp: time.Now()}
	w := codec.NewWriter()
	if err := codec.EncodePurchase(w, p); err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf := w.Bytes()
	// Status lives after four int32 ids and one int64 amount.
	buf[4*4+8] = 0x7F

	_, err := codec.DecodePurchase(codec.NewReader(buf))
	var decErr *domain.ErrDecoding
	if !errors.As(err, &decErr) {
		t.Fatalf("decode with bogus status = %v; want *domain.ErrDecoding", err)
	}
}

func TestDecodeStoreSnapshot_Empty(t *testing.T) {
	buf, err := codec.EncodeStoreSnapshot(domain.StoreSnapshot{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := codec.DecodeStoreSnapshot(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 0 || len(got.Purchases) != 0 {
		t.Errorf("empty snapshot round trip = %+v", got)
	}
}
