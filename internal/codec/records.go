package codec

import (
	"github.com/pradipta/bankstore-go/internal/domain"
)

// Per-entity record layouts. Field order is fixed and part of the
// on-disk contract; changing it breaks existing blobs.

// ============================================================
// Transfer
// ============================================================

func EncodeTransfer(w *Writer, t domain.Transfer) error {
	w.PutInt32(t.ID)
	if err := w.PutString("transfer", t.FromAccount); err != nil {
		return err
	}
	if err := w.PutString("transfer", t.ToAccount); err != nil {
		return err
	}
	w.PutInt64(int64(t.Amount))
	w.PutTime(t.Timestamp)
	return w.PutString("transfer", t.Description)
}

func DecodeTransfer(r *Reader) (domain.Transfer, error) {
	var t domain.Transfer
	var err error
	if t.ID, err = r.Int32("transfer"); err != nil {
		return t, err
	}
	if t.FromAccount, err = r.String("transfer"); err != nil {
		return t, err
	}
	if t.ToAccount, err = r.String("transfer"); err != nil {
		return t, err
	}
	amount, err := r.Int64("transfer")
	if err != nil {
		return t, err
	}
	t.Amount = domain.Money(amount)
	if t.Timestamp, err = r.Time("transfer"); err != nil {
		return t, err
	}
	t.Description, err = r.String("transfer")
	return t, err
}

// ============================================================
// Account
// ============================================================

func EncodeAccount(w *Writer, a domain.Account) error {
	w.PutInt32(a.ID)
	if err := w.PutString("account", a.OwnerName); err != nil {
		return err
	}
	if err := w.PutString("account", a.AccountNumber); err != nil {
		return err
	}
	w.PutInt64(int64(a.Balance))
	w.PutTime(a.LastActivity)
	w.PutUint64(uint64(len(a.History)))
	for _, t := range a.History {
		if err := EncodeTransfer(w, t); err != nil {
			return err
		}
	}
	return nil
}

func DecodeAccount(r *Reader) (domain.Account, error) {
	var a domain.Account
	var err error
	if a.ID, err = r.Int32("account"); err != nil {
		return a, err
	}
	if a.OwnerName, err = r.String("account"); err != nil {
		return a, err
	}
	if a.AccountNumber, err = r.String("account"); err != nil {
		return a, err
	}
	balance, err := r.Int64("account")
	if err != nil {
		return a, err
	}
	a.Balance = domain.Money(balance)
	if a.LastActivity, err = r.Time("account"); err != nil {
		return a, err
	}
	count, err := r.Count("account")
	if err != nil {
		return a, err
	}
	for i := 0; i < count; i++ {
		t, err := DecodeTransfer(r)
		if err != nil {
			return a, err
		}
		a.History = append(a.History, t)
	}
	return a, nil
}

// ============================================================
// Item
// ============================================================

func EncodeItem(w *Writer, i domain.Item) error {
	w.PutInt32(i.ID)
	if err := w.PutString("item", i.Name); err != nil {
		return err
	}
	w.PutInt64(int64(i.Price))
	w.PutInt32(i.Stock)
	w.PutInt32(i.SoldCount)
	w.PutTime(i.LastRestock)
	return nil
}

func DecodeItem(r *Reader) (domain.Item, error) {
	var i domain.Item
	var err error
	if i.ID, err = r.Int32("item"); err != nil {
		return i, err
	}
	if i.Name, err = r.String("item"); err != nil {
		return i, err
	}
	price, err := r.Int64("item")
	if err != nil {
		return i, err
	}
	i.Price = domain.Money(price)
	if i.Stock, err = r.Int32("item"); err != nil {
		return i, err
	}
	if i.SoldCount, err = r.Int32("item"); err != nil {
		return i, err
	}
	i.LastRestock, err = r.Time("item")
	return i, err
}

// ============================================================
// Purchase
// ============================================================

func EncodePurchase(w *Writer, p domain.Purchase) error {
	w.PutInt32(p.ID)
	w.PutInt32(p.BuyerID)
	w.PutInt32(p.SellerID)
	w.PutInt32(p.ItemID)
	w.PutInt64(int64(p.Amount))
	w.PutInt32(int32(p.Status))
	w.PutTime(p.Timestamp)
	return nil
}

func DecodePurchase(r *Reader) (domain.Purchase, error) {
	var p domain.Purchase
	var err error
	if p.ID, err = r.Int32("purchase"); err != nil {
		return p, err
	}
	if p.BuyerID, err = r.Int32("purchase"); err != nil {
		return p, err
	}
	if p.SellerID, err = r.Int32("purchase"); err != nil {
		return p, err
	}
	if p.ItemID, err = r.Int32("purchase"); err != nil {
		return p, err
	}
	amount, err := r.Int64("purchase")
	if err != nil {
		return p, err
	}
	p.Amount = domain.Money(amount)
	status, err := r.Int32("purchase")
	if err != nil {
		return p, err
	}
	p.Status = domain.PurchaseStatus(status)
	if !p.Status.Valid() {
		return p, &domain.ErrDecoding{Record: "purchase", Offset: r.Offset(), Message: "unknown status value"}
	}
	p.Timestamp, err = r.Time("purchase")
	return p, err
}

// ============================================================
// Blobs
// ============================================================

// EncodeBankSnapshot lays out the bank blob: id, name, accounts,
// transfers.
func EncodeBankSnapshot(snap domain.BankSnapshot) ([]byte, error) {
	w := NewWriter()
	w.PutInt32(snap.ID)
	if err := w.PutString("bank", snap.Name); err != nil {
		return nil, err
	}
	w.PutUint64(uint64(len(snap.Accounts)))
	for _, a := range snap.Accounts {
		if err := EncodeAccount(w, a); err != nil {
			return nil, err
		}
	}
	w.PutUint64(uint64(len(snap.Transfers)))
	for _, t := range snap.Transfers {
		if err := EncodeTransfer(w, t); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// DecodeBankSnapshot parses a bank blob. Any failing record aborts
// the whole load; no partially-populated snapshot is returned.
func DecodeBankSnapshot(buf []byte) (domain.BankSnapshot, error) {
	var snap domain.BankSnapshot
	r := NewReader(buf)
	var err error
	if snap.ID, err = r.Int32("bank"); err != nil {
		return domain.BankSnapshot{}, err
	}
	if snap.Name, err = r.String("bank"); err != nil {
		return domain.BankSnapshot{}, err
	}
	count, err := r.Count("bank")
	if err != nil {
		return domain.BankSnapshot{}, err
	}
	for i := 0; i < count; i++ {
		a, err := DecodeAccount(r)
		if err != nil {
			return domain.BankSnapshot{}, err
		}
		snap.Accounts = append(snap.Accounts, a)
	}
	count, err = r.Count("bank")
	if err != nil {
		return domain.BankSnapshot{}, err
	}
	for i := 0; i < count; i++ {
		t, err := DecodeTransfer(r)
		if err != nil {
			return domain.BankSnapshot{}, err
		}
		snap.Transfers = append(snap.Transfers, t)
	}
	return snap, nil
}

// EncodeStoreSnapshot lays out the store blob: items, purchases.
// Buyers and sellers are not part of the on-disk contract.
func EncodeStoreSnapshot(snap domain.StoreSnapshot) ([]byte, error) {
	w := NewWriter()
	w.PutUint64(uint64(len(snap.Items)))
	for _, i := range snap.Items {
		if err := EncodeItem(w, i); err != nil {
			return nil, err
		}
	}
	w.PutUint64(uint64(len(snap.Purchases)))
	for _, p := range snap.Purchases {
		if err := EncodePurchase(w, p); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// DecodeStoreSnapshot parses a store blob with the same all-or-nothing
// policy as the bank blob.
func DecodeStoreSnapshot(buf []byte) (domain.StoreSnapshot, error) {
	var snap domain.StoreSnapshot
	r := NewReader(buf)
	count, err := r.Count("store")
	if err != nil {
		return domain.StoreSnapshot{}, err
	}
	for i := 0; i < count; i++ {
		item, err := DecodeItem(r)
		if err != nil {
			return domain.StoreSnapshot{}, err
		}
		snap.Items = append(snap.Items, item)
	}
	count, err = r.Count("store")
	if err != nil {
		return domain.StoreSnapshot{}, err
	}
	for i := 0; i < count; i++ {
		p, err := DecodePurchase(r)
		if err != nil {
			return domain.StoreSnapshot{}, err
		}
		snap.Purchases = append(snap.Purchases, p)
	}
	return snap, nil
}
