// Package port defines the interfaces between the application wiring
// and its collaborators. The ledgers are consumed as concrete
// services; only the persistence boundary is abstracted, so the blob
// gateway can be swapped without touching lifecycle code.
package port

import (
	"context"

	"github.com/pradipta/bankstore-go/internal/domain"
)

// BankArchiver loads and saves the bank blob at lifecycle points.
type BankArchiver interface {
	LoadBank(ctx context.Context) (domain.BankSnapshot, error)
	SaveBank(ctx context.Context, snap domain.BankSnapshot) error
}

// StoreArchiver loads and saves the store blob at lifecycle points.
type StoreArchiver interface {
	LoadStore(ctx context.Context) (domain.StoreSnapshot, error)
	SaveStore(ctx context.Context, snap domain.StoreSnapshot) error
}

// Archiver is the full persistence gateway.
type Archiver interface {
	BankArchiver
	StoreArchiver
}
