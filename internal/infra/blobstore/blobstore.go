// Package blobstore is the persistence gateway: whole-ledger load and
// save to one binary blob per ledger. Writes are atomic (tmp file +
// rename) so a crash mid-save never corrupts the previous blob.
package blobstore

import (
	"context"
	"os"

	"github.com/pradipta/bankstore-go/internal/codec"
	"github.com/pradipta/bankstore-go/internal/domain"
	"github.com/pradipta/bankstore-go/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("infra/blobstore")

// Store reads and writes the two ledger blobs.
type Store struct {
	bankPath  string
	storePath string
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// New creates a gateway over the given blob paths.
func New(bankPath, storePath string, metrics *observability.Metrics, logger *zap.Logger) *Store {
	return &Store{bankPath: bankPath, storePath: storePath, metrics: metrics, logger: logger}
}

// LoadBank reads the bank blob. A missing file is a normal first run
// and yields an empty snapshot with no error. A malformed blob yields
// an empty snapshot plus the decode error, so the caller can log it
// and start empty instead of crashing.
func (s *Store) LoadBank(ctx context.Context) (domain.BankSnapshot, error) {
	_, span := tracer.Start(ctx, "blobstore.LoadBank")
	defer span.End()
	span.SetAttributes(attribute.String("path", s.bankPath))

	buf, err := s.read(s.bankPath)
	if err != nil || buf == nil {
		return domain.BankSnapshot{}, err
	}
	snap, err := codec.DecodeBankSnapshot(buf)
	if err != nil {
		s.metrics.IncrPersistence("load_fallback")
		return domain.BankSnapshot{}, &domain.ErrPersistence{Op: "load", Path: s.bankPath, Err: err}
	}
	s.metrics.IncrPersistence("load")
	return snap, nil
}

// SaveBank writes the bank blob atomically. Unlike load, save errors
// are always surfaced: a failed flush must not be silently dropped.
func (s *Store) SaveBank(ctx context.Context, snap domain.BankSnapshot) error {
	_, span := tracer.Start(ctx, "blobstore.SaveBank")
	defer span.End()

	buf, err := codec.EncodeBankSnapshot(snap)
	if err != nil {
		s.metrics.IncrPersistence("save_failure")
		return &domain.ErrPersistence{Op: "save", Path: s.bankPath, Err: err}
	}
	return s.write(s.bankPath, buf)
}

// LoadStore reads the store blob with the same fallback policy as
// LoadBank.
func (s *Store) LoadStore(ctx context.Context) (domain.StoreSnapshot, error) {
	_, span := tracer.Start(ctx, "blobstore.LoadStore")
	defer span.End()
	span.SetAttributes(attribute.String("path", s.storePath))

	buf, err := s.read(s.storePath)
	if err != nil || buf == nil {
		return domain.StoreSnapshot{}, err
	}
	snap, err := codec.DecodeStoreSnapshot(buf)
	if err != nil {
		s.metrics.IncrPersistence("load_fallback")
		return domain.StoreSnapshot{}, &domain.ErrPersistence{Op: "load", Path: s.storePath, Err: err}
	}
	s.metrics.IncrPersistence("load")
	return snap, nil
}

// SaveStore writes the store blob atomically.
func (s *Store) SaveStore(ctx context.Context, snap domain.StoreSnapshot) error {
	_, span := tracer.Start(ctx, "blobstore.SaveStore")
	defer span.End()

	buf, err := codec.EncodeStoreSnapshot(snap)
	if err != nil {
		s.metrics.IncrPersistence("save_failure")
		return &domain.ErrPersistence{Op: "save", Path: s.storePath, Err: err}
	}
	return s.write(s.storePath, buf)
}

func (s *Store) read(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.logger.Info("no blob found, starting empty", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		s.metrics.IncrPersistence("load_fallback")
		return nil, &domain.ErrPersistence{Op: "load", Path: path, Err: err}
	}
	return buf, nil
}

// write lands the blob through a temp file and rename, so the old
// blob survives a failed or interrupted write.
func (s *Store) write(path string, buf []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		s.metrics.IncrPersistence("save_failure")
		return &domain.ErrPersistence{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		s.metrics.IncrPersistence("save_failure")
		return &domain.ErrPersistence{Op: "save", Path: path, Err: err}
	}
	s.metrics.IncrPersistence("save")
	s.logger.Info("blob saved", zap.String("path", path), zap.Int("bytes", len(buf)))
	return nil
}
