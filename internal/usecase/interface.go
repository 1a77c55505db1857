package usecase

import (
	"context"
	"io"

	"credit2cash/internal/domain"
)

// KeyValueStore is the durable backend behind the session store and the ledger.
// Get returns domain.ErrNotFound for a key that was never written or was deleted.
//
//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Sampler yields uniform samples in [0,1). *rand.Rand satisfies it.
type Sampler interface {
	Float64() float64
}

// StatementWriter renders the transaction history for export.
type StatementWriter interface {
	WriteStatement(ctx context.Context, w io.Writer, txs []domain.Transaction) error
}
