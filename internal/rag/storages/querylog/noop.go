package querylog

import (
	"context"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// NoopQueryLog discards records. It is used when no MongoDB address is
// configured, so answering never depends on the history store.
type NoopQueryLog struct{}

// NewNoopQueryLog creates a query log that keeps nothing.
func NewNoopQueryLog() *NoopQueryLog {
	return &NoopQueryLog{}
}

func (NoopQueryLog) Record(ctx context.Context, rec *interfaces.QueryRecord) error {
	return nil
}

func (NoopQueryLog) Recent(ctx context.Context, limit int) ([]*interfaces.QueryRecord, error) {
	return nil, nil
}

// compile-time check to ensure NoopQueryLog implements QueryLog
var _ interfaces.QueryLog = (*NoopQueryLog)(nil)
