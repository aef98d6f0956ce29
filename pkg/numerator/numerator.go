// Package numerator provides document auto-numbering backed by a sequence
// table. Numbers are strictly sequential per prefix and year
// ("ST-2025-000042"), suitable for documents that must not skip numbers.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the minimal database dependency.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Generator produces the next document number for a prefix.
type Generator interface {
	NextNumber(ctx context.Context, prefix string, at time.Time) (string, error)
}

// Service implements Generator with an UPDATE ... RETURNING on the
// sys_sequences table. Every call costs one round trip. Gap-free requires the
// querier to join the caller's transaction (the postgres TxManager does): the
// increment then rolls back with a failed document instead of burning the
// number.
type Service struct {
	querier Querier
}

// New creates a numerator service.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

const nextNumberSQL = `
	INSERT INTO sys_sequences (key, value)
	VALUES ($1, 1)
	ON CONFLICT (key) DO UPDATE SET value = sys_sequences.value + 1
	RETURNING value
`

// NextNumber allocates the next number for the prefix in the year of at.
func (s *Service) NextNumber(ctx context.Context, prefix string, at time.Time) (string, error) {
	key := fmt.Sprintf("%s_%d", prefix, at.Year())

	var seq int64
	if err := s.querier.QueryRow(ctx, nextNumberSQL, key).Scan(&seq); err != nil {
		return "", fmt.Errorf("allocate number for %s: %w", key, err)
	}

	return fmt.Sprintf("%s-%d-%06d", prefix, at.Year(), seq), nil
}

// Mock is an in-memory Generator for tests.
type Mock struct {
	counters map[string]int64
}

// NewMock creates a mock numerator.
func NewMock() *Mock {
	return &Mock{counters: make(map[string]int64)}
}

// NextNumber implements Generator.
func (m *Mock) NextNumber(_ context.Context, prefix string, at time.Time) (string, error) {
	key := fmt.Sprintf("%s_%d", prefix, at.Year())
	m.counters[key]++
	return fmt.Sprintf("%s-%d-%06d", prefix, at.Year(), m.counters[key]), nil
}
