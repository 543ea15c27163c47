package storage

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

// OpObserver records the outcome and latency of table operations
type OpObserver interface {
	ObserveTableOp(table, op, result string, elapsed time.Duration)
}

// InstrumentedStore decorates a TableStore with per-operation observations
type InstrumentedStore struct {
	next     persistence.TableStore
	observer OpObserver
}

// NewInstrumentedStore wraps next
func NewInstrumentedStore(next persistence.TableStore, observer OpObserver) *InstrumentedStore {
	return &InstrumentedStore{next: next, observer: observer}
}

func (s *InstrumentedStore) observe(table, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.observer.ObserveTableOp(table, op, result, time.Since(start))
}

func (s *InstrumentedStore) Read(ctx context.Context, table string) (*persistence.Table, error) {
	start := time.Now()
	t, err := s.next.Read(ctx, table)
	s.observe(table, OpRead, start, err)
	return t, err
}

func (s *InstrumentedStore) Write(ctx context.Context, table string, data *persistence.Table) error {
	start := time.Now()
	err := s.next.Write(ctx, table, data)
	s.observe(table, OpWrite, start, err)
	return err
}

func (s *InstrumentedStore) Append(ctx context.Context, table string, row persistence.Row) error {
	start := time.Now()
	err := s.next.Append(ctx, table, row)
	s.observe(table, OpAppend, start, err)
	return err
}

func (s *InstrumentedStore) Update(ctx context.Context, table string, match persistence.Match, patch persistence.Row) (int, error) {
	start := time.Now()
	n, err := s.next.Update(ctx, table, match, patch)
	s.observe(table, OpUpdate, start, err)
	return n, err
}

func (s *InstrumentedStore) Delete(ctx context.Context, table string, match persistence.Match) (int, error) {
	start := time.Now()
	n, err := s.next.Delete(ctx, table, match)
	s.observe(table, OpDelete, start, err)
	return n, err
}

// Mutate counts business rule rejections from fn as errors too
func (s *InstrumentedStore) Mutate(ctx context.Context, table string, fn func(data *persistence.Table) error) error {
	start := time.Now()
	err := s.next.Mutate(ctx, table, fn)
	s.observe(table, OpMutate, start, err)
	return err
}

func (s *InstrumentedStore) Exists(ctx context.Context, table string) (bool, error) {
	return s.next.Exists(ctx, table)
}

func (s *InstrumentedStore) Backup(ctx context.Context, table string) (string, error) {
	start := time.Now()
	name, err := s.next.Backup(ctx, table)
	s.observe(table, OpBackup, start, err)
	return name, err
}

func (s *InstrumentedStore) Info(ctx context.Context, table string) (*persistence.TableInfo, error) {
	return s.next.Info(ctx, table)
}
