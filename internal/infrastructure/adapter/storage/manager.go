package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

// Table operations, used in storage errors and metrics
const (
	OpRead    = "read"
	OpWrite   = "write"
	OpAppend  = "append"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpMutate  = "mutate"
	OpBackup  = "backup"
	OpInfo    = "info"
	OpLock    = "lock"
	OpMigrate = "migrate"
)

// Health states
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// ManagerOptions tunes the Manager
type ManagerOptions struct {
	// BackupOnWrite copies an existing table before every write
	BackupOnWrite bool
}

// Manager implements persistence.TableStore over a Backend.
// Mutations of one table are serialized in-process and guarded by the backend lock.
type Manager struct {
	backend Backend
	opts    ManagerOptions
	logger  coreport.Logger

	schemaMu sync.RWMutex
	schemas  map[string][]string

	locksMu sync.Mutex
	locks   map[string]*sync.RWMutex
}

// NewManager creates a Manager over the selected backend
func NewManager(backend Backend, opts ManagerOptions, logger coreport.Logger) *Manager {
	return &Manager{
		backend: backend,
		opts:    opts,
		logger:  logger,
		schemas: make(map[string][]string),
		locks:   make(map[string]*sync.RWMutex),
	}
}

// BackendName reports the active backend
func (m *Manager) BackendName() string {
	return m.backend.Name()
}

// RegisterTable declares the canonical header of a table
func (m *Manager) RegisterTable(table string, headers []string) {
	m.schemaMu.Lock()
	defer m.schemaMu.Unlock()
	m.schemas[table] = append([]string(nil), headers...)
}

// Tables lists the registered tables in name order
func (m *Manager) Tables() []string {
	m.schemaMu.RLock()
	defer m.schemaMu.RUnlock()
	names := make([]string, 0, len(m.schemas))
	for name := range m.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) schema(table string) ([]string, bool) {
	m.schemaMu.RLock()
	defer m.schemaMu.RUnlock()
	h, ok := m.schemas[table]
	return h, ok
}

func (m *Manager) tableLock(table string) *sync.RWMutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[table]
	if !ok {
		l = &sync.RWMutex{}
		m.locks[table] = l
	}
	return l
}

// Initialize creates every registered table that does not exist yet
func (m *Manager) Initialize(ctx context.Context) error {
	for _, table := range m.Tables() {
		headers, _ := m.schema(table)
		if err := m.EnsureTable(ctx, table, headers); err != nil {
			return err
		}
	}
	m.logger.Info("Storage initialized", map[string]any{
		"backend": m.backend.Name(),
		"tables":  m.Tables(),
	})
	return nil
}

// EnsureTable writes an empty table with the given header when the table is missing
func (m *Manager) EnsureTable(ctx context.Context, table string, headers []string) error {
	if _, ok := m.schema(table); !ok {
		m.RegisterTable(table, headers)
	}

	return m.withWriteLock(ctx, table, OpWrite, func() error {
		exists, err := m.backend.Exists(ctx, table)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		m.logger.Info("Creating table", map[string]any{"table": table})
		return m.store(ctx, table, persistence.NewTable(headers))
	})
}

// withWriteLock runs fn under the in-process table lock and the backend lock
func (m *Manager) withWriteLock(ctx context.Context, table, op string, fn func() error) error {
	mu := m.tableLock(table)
	mu.Lock()
	defer mu.Unlock()

	unlock, err := m.backend.Lock(ctx, table)
	if err != nil {
		return errs.NewStorageError(table, OpLock, err)
	}
	defer unlock()

	if err := fn(); err != nil {
		if errs.IsStorageError(err) {
			return err
		}
		var verr *errs.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		return errs.NewStorageError(table, op, err)
	}
	return nil
}

// load reads and decodes a table, aligning it with the registered header
func (m *Manager) load(ctx context.Context, table string) (*persistence.Table, error) {
	headers, registered := m.schema(table)

	data, err := m.backend.ReadTable(ctx, table)
	if errors.Is(err, ErrTableNotFound) {
		return persistence.NewTable(headers), nil
	}
	if err != nil {
		return nil, errs.NewStorageError(table, OpRead, err)
	}

	t, err := DecodeTable(data)
	if err != nil {
		return nil, errs.NewStorageError(table, OpRead, err)
	}
	if len(t.Headers) == 0 {
		t.Headers = append([]string(nil), headers...)
	}
	if registered {
		for _, h := range headers {
			if !t.HasColumn(h) {
				t.Headers = append(t.Headers, h)
				for _, row := range t.Rows {
					row[h] = ""
				}
			}
		}
	}
	return t, nil
}

// store encodes and writes a table, taking a backup first when configured
func (m *Manager) store(ctx context.Context, table string, t *persistence.Table) error {
	data, err := EncodeTable(t)
	if err != nil {
		return errs.NewStorageError(table, OpWrite, err)
	}

	if m.opts.BackupOnWrite {
		if _, err := m.backend.Backup(ctx, table); err != nil && !errors.Is(err, ErrTableNotFound) {
			m.logger.Warn("Pre-write backup failed", map[string]any{
				"table": table,
				"error": err.Error(),
			})
		}
	}

	if err := m.backend.WriteTable(ctx, table, data); err != nil {
		return errs.NewStorageError(table, OpWrite, err)
	}
	return nil
}

// Read returns the whole table; a missing table reads as empty
func (m *Manager) Read(ctx context.Context, table string) (*persistence.Table, error) {
	mu := m.tableLock(table)
	mu.RLock()
	defer mu.RUnlock()
	return m.load(ctx, table)
}

// Write replaces the whole table
func (m *Manager) Write(ctx context.Context, table string, data *persistence.Table) error {
	return m.withWriteLock(ctx, table, OpWrite, func() error {
		t := data.Clone()
		if headers, ok := m.schema(table); ok && len(t.Headers) == 0 {
			t.Headers = append([]string(nil), headers...)
		}
		return m.store(ctx, table, t)
	})
}

// Append adds one row at the end of the table
func (m *Manager) Append(ctx context.Context, table string, row persistence.Row) error {
	return m.Mutate(ctx, table, func(t *persistence.Table) error {
		t.Rows = append(t.Rows, row.Clone())
		return nil
	})
}

// Update patches every row matching match and returns how many rows changed
func (m *Manager) Update(ctx context.Context, table string, match persistence.Match, patch persistence.Row) (int, error) {
	var updated int
	err := m.Mutate(ctx, table, func(t *persistence.Table) error {
		if err := checkColumns(t, match, "match"); err != nil {
			return err
		}
		if err := checkColumns(t, patch, "patch"); err != nil {
			return err
		}
		for _, row := range t.Rows {
			if !row.Matches(match) {
				continue
			}
			for column, value := range patch {
				row[column] = value
			}
			updated++
		}
		if updated == 0 {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return 0, nil
	}
	return updated, err
}

// Delete removes every row matching match and returns how many rows were removed
func (m *Manager) Delete(ctx context.Context, table string, match persistence.Match) (int, error) {
	var removed int
	err := m.Mutate(ctx, table, func(t *persistence.Table) error {
		if err := checkColumns(t, match, "match"); err != nil {
			return err
		}
		kept := t.Rows[:0]
		for _, row := range t.Rows {
			if row.Matches(match) {
				removed++
				continue
			}
			kept = append(kept, row)
		}
		t.Rows = kept
		if removed == 0 {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return 0, nil
	}
	return removed, err
}

// errNoChange aborts a mutation without writing
var errNoChange = errors.New("no rows changed")

func checkColumns[M ~map[string]string](t *persistence.Table, columns M, what string) error {
	for column := range columns {
		if !t.HasColumn(column) {
			return errs.NewValidationError(what, fmt.Sprintf("unknown column %q", column))
		}
	}
	return nil
}

// Mutate runs fn on the current table and writes the result when fn succeeds.
// Errors returned by fn are passed through unchanged.
func (m *Manager) Mutate(ctx context.Context, table string, fn func(data *persistence.Table) error) error {
	var fnErr error
	err := m.withWriteLock(ctx, table, OpMutate, func() error {
		t, err := m.load(ctx, table)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			fnErr = err
			return nil
		}
		return m.store(ctx, table, t)
	})
	if fnErr != nil {
		return fnErr
	}
	return err
}

// Exists reports whether the table has been created
func (m *Manager) Exists(ctx context.Context, table string) (bool, error) {
	ok, err := m.backend.Exists(ctx, table)
	if err != nil {
		return false, errs.NewStorageError(table, OpInfo, err)
	}
	return ok, nil
}

// Backup copies the current table and returns the backup name
func (m *Manager) Backup(ctx context.Context, table string) (string, error) {
	var name string
	err := m.withWriteLock(ctx, table, OpBackup, func() error {
		var err error
		name, err = m.backend.Backup(ctx, table)
		return err
	})
	if err == nil {
		m.logger.Info("Table backed up", map[string]any{"table": table, "backup": name})
	}
	return name, err
}

// Info describes the persisted table including its row count
func (m *Manager) Info(ctx context.Context, table string) (*persistence.TableInfo, error) {
	obj, err := m.backend.Info(ctx, table)
	if err != nil {
		return nil, errs.NewStorageError(table, OpInfo, err)
	}
	info := &persistence.TableInfo{
		Name:       table,
		Exists:     obj.Exists,
		SizeBytes:  obj.SizeBytes,
		ModifiedAt: obj.ModifiedAt,
	}
	if obj.Exists {
		t, err := m.Read(ctx, table)
		if err != nil {
			return nil, err
		}
		info.Rows = len(t.Rows)
	}
	return info, nil
}

// HealthReport is the storage status exposed on /api/health/storage
type HealthReport struct {
	Status    string                            `json:"status"`
	Backend   string                            `json:"backend"`
	CheckedAt time.Time                         `json:"checked_at"`
	Tables    map[string]*persistence.TableInfo `json:"tables"`
	Errors    map[string]string                 `json:"errors,omitempty"`
}

// Health inspects every registered table; a missing or unreadable table degrades the report
func (m *Manager) Health(ctx context.Context, now time.Time) *HealthReport {
	report := &HealthReport{
		Status:    StatusHealthy,
		Backend:   m.backend.Name(),
		CheckedAt: now,
		Tables:    make(map[string]*persistence.TableInfo),
	}

	for _, table := range m.Tables() {
		info, err := m.Info(ctx, table)
		if err != nil {
			if report.Errors == nil {
				report.Errors = make(map[string]string)
			}
			report.Errors[table] = err.Error()
			report.Status = StatusDegraded
			continue
		}
		report.Tables[table] = info
		if !info.Exists {
			report.Status = StatusDegraded
		}
	}
	return report
}

// MigrationResult counts what MigrateTo copied
type MigrationResult struct {
	Tables map[string]int `json:"tables"` // rows copied per table
}

// MigrateTo copies every registered table into dst. Tables already present in dst are overwritten.
func (m *Manager) MigrateTo(ctx context.Context, dst Backend) (*MigrationResult, error) {
	result := &MigrationResult{Tables: make(map[string]int)}

	for _, table := range m.Tables() {
		err := m.withWriteLock(ctx, table, OpMigrate, func() error {
			t, err := m.load(ctx, table)
			if err != nil {
				return err
			}
			data, err := EncodeTable(t)
			if err != nil {
				return err
			}

			unlock, err := dst.Lock(ctx, table)
			if err != nil {
				return err
			}
			defer unlock()

			// a read primes conditional writes on backends that use them
			if _, err := dst.ReadTable(ctx, table); err != nil && !errors.Is(err, ErrTableNotFound) {
				return err
			}
			if err := dst.WriteTable(ctx, table, data); err != nil {
				return err
			}
			result.Tables[table] = len(t.Rows)
			return nil
		})
		if err != nil {
			return result, err
		}

		m.logger.Info("Table migrated", map[string]any{
			"table":  table,
			"rows":   result.Tables[table],
			"source": m.backend.Name(),
			"target": dst.Name(),
		})
	}
	return result, nil
}

// PruneBackups removes backups older than the retention window and returns how many were removed
func (m *Manager) PruneBackups(ctx context.Context, now time.Time, retention time.Duration) (int, error) {
	backups, err := m.backend.ListBackups(ctx)
	if err != nil {
		return 0, errs.NewStorageError("backups", OpBackup, err)
	}

	cutoff := now.Add(-retention)
	removed := 0
	for _, b := range backups {
		if !b.ModifiedAt.Before(cutoff) {
			continue
		}
		if err := m.backend.RemoveBackup(ctx, b.Name); err != nil {
			m.logger.Warn("Failed to remove backup", map[string]any{
				"backup": b.Name,
				"error":  err.Error(),
			})
			continue
		}
		removed++
	}
	return removed, nil
}
