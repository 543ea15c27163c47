package persistence

import (
	"context"
	"time"
)

// Row is one record of a table keyed by column name
type Row map[string]string

// Match selects rows whose columns equal every given value
type Match map[string]string

// Matches reports whether the row satisfies every column condition
func (r Row) Matches(m Match) bool {
	for column, value := range m {
		if r[column] != value {
			return false
		}
	}
	return true
}

// Clone copies the row
func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Table is the whole content of one CSV table
type Table struct {
	Headers []string
	Rows    []Row
}

// NewTable creates an empty table with the given header
func NewTable(headers []string) *Table {
	return &Table{Headers: append([]string(nil), headers...), Rows: []Row{}}
}

// HasColumn reports whether the header contains the column
func (t *Table) HasColumn(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// Filter returns the rows matching m in table order
func (t *Table) Filter(m Match) []Row {
	out := make([]Row, 0)
	for _, row := range t.Rows {
		if row.Matches(m) {
			out = append(out, row)
		}
	}
	return out
}

// Clone deep-copies the table
func (t *Table) Clone() *Table {
	c := NewTable(t.Headers)
	c.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		c.Rows[i] = row.Clone()
	}
	return c
}

// TableInfo describes the persisted state of a table
type TableInfo struct {
	Name       string    `json:"name"`
	Exists     bool      `json:"exists"`
	Rows       int       `json:"rows"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// TableStore is whole-table storage for CSV tables.
// Every mutating operation is an atomic read-modify-write of the entire table.
type TableStore interface {
	// Read returns all rows of the table; a missing table reads as empty
	//
	// Possible errors:
	// - ErrStorage: If the table cannot be read or parsed
	Read(ctx context.Context, table string) (*Table, error)

	// Write replaces the whole table
	//
	// Possible errors:
	// - ErrStorage: If the write fails or the rows do not fit the table header
	Write(ctx context.Context, table string, data *Table) error

	// Append adds one row at the end of the table
	Append(ctx context.Context, table string, row Row) error

	// Update applies patch to every row matching match and returns the number of rows changed.
	// Unknown columns in match or patch are rejected.
	Update(ctx context.Context, table string, match Match, patch Row) (int, error)

	// Delete removes every row matching match and returns the number of rows removed
	Delete(ctx context.Context, table string, match Match) (int, error)

	// Mutate runs fn on the current table and persists the result when fn returns nil.
	// No other mutation of the same table runs between the read and the write.
	Mutate(ctx context.Context, table string, fn func(data *Table) error) error

	// Exists reports whether the table has been created
	Exists(ctx context.Context, table string) (bool, error)

	// Backup copies the current table and returns the backup name
	Backup(ctx context.Context, table string) (string, error)

	// Info describes the persisted table
	Info(ctx context.Context, table string) (*TableInfo, error)
}
