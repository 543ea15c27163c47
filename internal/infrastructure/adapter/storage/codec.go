package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

var sanitizer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// SanitizeValue replaces line breaks so every record stays on one line; commas are quoted by the writer
func SanitizeValue(v string) string {
	return sanitizer.Replace(v)
}

// DecodeTable parses CSV content; short rows read missing columns as empty
func DecodeTable(data []byte) (*persistence.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err == io.EOF {
		return persistence.NewTable(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", errs.ErrCSVValidation, err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}

	table := persistence.NewTable(headers)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCSVValidation, err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		row := make(persistence.Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// EncodeTable renders the table as CSV with a header row.
// A row column missing from the header is a CSV validation error.
func EncodeTable(table *persistence.Table) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("%w: table has no header", errs.ErrCSVValidation)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Headers); err != nil {
		return nil, err
	}

	record := make([]string, len(table.Headers))
	for i, row := range table.Rows {
		for column := range row {
			if !table.HasColumn(column) {
				return nil, fmt.Errorf("%w: row %d has unknown column %q", errs.ErrCSVValidation, i, column)
			}
		}
		for j, h := range table.Headers {
			record[j] = SanitizeValue(row[h])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
