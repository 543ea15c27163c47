package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
)

func TestDecodeTable(t *testing.T) {
	t.Run("Short rows read missing columns as empty", func(t *testing.T) {
		table, err := DecodeTable([]byte("a,b,c\n1,2\n4,5,6\n"))
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, persistence.Row{"a": "1", "b": "2", "c": ""}, table.Rows[0])
		assert.Equal(t, "6", table.Rows[1]["c"])
	})

	t.Run("Empty content", func(t *testing.T) {
		table, err := DecodeTable(nil)
		require.NoError(t, err)
		assert.Empty(t, table.Headers)
		assert.Empty(t, table.Rows)
	})

	t.Run("Byte order mark is stripped", func(t *testing.T) {
		table, err := DecodeTable([]byte("\ufeffuser_id,name\nUSR1,x\n"))
		require.NoError(t, err)
		assert.Equal(t, "USR1", table.Rows[0]["user_id"])
	})

	t.Run("Broken quoting", func(t *testing.T) {
		_, err := DecodeTable([]byte("a,b\n\"unterminated,2\n"))
		assert.ErrorIs(t, err, errs.ErrCSVValidation)
	})
}

func TestEncodeTable(t *testing.T) {
	table := persistence.NewTable([]string{"id", "description"})
	table.Rows = append(table.Rows, persistence.Row{"id": "1", "description": "rent, august\nsecond line"})

	data, err := EncodeTable(table)
	require.NoError(t, err)
	assert.Equal(t, "id,description\n1,\"rent, august second line\"\n", string(data))

	decoded, err := DecodeTable(data)
	require.NoError(t, err)
	assert.Equal(t, "rent, august second line", decoded.Rows[0]["description"])
}

func TestEncodeTable_RejectsUnknownColumns(t *testing.T) {
	table := persistence.NewTable([]string{"id"})
	table.Rows = append(table.Rows, persistence.Row{"id": "1", "extra": "x"})

	_, err := EncodeTable(table)
	assert.ErrorIs(t, err, errs.ErrCSVValidation)

	_, err = EncodeTable(persistence.NewTable(nil))
	assert.ErrorIs(t, err, errs.ErrCSVValidation)
}
