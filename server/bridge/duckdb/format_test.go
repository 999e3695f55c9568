package duckdb

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCell(t *testing.T) {
	ts := time.Date(2024, 3, 1, 13, 4, 5, 600, time.UTC)

	tests := []struct {
		name   string
		value  any
		dbType string
		want   string
	}{
		{"null", nil, "", "NULL"},
		{"blob", []byte{1, 2, 3, 4}, "BLOB", "BLOB(4)"},
		{"uuid", []byte{0x55, 0x0e, 0x84, 0x00, 0xe2, 0x9b, 0x41, 0xd4, 0xa7, 0x16, 0x44, 0x66, 0x55, 0x44, 0x00, 0x00}, "UUID", "550e8400-e29b-41d4-a716-446655440000"},
		{"sixteen byte blob", make([]byte, 16), "BLOB", "BLOB(16)"},
		{"string", "abc", "VARCHAR", "abc"},
		{"bool", false, "BOOLEAN", "false"},
		{"int32", int32(-7), "INTEGER", "-7"},
		{"uint64", uint64(18446744073709551615), "UBIGINT", "18446744073709551615"},
		{"float", 1.5, "DOUBLE", "1.5"},
		{"float32", float32(0.1), "FLOAT", "0.1"},
		{"hugeint", big.NewInt(1 << 40), "HUGEINT", "1099511627776"},
		{"date", ts, "DATE", "2024-03-01"},
		{"timestamp", ts, "TIMESTAMP", "2024-03-01T13:04:05.0000006Z"},
		{"list", []any{int32(1), nil}, "INTEGER[]", "[1, NULL]"},
		{"struct", map[string]any{"b": "x", "a": int64(1)}, "STRUCT", "{a: 1, b: x}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.value, tt.dbType))
		})
	}
}
