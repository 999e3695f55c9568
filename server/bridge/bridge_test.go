package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"sample.parquet", "sample"},
		{"/data/my-file.v2.parquet", "my_file_v2"},
		{"C:/x/sales 2024.parquet", "sales_2024"},
		{"donnée.parquet", "donnée"},
		{"数据²-raw.parquet", "数据²_raw"},
		{".parquet", "imported"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TableNameFromPath(tt.path))
		})
	}
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "idx_t1_colX", IndexName("t1", "colX"))
}
