// Package records holds the bun models persisted by the journal
package records

import (
	"time"

	"github.com/uptrace/bun"
)

// Kind of operation an Entry records
const (
	KindImport = "import"
	KindIndex  = "index"
)

// Entry is one journaled import or index creation
type Entry struct {
	bun.BaseModel `bun:"table:journal_entries"`

	ID          string    `bun:"id,pk,type:text" json:"id"`
	Kind        string    `bun:"kind,notnull" json:"kind"`
	TableName   string    `bun:"table_name,notnull" json:"tableName"`
	Target      string    `bun:"target,notnull" json:"target"` // source file or indexed column
	RecordCount int64     `bun:"record_count,notnull,default:0" json:"recordCount"`
	Succeeded   bool      `bun:"succeeded,notnull" json:"succeeded"`
	Message     string    `bun:"message" json:"message,omitempty"`
	DurationMs  float64   `bun:"duration_ms,notnull,default:0" json:"durationMs"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
}
