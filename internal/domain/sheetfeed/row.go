package sheetfeed

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeedRow is one raw record from the external feed representing a
// candidate order. Item names arrive as a comma-separated list; the feed
// carries a row total but no per-item prices.
type FeedRow struct {
	Row          int
	CustomerName string
	TableNumber  string
	Items        string
	TotalAmount  decimal.Decimal
	Timestamp    string
}

// IsWellFormed reports whether the row carries enough data to become an
// order. Malformed rows are dropped during ingestion, not retried.
func (r FeedRow) IsWellFormed() bool {
	if strings.TrimSpace(r.CustomerName) == "" {
		return false
	}
	if len(r.ItemNames()) == 0 {
		return false
	}
	return r.TotalAmount.IsPositive()
}

// ItemNames splits the comma-separated item list, dropping empty entries
func (r FeedRow) ItemNames() []string {
	parts := strings.Split(r.Items, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}
