package sheetfeed

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFeedRow_IsWellFormed(t *testing.T) {
	valid := FeedRow{
		Row:          2,
		CustomerName: "Ann",
		Items:        "Soup,Bread",
		TotalAmount:  decimal.NewFromFloat(12.50),
	}

	tests := []struct {
		name   string
		mutate func(r *FeedRow)
		want   bool
	}{
		{"valid row", func(r *FeedRow) {}, true},
		{"empty customer", func(r *FeedRow) { r.CustomerName = " " }, false},
		{"empty items", func(r *FeedRow) { r.Items = "" }, false},
		{"only commas in items", func(r *FeedRow) { r.Items = ", ," }, false},
		{"zero total", func(r *FeedRow) { r.TotalAmount = decimal.Zero }, false},
		{"negative total", func(r *FeedRow) { r.TotalAmount = decimal.NewFromFloat(-1) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := valid
			tt.mutate(&row)
			assert.Equal(t, tt.want, row.IsWellFormed())
		})
	}
}

func TestFeedRow_ItemNames(t *testing.T) {
	row := FeedRow{Items: " Soup , Bread,,Tea "}
	assert.Equal(t, []string{"Soup", "Bread", "Tea"}, row.ItemNames())
}
