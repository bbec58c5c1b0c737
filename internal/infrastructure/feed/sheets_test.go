package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `customerName,tableNumber,items,totalAmount,timestamp
Alice,4,"Curry, Rice",18.50,2026-08-30T12:00:00Z
Bob,,Soup,8,2026-08-30T12:05:00Z
,7,Ghost order,12,2026-08-30T12:06:00Z
Carol,2,"Noodles, Tea",not-a-number,2026-08-30T12:10:00Z
`

func newTestReader(t *testing.T, handler http.HandlerFunc) (*SheetsCSVReader, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	reader := NewSheetsCSVReader(
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithMaxRetries(2),
	)
	return reader, server
}

func TestSheetsCSVReader_FetchRows(t *testing.T) {
	reader, _ := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/spreadsheets/d/sheet-a/export")
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		fmt.Fprint(w, sampleCSV)
	})

	rows, err := reader.FetchRows(context.Background(), "sheet-a", "Orders", 1)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Header is row 1, data starts at row 2
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "Alice", rows[0].CustomerName)
	assert.Equal(t, "4", rows[0].TableNumber)
	assert.Equal(t, []string{"Curry", "Rice"}, rows[0].ItemNames())
	assert.True(t, rows[0].TotalAmount.Equal(decimal.NewFromFloat(18.50)))
	assert.True(t, rows[0].IsWellFormed())

	// Missing customer name
	assert.Equal(t, 4, rows[2].Row)
	assert.False(t, rows[2].IsWellFormed())

	// Unparseable total comes back as zero
	assert.True(t, rows[3].TotalAmount.IsZero())
	assert.False(t, rows[3].IsWellFormed())
}

func TestSheetsCSVReader_FetchRowsFromCursor(t *testing.T) {
	reader, _ := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleCSV)
	})

	rows, err := reader.FetchRows(context.Background(), "sheet-a", "Orders", 4)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[0].Row)
	assert.Equal(t, 5, rows[1].Row)
}

func TestSheetsCSVReader_HeaderlessSheet(t *testing.T) {
	reader, _ := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Dave,1,Burger,9.00,2026-08-30T13:00:00Z\n")
	})

	rows, err := reader.FetchRows(context.Background(), "sheet-b", "Orders", 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Row)
	assert.Equal(t, "Dave", rows[0].CustomerName)
}

func TestSheetsCSVReader_RetriesServerErrors(t *testing.T) {
	var calls int
	reader, _ := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, sampleCSV)
	})

	rows, err := reader.FetchRows(context.Background(), "sheet-a", "Orders", 1)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, 3, calls)
}

func TestSheetsCSVReader_ClientErrorIsNotRetried(t *testing.T) {
	var calls int
	reader, _ := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := reader.FetchRows(context.Background(), "missing-sheet", "Orders", 1)
	assert.ErrorIs(t, err, shared.ErrFeedUnreachable)
	assert.Equal(t, 1, calls)
}

func TestSheetsCSVReader_UnreachableFeed(t *testing.T) {
	server := httptest.NewServer(nil)
	server.Close() // nothing listens here anymore

	reader := NewSheetsCSVReader(
		WithBaseURL(server.URL),
		WithMaxRetries(1),
	)

	_, err := reader.FetchRows(context.Background(), "sheet-a", "Orders", 1)
	assert.ErrorIs(t, err, shared.ErrFeedUnreachable)
}

func TestSheetsCSVReader_CheckReachable(t *testing.T) {
	t.Run("reachable sheet", func(t *testing.T) {
		reader, _ := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, sampleCSV)
		})
		assert.True(t, reader.CheckReachable(context.Background(), "sheet-a"))
	})

	t.Run("missing sheet", func(t *testing.T) {
		reader, _ := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		assert.False(t, reader.CheckReachable(context.Background(), "sheet-a"))
	})
}
