package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orderdesk/backend/internal/domain/sheetfeed"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultBaseURL      = "https://docs.google.com"
	defaultFetchTimeout = 15 * time.Second
	defaultMaxRetries   = 3

	// headerRow is the row number of the column header line in the sheet
	headerRow = 1
)

// SheetsCSVReader reads feed rows from a Google Sheets spreadsheet via
// its public CSV export endpoint. No credentials are involved; the sheet
// must be link-readable.
type SheetsCSVReader struct {
	httpClient *http.Client
	baseURL    string
	maxRetries uint64
	logger     *zap.Logger
}

// SheetsCSVReaderOption is a functional option for configuring the reader
type SheetsCSVReaderOption func(*SheetsCSVReader)

// WithHTTPClient sets the HTTP client used for fetches
func WithHTTPClient(client *http.Client) SheetsCSVReaderOption {
	return func(r *SheetsCSVReader) {
		r.httpClient = client
	}
}

// WithBaseURL overrides the export endpoint base URL
func WithBaseURL(baseURL string) SheetsCSVReaderOption {
	return func(r *SheetsCSVReader) {
		r.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithMaxRetries sets how many times a failed fetch is retried
func WithMaxRetries(n uint64) SheetsCSVReaderOption {
	return func(r *SheetsCSVReader) {
		r.maxRetries = n
	}
}

// WithReaderLogger sets the logger for the reader
func WithReaderLogger(logger *zap.Logger) SheetsCSVReaderOption {
	return func(r *SheetsCSVReader) {
		r.logger = logger
	}
}

// NewSheetsCSVReader creates a CSV export feed reader
func NewSheetsCSVReader(opts ...SheetsCSVReaderOption) *SheetsCSVReader {
	r := &SheetsCSVReader{
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		baseURL:    defaultBaseURL,
		maxRetries: defaultMaxRetries,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchRows returns data rows numbered fromRow and later, in sheet
// order. Row numbers are 1-based sheet positions, the header line
// included, so callers can use them directly as sync cursors.
func (r *SheetsCSVReader) FetchRows(ctx context.Context, spreadsheetID, sheetName string, fromRow int) ([]sheetfeed.FeedRow, error) {
	body, err := r.fetchCSV(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	rows, err := r.parseRows(body)
	if err != nil {
		return nil, err
	}

	filtered := make([]sheetfeed.FeedRow, 0, len(rows))
	for _, row := range rows {
		if row.Row >= fromRow {
			filtered = append(filtered, row)
		}
	}

	r.logger.Debug("fetched feed rows",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("sheet_name", sheetName),
		zap.Int("from_row", fromRow),
		zap.Int("returned", len(filtered)),
	)
	return filtered, nil
}

// CheckReachable reports whether the spreadsheet's CSV export answers at all
func (r *SheetsCSVReader) CheckReachable(ctx context.Context, spreadsheetID string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.exportURL(spreadsheetID), nil)
	if err != nil {
		return false
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// fetchCSV downloads the CSV export with retries. Transport errors and
// 5xx answers are retried with exponential backoff; a 4xx answer will
// not get better on retry and fails immediately.
func (r *SheetsCSVReader) fetchCSV(ctx context.Context, spreadsheetID string) (string, error) {
	exportURL := r.exportURL(spreadsheetID)

	operation := func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
		if err != nil {
			return "", backoff.Permanent(err)
		}

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return "", backoff.Permanent(fmt.Errorf("feed answered %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("feed answered %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), ctx)

	body, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		r.logger.Warn("feed fetch failed",
			zap.String("spreadsheet_id", spreadsheetID),
			zap.Error(err),
		)
		return "", shared.ErrFeedUnreachable
	}
	return body, nil
}

// exportURL builds the CSV export URL for a spreadsheet
func (r *SheetsCSVReader) exportURL(spreadsheetID string) string {
	return fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=0",
		r.baseURL, url.PathEscape(spreadsheetID))
}

// parseRows turns the CSV body into feed rows. Short or malformed lines
// still come back as rows; whether they can become orders is the
// ingestion layer's call.
func (r *SheetsCSVReader) parseRows(body string) ([]sheetfeed.FeedRow, error) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// The first line may be a column header; detect it the same way the
	// sheet template names its first column
	start := 0
	if strings.EqualFold(field(records[0], 0), "customerName") {
		start = 1
	}

	rows := make([]sheetfeed.FeedRow, 0, len(records)-start)
	for i, record := range records[start:] {
		total := decimal.Zero
		if raw := field(record, 3); raw != "" {
			if parsed, err := decimal.NewFromString(raw); err == nil {
				total = parsed
			}
		}

		rows = append(rows, sheetfeed.FeedRow{
			Row:          headerRow + start + i,
			CustomerName: field(record, 0),
			TableNumber:  field(record, 1),
			Items:        field(record, 2),
			TotalAmount:  total,
			Timestamp:    field(record, 4),
		})
	}
	return rows, nil
}

// field returns the trimmed column value, empty when the line is short
func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Ensure SheetsCSVReader implements FeedReader
var _ sheetfeed.FeedReader = (*SheetsCSVReader)(nil)
