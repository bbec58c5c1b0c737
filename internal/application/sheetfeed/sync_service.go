package sheetfeed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	appordering "github.com/orderdesk/backend/internal/application/ordering"
	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/sheetfeed"
	"github.com/orderdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// timestamp layouts the feed has been seen to produce
var feedTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
}

// SyncService pulls rows from the external feed and turns them into
// orders. Runs are serialized by a mutex: an overlapping invocation waits
// for the running one and then re-reads the cursor, so re-running a sync
// that already ingested everything is a no-op.
type SyncService struct {
	mu         sync.Mutex
	configRepo sheetfeed.ConfigRepository
	orderRepo  ordering.OrderRepository
	reader     sheetfeed.FeedReader
	eventBus   shared.EventPublisher
	logger     *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	configRepo sheetfeed.ConfigRepository,
	orderRepo ordering.OrderRepository,
	reader sheetfeed.FeedReader,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		configRepo: configRepo,
		orderRepo:  orderRepo,
		reader:     reader,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// RunSync executes one sync pass against the active configuration. The
// cursor only advances after the fetched batch has been processed, never
// moves when the feed is unreachable, and never moves past a row whose
// store write failed.
func (s *SyncService) RunSync(ctx context.Context) (*SyncResultResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.configRepo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NO_SYNC_CONFIG",
				"No active sheet configuration")
		}
		return nil, fmt.Errorf("failed to load sheet configuration: %w", err)
	}

	if !s.reader.CheckReachable(ctx, config.SpreadsheetID) {
		return nil, shared.ErrFeedUnreachable
	}

	rows, err := s.reader.FetchRows(ctx, config.SpreadsheetID, config.SheetName, config.LastSyncRow)
	if err != nil {
		return nil, err
	}

	result, firstFailedRow := s.ingestRows(ctx, rows)
	result.LastSyncRow = config.LastSyncRow

	if len(rows) > 0 {
		next := maxRow(rows) + 1
		// A transient store failure holds the cursor at the failed row so
		// the next sync retries it; rows created after it are deduplicated
		// on the retry pass. Malformed rows never hold the cursor back.
		if firstFailedRow > 0 && firstFailedRow < next {
			next = firstFailedRow
		}
		if next > config.LastSyncRow {
			if err := s.configRepo.UpdateCursor(ctx, config.ID, next); err != nil {
				s.logger.Error("failed to advance sync cursor",
					zap.String("config_id", config.ID.String()),
					zap.Int("next_row", next),
					zap.Error(err))
				result.SoftErrors = append(result.SoftErrors,
					fmt.Sprintf("cursor not advanced to row %d: %v", next, err))
			} else {
				result.LastSyncRow = next
			}
		}
	}

	s.logger.Info("sync completed",
		zap.String("spreadsheet_id", config.SpreadsheetID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("rejected", result.Rejected),
		zap.Int("last_sync_row", result.LastSyncRow))

	return result, nil
}

// ingestRows converts feed rows into orders. Malformed rows are dropped,
// duplicates are skipped, and store failures on individual rows are
// recorded as soft errors without stopping the batch. The second return
// value is the lowest row number whose store write failed, zero when the
// whole batch stored cleanly.
func (s *SyncService) ingestRows(ctx context.Context, rows []sheetfeed.FeedRow) (*SyncResultResponse, int) {
	result := &SyncResultResponse{Message: "Sync completed"}
	firstFailedRow := 0
	if len(rows) == 0 {
		return result, firstFailedRow
	}

	rowIDs := make([]string, len(rows))
	for i, row := range rows {
		rowIDs[i] = strconv.Itoa(row.Row)
	}
	existing, err := s.orderRepo.ExistingSheetRowIDs(ctx, rowIDs)
	if err != nil {
		s.logger.Warn("dedup lookup failed, relying on unique index",
			zap.Error(err))
		existing = map[string]bool{}
	}

	for _, row := range rows {
		if !row.IsWellFormed() {
			result.Rejected++
			continue
		}

		rowID := strconv.Itoa(row.Row)
		if existing[rowID] {
			result.Skipped++
			continue
		}

		order, err := ordering.NewImportedOrder(
			row.CustomerName,
			row.TableNumber,
			row.ItemNames(),
			row.TotalAmount,
			rowID,
			parseFeedTimestamp(row.Timestamp),
		)
		if err != nil {
			result.Rejected++
			continue
		}

		if err := s.orderRepo.Create(ctx, order); err != nil {
			// The unique index on the row identifier catches inserts
			// racing past the batch lookup
			if errors.Is(err, shared.ErrAlreadyExists) {
				result.Skipped++
				continue
			}
			s.logger.Warn("failed to store imported order",
				zap.Int("row", row.Row),
				zap.Error(err))
			result.SoftErrors = append(result.SoftErrors,
				fmt.Sprintf("row %d: %v", row.Row, err))
			if firstFailedRow == 0 || row.Row < firstFailedRow {
				firstFailedRow = row.Row
			}
			continue
		}

		if err := s.eventBus.Publish(ctx, ordering.NewOrderCreatedEvent(order)); err != nil {
			s.logger.Warn("failed to publish order created event",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
		result.Created++
		result.Orders = append(result.Orders, appordering.NewOrderResponse(order))
	}

	return result, firstFailedRow
}

func maxRow(rows []sheetfeed.FeedRow) int {
	max := 0
	for _, row := range rows {
		if row.Row > max {
			max = row.Row
		}
	}
	return max
}

func parseFeedTimestamp(value string) time.Time {
	for _, layout := range feedTimestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
