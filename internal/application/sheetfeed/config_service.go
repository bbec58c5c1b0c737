package sheetfeed

import (
	"context"
	"fmt"

	"github.com/orderdesk/backend/internal/domain/sheetfeed"
	"go.uber.org/zap"
)

// ConfigService manages the feed configuration
type ConfigService struct {
	configRepo sheetfeed.ConfigRepository
	reader     sheetfeed.FeedReader
	logger     *zap.Logger
}

// NewConfigService creates a new ConfigService
func NewConfigService(
	configRepo sheetfeed.ConfigRepository,
	reader sheetfeed.FeedReader,
	logger *zap.Logger,
) *ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigService{
		configRepo: configRepo,
		reader:     reader,
		logger:     logger,
	}
}

// GetActive returns the currently active configuration
func (s *ConfigService) GetActive(ctx context.Context) (*SheetConfigResponse, error) {
	config, err := s.configRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	resp := toConfigResponse(config)
	return &resp, nil
}

// Save registers a new configuration as active. Any previously active
// configuration is deactivated; the new one starts with a fresh cursor.
func (s *ConfigService) Save(ctx context.Context, req SheetConfigRequest) (*SheetConfigResponse, error) {
	config, err := sheetfeed.NewSheetConfig(req.SpreadsheetID, req.SheetName)
	if err != nil {
		return nil, err
	}

	if err := s.configRepo.Activate(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to save sheet configuration: %w", err)
	}

	s.logger.Info("sheet configuration activated",
		zap.String("config_id", config.ID.String()),
		zap.String("spreadsheet_id", config.SpreadsheetID),
		zap.String("sheet_name", config.SheetName))

	resp := toConfigResponse(config)
	return &resp, nil
}

// TestConnection checks whether the active configuration's feed responds
func (s *ConfigService) TestConnection(ctx context.Context) (*TestConnectionResponse, error) {
	config, err := s.configRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	return &TestConnectionResponse{
		SpreadsheetID: config.SpreadsheetID,
		Reachable:     s.reader.CheckReachable(ctx, config.SpreadsheetID),
	}, nil
}
