package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"tradebridge/internal/models"
	"tradebridge/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- strategies -------------------------------------------------------------

func (s *Store) GetStrategy(ctx context.Context, id string) (*models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Strategy
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListStrategies(ctx context.Context) ([]models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Strategy
	if err := s.db.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateStrategy(ctx context.Context, item *models.Strategy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Strategy{}).Where("id = ?", item.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repository.ErrStrategyExists
		}
		return tx.Create(item).Error
	})
}

func (s *Store) SaveStrategy(ctx context.Context, item *models.Strategy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteStrategy(ctx context.Context, id string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Strategy{})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) UpdateStrategyConfig(ctx context.Context, id string, cfg repository.StrategyConfigUpdate) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Strategy{}).Where("id = ?", id).Updates(map[string]any{
		"name":               cfg.Name,
		"type":               cfg.Type,
		"telegram_bot_token": cfg.TelegramBotToken,
		"telegram_chat_id":   cfg.TelegramChatID,
		"forward_url":        cfg.ForwardURL,
	})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) SetStrategyActive(ctx context.Context, id string, active bool) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Strategy{}).Where("id = ?", id).Update("is_active", active)
	return res.RowsAffected > 0, res.Error
}

// --- signal log -------------------------------------------------------------

func (s *Store) InsertSignalLog(ctx context.Context, item *models.SignalLog) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListSignalLogs(ctx context.Context, params repository.ListSignalLogsParams) ([]models.SignalLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applySignalLogFilters(s.db.WithContext(ctx).Model(&models.SignalLog{}), params)
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.SignalLog
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSignalLogs(ctx context.Context, params repository.ListSignalLogsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	err := applySignalLogFilters(s.db.WithContext(ctx).Model(&models.SignalLog{}), params).Count(&total).Error
	return total, err
}

func (s *Store) DeleteSignalLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.SignalLog{})
	return res.RowsAffected, res.Error
}

func applySignalLogFilters(query *gorm.DB, params repository.ListSignalLogsParams) *gorm.DB {
	if params.StrategyID != nil && strings.TrimSpace(*params.StrategyID) != "" {
		query = query.Where("strategy_id = ?", strings.TrimSpace(*params.StrategyID))
	}
	if params.Outcome != nil && strings.TrimSpace(*params.Outcome) != "" {
		query = query.Where("outcome = ?", strings.TrimSpace(*params.Outcome))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
