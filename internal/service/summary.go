// Package service holds the periodic jobs running beside the signal
// pipeline.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tradebridge/internal/notify"
	"tradebridge/internal/repository"
)

// SummaryService pushes each strategy's realized PnL and open-position
// count to its Telegram channel. Delivery is best-effort per strategy; one
// failing channel does not stop the rest.
type SummaryService struct {
	Repo     repository.Repository
	Telegram *notify.TelegramSender
	Logger   *zap.Logger
}

func (s *SummaryService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil || s.Telegram == nil {
		return nil
	}
	strategies, err := s.Repo.ListStrategies(ctx)
	if err != nil {
		return err
	}
	for i := range strategies {
		st := &strategies[i]
		if strings.TrimSpace(st.TelegramBotToken) == "" || strings.TrimSpace(st.TelegramChatID) == "" {
			continue
		}

		name := st.Name
		if name == "" {
			name = st.ID
		}
		lastSignal := st.LastSignal
		if lastSignal == "" {
			lastSignal = "none"
		}
		msg := fmt.Sprintf("📊 *%s*\n\nRealized PnL: %s\nOpen positions: %d\nClosed trades: %d\nLast signal: %s",
			name, st.PnL.StringFixed(2), len(st.Positions()), len(st.Completed()), lastSignal)

		if err := s.Telegram.Send(ctx, st.TelegramBotToken, st.TelegramChatID, msg); err != nil && s.Logger != nil {
			s.Logger.Warn("summary delivery failed",
				zap.String("strategy", st.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}
