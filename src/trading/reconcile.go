package trading

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"memesniper/src/model"
)

type activeTradeSource interface {
	ActiveTrades(ctx context.Context) ([]model.Trade, error)
}

// ReportOrphanedTrades flags active trades left behind in the store by an
// unclean shutdown. No monitor owns them anymore, so each one is raised as an
// error alert for manual intervention. Returns the number of orphans found.
func ReportOrphanedTrades(ctx context.Context, store activeTradeSource, notifier Notifier) (int, error) {
	orphans, err := store.ActiveTrades(ctx)
	if err != nil {
		return 0, fmt.Errorf("querying active trades: %w", err)
	}

	for _, trade := range orphans {
		logger.WithFields(logger.Fields{
			"trade_id": trade.TradeID,
			"mint":     trade.TokenMint,
		}).Error("[trading] active trade has no monitor")
		notifier.SendErrorAlert(ctx, "trading",
			fmt.Sprintf("Orphaned active trade %s (%s): left open by a previous run, close it manually",
				trade.TradeID, trade.TokenMint))
	}

	return len(orphans), nil
}
