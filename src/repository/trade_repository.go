package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"memesniper/src/database"
	"memesniper/src/model"
)

// TradeRepository handles persistence for Trade entities and their swap events.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new repository instance using the main read/write database.
func NewTradeRepository() *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Info("Creating new TradeRepository with MainDB")

	return &TradeRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Save upserts the trade keyed by its external trade_id and persists any
// attached swap events. Called after every lifecycle transition, so a crash
// loses at most the mutation in flight.
func (r *TradeRepository) Save(ctx context.Context, trade *model.Trade) error {
	logger.WithFields(map[string]interface{}{
		"repo":     "TradeRepository",
		"op":       "Save",
		"trade_id": trade.TradeID,
		"status":   trade.Status,
	}).Debug("Saving trade")

	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trade_id"}},
			UpdateAll: true,
		}).
		Create(trade).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "Save",
			"trade_id": trade.TradeID,
		}).WithError(err).Error("Failed to save trade")
		return err
	}

	return nil
}

// FindByTradeID fetches one trade with its swap events. Returns (nil, nil)
// when no trade matches.
func (r *TradeRepository) FindByTradeID(ctx context.Context, tradeID string) (*model.Trade, error) {
	var trade model.Trade
	err := r.db.WithContext(ctx).
		Preload("Swaps").
		Where("trade_id = ?", tradeID).
		First(&trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "TradeRepository",
			"op":       "FindByTradeID",
			"trade_id": tradeID,
		}).WithError(err).Error("Failed to fetch trade")
		return nil, err
	}

	return &trade, nil
}

// Query returns trades matching the filter, newest first.
func (r *TradeRepository) Query(ctx context.Context, filter model.TradeFilter) ([]model.Trade, error) {
	q := r.db.WithContext(ctx).Model(&model.Trade{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TokenMint != "" {
		q = q.Where("token_mint = ?", filter.TokenMint)
	}
	if filter.CloseReason != "" {
		q = q.Where("close_reason = ?", filter.CloseReason)
	}
	if filter.MinPnLPercent != nil {
		q = q.Where("pn_l_percent >= ?", *filter.MinPnLPercent)
	}
	if filter.MaxPnLPercent != nil {
		q = q.Where("pn_l_percent <= ?", *filter.MaxPnLPercent)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at <= ?", *filter.CreatedBefore)
	}

	q = q.Order("created_at DESC, id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var trades []model.Trade
	if err := q.Find(&trades).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Query",
		}).WithError(err).Error("Failed to query trades")
		return nil, err
	}

	return trades, nil
}

// ActiveTrades returns every trade still being monitored, used to report
// status and to detect positions left over after an unclean shutdown.
func (r *TradeRepository) ActiveTrades(ctx context.Context) ([]model.Trade, error) {
	return r.Query(ctx, model.TradeFilter{Status: model.TradeStatusActive})
}

// Stats aggregates closed trades in Go rather than SQL so the result is
// identical across the sqlite and postgres drivers.
func (r *TradeRepository) Stats(ctx context.Context) (*model.TradeStats, error) {
	closed, err := r.Query(ctx, model.TradeFilter{Status: model.TradeStatusClosed})
	if err != nil {
		return nil, err
	}

	stats := &model.TradeStats{}
	var holdSum float64
	first := true
	for _, trade := range closed {
		stats.TotalTrades++
		stats.TotalFeesSOL += trade.TotalFeesSOL

		if trade.PnLPercent == nil {
			continue
		}
		pnl := *trade.PnLPercent
		stats.TotalPnLPercent += pnl
		if pnl > 0 {
			stats.WinningTrades++
		} else {
			stats.LosingTrades++
		}
		if first || pnl > stats.BestTradePnLPercent {
			stats.BestTradePnLPercent = pnl
		}
		if first || pnl < stats.WorstTradePnLPercent {
			stats.WorstTradePnLPercent = pnl
		}
		first = false
		if trade.HoldTimeMinutes != nil {
			holdSum += *trade.HoldTimeMinutes
		}
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
		stats.AvgHoldTimeMinutes = holdSum / float64(stats.TotalTrades)
	}

	return stats, nil
}
