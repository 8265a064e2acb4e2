package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"memesniper/src/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func tradeRows(trades ...model.Trade) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "trade_id", "token_mint", "status", "pn_l_percent", "hold_time_minutes", "total_fees_sol", "created_at"})
	for _, trade := range trades {
		rows.AddRow(trade.ID, trade.TradeID, trade.TokenMint, trade.Status, trade.PnLPercent, trade.HoldTimeMinutes, trade.TotalFeesSOL, trade.CreatedAt)
	}
	return rows
}

func ptrFloat(val float64) *float64 {
	return &val
}

func TestFindByTradeIDNotFound(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE trade_id = $1 ORDER BY "trades"."id" LIMIT $2`)).
		WithArgs("missing", 1).
		WillReturnRows(tradeRows())

	trade, err := repo.FindByTradeID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade != nil {
		t.Fatalf("expected nil for missing trade, got %+v", trade)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestFindByTradeIDPreloadsSwaps(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE trade_id = $1 ORDER BY "trades"."id" LIMIT $2`)).
		WithArgs("t-1", 1).
		WillReturnRows(tradeRows(model.Trade{ID: 1, TradeID: "t-1", TokenMint: "MintAAA", Status: model.TradeStatusActive, CreatedAt: createdAt}))

	swapRows := sqlmock.NewRows([]string{"id", "trade_id", "side", "tx_signature"}).
		AddRow(1, "t-1", "buy", "sig1")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "swap_events" WHERE "swap_events"."trade_id" = $1`)).
		WithArgs("t-1").
		WillReturnRows(swapRows)

	trade, err := repo.FindByTradeID(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade == nil || trade.TradeID != "t-1" {
		t.Fatalf("unexpected trade %+v", trade)
	}
	if len(trade.Swaps) != 1 || trade.Swaps[0].TxSignature != "sig1" {
		t.Fatalf("swap events not preloaded: %+v", trade.Swaps)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestQueryFiltersByStatus(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE status = $1 ORDER BY created_at DESC, id DESC`)).
		WithArgs(model.TradeStatusActive).
		WillReturnRows(tradeRows(
			model.Trade{ID: 2, TradeID: "t-2", Status: model.TradeStatusActive},
			model.Trade{ID: 1, TradeID: "t-1", Status: model.TradeStatusActive},
		))

	trades, err := repo.Query(context.Background(), model.TradeFilter{Status: model.TradeStatusActive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].TradeID != "t-2" {
		t.Fatalf("trades not returned newest first: %+v", trades)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestQueryAppliesPnLWindowAndPagination(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	minPnL := ptrFloat(0.0)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE status = $1 AND pn_l_percent >= $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`)).
		WithArgs(model.TradeStatusClosed, 0.0, 10, 5).
		WillReturnRows(tradeRows())

	_, err := repo.Query(context.Background(), model.TradeFilter{
		Status:        model.TradeStatusClosed,
		MinPnLPercent: minPnL,
		Limit:         10,
		Offset:        5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestStatsAggregatesClosedTrades(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE status = $1 ORDER BY created_at DESC, id DESC`)).
		WithArgs(model.TradeStatusClosed).
		WillReturnRows(tradeRows(
			model.Trade{ID: 3, TradeID: "t-3", Status: model.TradeStatusClosed, PnLPercent: ptrFloat(100), HoldTimeMinutes: ptrFloat(10), TotalFeesSOL: 0.25},
			model.Trade{ID: 2, TradeID: "t-2", Status: model.TradeStatusClosed, PnLPercent: ptrFloat(-30), HoldTimeMinutes: ptrFloat(30), TotalFeesSOL: 0.5},
		))

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalTrades != 2 || stats.WinningTrades != 1 || stats.LosingTrades != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.WinRate != 50 {
		t.Fatalf("expected win rate 50, got %f", stats.WinRate)
	}
	if stats.TotalPnLPercent != 70 {
		t.Fatalf("expected total pnl 70, got %f", stats.TotalPnLPercent)
	}
	if stats.BestTradePnLPercent != 100 || stats.WorstTradePnLPercent != -30 {
		t.Fatalf("unexpected best/worst: %+v", stats)
	}
	if stats.AvgHoldTimeMinutes != 20 {
		t.Fatalf("expected avg hold 20, got %f", stats.AvgHoldTimeMinutes)
	}
	if stats.TotalFeesSOL != 0.75 {
		t.Fatalf("expected fees 0.75, got %f", stats.TotalFeesSOL)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
