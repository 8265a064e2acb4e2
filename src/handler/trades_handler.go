package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"memesniper/src/model"
	"memesniper/src/risk"
)

type tradeQuerier interface {
	Query(ctx context.Context, filter model.TradeFilter) ([]model.Trade, error)
	FindByTradeID(ctx context.Context, tradeID string) (*model.Trade, error)
	Stats(ctx context.Context) (*model.TradeStats, error)
}

type positionController interface {
	ActiveTrades() []model.Trade
	RequestManualClose(tradeID string) error
}

type riskReporter interface {
	Status() risk.Status
}

// StatusResponse is the combined bot view served on /status.
type StatusResponse struct {
	DryRun       bool              `json:"dry_run"`
	ActiveTrades []model.Trade     `json:"active_trades"`
	Risk         risk.Status       `json:"risk"`
	Stats        *model.TradeStats `json:"stats,omitempty"`
}

// StatusHandler reports live positions, risk guard state and aggregate
// performance.
func StatusHandler(positions positionController, riskMgr riskReporter, repo tradeQuerier, dryRun bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			DryRun:       dryRun,
			ActiveTrades: positions.ActiveTrades(),
			Risk:         riskMgr.Status(),
		}

		stats, err := repo.Stats(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to compute trade stats")
		} else {
			resp.Stats = stats
		}

		writeJSON(w, resp)
	}
}

// ListTradesHandler lists persisted trades, optionally filtered by status and
// close reason, newest first.
func ListTradesHandler(repo tradeQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := model.TradeFilter{Limit: 50}

		if statusParam := r.URL.Query().Get("status"); statusParam != "" {
			filter.Status = model.TradeStatus(statusParam)
		}
		if reasonParam := r.URL.Query().Get("closeReason"); reasonParam != "" {
			filter.CloseReason = model.CloseReason(reasonParam)
		}
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			limit, err := strconv.Atoi(limitParam)
			if err != nil || limit <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			filter.Limit = limit
		}

		trades, err := repo.Query(r.Context(), filter)
		if err != nil {
			logger.WithError(err).Error("failed to query trades")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, trades)
	}
}

// GetTradeHandler fetches one trade with its swap events.
func GetTradeHandler(repo tradeQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tradeID := chi.URLParam(r, "tradeID")

		trade, err := repo.FindByTradeID(r.Context(), tradeID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch trade")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if trade == nil {
			http.Error(w, "trade not found", http.StatusNotFound)
			return
		}

		writeJSON(w, trade)
	}
}

// CloseTradeHandler flags an active trade for a manual close. The close
// itself happens asynchronously on the position monitor's next tick.
func CloseTradeHandler(positions positionController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tradeID := chi.URLParam(r, "tradeID")

		if err := positions.RequestManualClose(tradeID); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(map[string]string{"trade_id": tradeID, "state": "close_requested"}); err != nil {
			logger.WithError(err).Error("failed to encode response")
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}
