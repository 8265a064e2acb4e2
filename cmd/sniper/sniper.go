package sniper

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"memesniper/src/analysis"
	"memesniper/src/connectors"
	"memesniper/src/database"
	"memesniper/src/discovery"
	"memesniper/src/handler"
	"memesniper/src/model"
	"memesniper/src/notifications"
	"memesniper/src/pricing"
	"memesniper/src/repository"
	"memesniper/src/risk"
	"memesniper/src/server"
	"memesniper/src/trading"
)

const statusReportInterval = 1 * time.Minute

// Sniper wires every service together and runs the bot until SIGINT/SIGTERM.
type Sniper struct{}

func (s *Sniper) Start() error {
	tradingCfg := trading.GetConfig()
	if err := tradingCfg.Validate(); err != nil {
		return fmt.Errorf("invalid trading configuration: %w", err)
	}

	riskCfg := risk.GetConfig()
	if err := riskCfg.Validate(); err != nil {
		return fmt.Errorf("invalid risk configuration: %w", err)
	}

	if err := database.InitMainDB(); err != nil {
		return fmt.Errorf("database init: %w", err)
	}

	connCfg := connectors.GetConfig()

	riskMgr := risk.NewManager(riskCfg, tradingCfg.BuyAmountSOL)
	prices := pricing.NewService(pricing.GetConfig())
	analyzer := analysis.NewService(analysis.GetConfig())
	jupiter := connectors.NewJupiterClient(connCfg)
	notifier := notifications.NewService(notifications.GetConfig())
	repo := repository.NewTradeRepository()

	svc := trading.NewService(tradingCfg, trading.Dependencies{
		Prices:          prices,
		Analyzer:        analyzer,
		Swaps:           jupiter,
		Store:           repo,
		Risk:            riskMgr,
		Notifier:        notifier,
		TipBaseLamports: connCfg.BasePriorityFeeLamports,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Positions left Active by a previous run have no monitor attached and
	// need an operator to close them out.
	if orphans, err := trading.ReportOrphanedTrades(ctx, repo, notifier); err != nil {
		logger.WithError(err).Error("[sniper] orphaned trade check failed")
	} else if orphans > 0 {
		logger.WithField("count", orphans).Warn("[sniper] active trades left over from a previous run")
	}

	listener := discovery.NewListener(discovery.GetConfig(), func(token model.DiscoveredToken) {
		go func() {
			if _, err := svc.EvaluateToken(ctx, token); err != nil {
				logger.WithError(err).WithField("mint", token.Mint).
					Error("[sniper] token evaluation failed")
			}
		}()
	})
	go listener.Run(ctx)

	go reportStatus(ctx, svc, riskMgr)

	notifier.SendSystemAlert(ctx, fmt.Sprintf("Sniper bot started (dry_run=%t)", tradingCfg.DryRun))

	serverCfg := server.GetConfig()
	router := server.NewRouter(serverCfg, server.Routes{
		Status:     handler.StatusHandler(svc, riskMgr, repo, tradingCfg.DryRun),
		ListTrades: handler.ListTradesHandler(repo),
		GetTrade:   handler.GetTradeHandler(repo),
		CloseTrade: handler.CloseTradeHandler(svc),
	})

	// Blocks until the context is cancelled by a signal.
	server.StartServer(ctx, serverCfg.Port, router)

	logger.Info("[sniper] waiting for position monitors to finish")
	svc.Wait()
	notifier.SendSystemAlert(context.Background(), "Sniper bot stopped")

	return nil
}

func reportStatus(ctx context.Context, svc *trading.Service, riskMgr *risk.Manager) {
	ticker := time.NewTicker(statusReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status := riskMgr.Status()
		logger.WithFields(logger.Fields{
			"active_trades":   len(svc.ActiveTrades()),
			"breaker_open":    status.CircuitBreaker.IsOpen,
			"daily_spent_sol": status.Spending.DailySpent,
			"daily_limit_sol": status.Spending.DailyLimit,
		}).Info("[sniper] status")
	}
}
