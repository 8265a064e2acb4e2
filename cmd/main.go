package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"memesniper/cmd/sniper"
	"memesniper/src/database"
	"memesniper/src/repository"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Sniper CMD"
	app.Usage = "The meme token sniper command line interface"

	app.Commands = []cli.Command{
		runCMD,
		statusCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	runCMD = cli.Command{
		Name:      "run",
		Usage:     "run the sniper bot",
		Action:    runAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "simulate swaps and analysis without touching the chain",
			},
		},
		Description: `Run the discovery listener, trading engine and status server`,
	}
	statusCMD = cli.Command{
		Name:        "status",
		Usage:       "print aggregate trade statistics",
		Action:      statusAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Print win rate, pnl and fee totals from the trade database`,
	}
)

func runAction(c *cli.Context) error {
	logrus.Info("Starting sniper bot CMD")

	if c.Bool("dry-run") {
		if err := os.Setenv("DRY_RUN", "true"); err != nil {
			return err
		}
		logrus.Warn("DRY RUN mode enabled, no transactions will be sent")
	}

	bot := &sniper.Sniper{}
	if err := bot.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func statusAction(_ *cli.Context) error {
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	repo := repository.NewTradeRepository()
	stats, err := repo.Stats(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Failed to compute trade stats")
		return err
	}

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}
