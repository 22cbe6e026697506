package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/optionsmith/chainview/src/models"
	"github.com/optionsmith/chainview/src/provider"
	"github.com/optionsmith/chainview/src/services"
	"github.com/optionsmith/chainview/src/store"
	"github.com/optionsmith/chainview/src/utils"
)

type RunArgs struct {
	Symbol string
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/backfill_candles/main.go --symbol AAPL",
	Short: "Force a candle backfill for one symbol",
	Run: func(cmd *cobra.Command, args []string) {
		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		if err := Run(RunArgs{Symbol: symbol}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func Run(args RunArgs) error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Warnf("env bootstrap: %v", err)
	}

	databaseURL, err := utils.GetEnv("DATABASE_URL")
	if err != nil {
		return fmt.Errorf("$DATABASE_URL not set: %w", err)
	}

	apiKey, err := utils.GetEnv("ALPHA_VANTAGE_API_KEY")
	if err != nil {
		return fmt.Errorf("$ALPHA_VANTAGE_API_KEY not set: %w", err)
	}

	db, err := store.InitPostgresWithUrl(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}

	candleStore := store.NewPostgresCandleStore(db)
	client := provider.NewAlphaVantageClient("", apiKey, nil)
	marketDataService := services.NewMarketDataService(candleStore, client, 7)

	symbol := models.StockSymbol(args.Symbol)

	exists, err := candleStore.Exists(context.Background(), symbol)
	if err != nil {
		return fmt.Errorf("failed to check for existing candles: %w", err)
	}

	inserted, err := marketDataService.Refresh(context.Background(), symbol)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if exists {
		fmt.Printf("Refreshed %s: upserted %d candles\n", args.Symbol, inserted)
	} else {
		fmt.Printf("Backfilled new symbol %s: upserted %d candles\n", args.Symbol, inserted)
	}

	return nil
}

func main() {
	runCmd.Flags().String("symbol", "", "Ticker symbol to backfill")
	runCmd.MarkFlagRequired("symbol")

	if err := runCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
