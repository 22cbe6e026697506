package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/optionsmith/chainview/src/models"
	"github.com/optionsmith/chainview/src/store"
	"github.com/optionsmith/chainview/src/utils"
)

type CandleCSV struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume int64   `csv:"volume"`
}

type RunArgs struct {
	Symbol   string
	Filename string
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/import_candles/main.go --symbol AAPL --csv candles.csv",
	Short: "Import a CSV of daily candles into the store",
	Run: func(cmd *cobra.Command, args []string) {
		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		filename, err := cmd.Flags().GetString("csv")
		if err != nil {
			log.Fatalf("error getting csv: %v", err)
		}

		if err := Run(RunArgs{Symbol: symbol, Filename: filename}); err != nil {
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

	f, err := os.Open(args.Filename)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args.Filename, err)
	}

	defer f.Close()

	var rows []*CandleCSV
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args.Filename, err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		date, parseErr := time.Parse("2006-01-02", row.Date)
		if parseErr != nil {
			return fmt.Errorf("bad date %q: %w", row.Date, parseErr)
		}

		candles = append(candles, models.Candle{
			Date:   date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	db, err := store.InitPostgresWithUrl(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}

	candleStore := store.NewPostgresCandleStore(db)

	inserted, err := candleStore.UpsertBatch(context.Background(), models.StockSymbol(args.Symbol), candles)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}

	fmt.Printf("Upserted %d candles for %s\n", inserted, args.Symbol)

	return nil
}

func main() {
	runCmd.Flags().String("symbol", "", "Ticker symbol")
	runCmd.Flags().String("csv", "", "Path to CSV file with date,open,high,low,close,volume columns")
	runCmd.MarkFlagRequired("symbol")
	runCmd.MarkFlagRequired("csv")

	if err := runCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
