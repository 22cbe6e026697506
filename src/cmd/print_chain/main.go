package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
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
	Expiry string
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/print_chain/main.go --symbol AAPL --expiry 2026-10-16",
	Short: "Render the option chain for a symbol as a table",
	Run: func(cmd *cobra.Command, args []string) {
		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		expiry, err := cmd.Flags().GetString("expiry")
		if err != nil {
			log.Fatalf("error getting expiry: %v", err)
		}

		if err := Run(RunArgs{Symbol: symbol, Expiry: expiry}); err != nil {
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

	var customExpiry *time.Time
	if args.Expiry != "" {
		parsed, parseErr := time.Parse("2006-01-02", args.Expiry)
		if parseErr != nil {
			return fmt.Errorf("expiry must be formatted YYYY-MM-DD: %w", parseErr)
		}

		customExpiry = &parsed
	}

	db, err := store.InitPostgresWithUrl(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}

	config := models.DefaultChainConfig()
	candleStore := store.NewPostgresCandleStore(db)
	client := provider.NewAlphaVantageClient("", apiKey, nil)
	marketDataService := services.NewMarketDataService(candleStore, client, config.StalenessDays)
	chainService := services.NewChainService(marketDataService, config)

	snapshot, err := chainService.GetOptionChain(context.Background(), models.StockSymbol(args.Symbol), customExpiry)
	if err != nil {
		return fmt.Errorf("failed to generate chain: %w", err)
	}

	fmt.Printf("%s  spot=%.2f  vol=%.4f  r=%.4f\n", snapshot.Symbol, snapshot.Spot, snapshot.Volatility, snapshot.RiskFreeRate)

	expiries := make([]int, 0, len(snapshot.Expiries))
	for days := range snapshot.Expiries {
		expiries = append(expiries, days)
	}
	sort.Ints(expiries)

	for _, days := range expiries {
		quotes := snapshot.Expiries[days]

		fmt.Printf("\nDTE %d\n", days)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Strike", "Call", "Call Delta", "Put", "Put Delta", "ITM"})

		for i, call := range quotes.Calls {
			put := quotes.Puts[i]

			itm := ""
			if call.InTheMoney {
				itm = "C"
			} else if put.InTheMoney {
				itm = "P"
			}

			table.Append([]string{
				fmt.Sprintf("%.2f", call.Strike),
				fmt.Sprintf("%.2f", call.Price),
				fmt.Sprintf("%.4f", call.Delta),
				fmt.Sprintf("%.2f", put.Price),
				fmt.Sprintf("%.4f", put.Delta),
				itm,
			})
		}

		table.Render()
	}

	return nil
}

func main() {
	runCmd.Flags().String("symbol", "", "Ticker symbol")
	runCmd.Flags().String("expiry", "", "Optional target expiration date (YYYY-MM-DD)")
	runCmd.MarkFlagRequired("symbol")

	if err := runCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
