package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otellogrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdk_trace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/optionsmith/chainview/src/eventpubsub"
	"github.com/optionsmith/chainview/src/handler"
	"github.com/optionsmith/chainview/src/models"
	"github.com/optionsmith/chainview/src/provider"
	"github.com/optionsmith/chainview/src/services"
	"github.com/optionsmith/chainview/src/store"
	"github.com/optionsmith/chainview/src/utils"
)

func main() {
	run()
}

func setupOTelSDK(ctx context.Context) (func(context.Context) error, error) {
	prop := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(prop)

	traceExporter, err := otlptrace.New(ctx, otlptracehttp.NewClient())
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", "chainview")))

	tracerProvider := sdk_trace.NewTracerProvider(
		sdk_trace.WithBatcher(traceExporter),
		sdk_trace.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)

	return tracerProvider.Shutdown, nil
}

func subscribeRefreshLogger() {
	if err := eventpubsub.Subscribe(eventpubsub.CandlesRefreshCompleted, func(event eventpubsub.RefreshEvent) {
		log.WithFields(log.Fields{
			"symbol":   event.Symbol,
			"inserted": event.Inserted,
		}).Info("candle refresh completed")
	}); err != nil {
		log.Fatalf("failed to subscribe to refresh completed: %v", err)
	}

	if err := eventpubsub.Subscribe(eventpubsub.CandlesRefreshFailed, func(event eventpubsub.RefreshEvent) {
		log.WithField("symbol", event.Symbol).Errorf("candle refresh failed: %v", event.Err)
	}); err != nil {
		log.Fatalf("failed to subscribe to refresh failed: %v", err)
	}
}

func run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Warnf("env bootstrap: %v", err)
	}

	port, err := utils.GetEnv("PORT")
	if err != nil {
		port = "8080"
	}

	databaseURL, err := utils.GetEnv("DATABASE_URL")
	if err != nil {
		log.Fatalf("$DATABASE_URL not set: %v", err)
	}

	apiKey, err := utils.GetEnv("ALPHA_VANTAGE_API_KEY")
	if err != nil {
		log.Fatalf("$ALPHA_VANTAGE_API_KEY not set: %v", err)
	}

	config := models.DefaultChainConfig()
	if configFile := os.Getenv("CHAIN_CONFIG_FILE"); configFile != "" {
		config, err = models.LoadChainConfig(configFile)
		if err != nil {
			log.Fatalf("failed to load chain config: %v", err)
		}
	}

	log.AddHook(otellogrus.NewHook(otellogrus.WithLevels(
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
	)))

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		otelShutdown, otelErr := setupOTelSDK(ctx)
		if otelErr != nil {
			log.Fatalf("failed to setup otel sdk: %v", otelErr)
		}

		defer func() {
			if shutdownErr := otelShutdown(context.Background()); shutdownErr != nil {
				log.Errorf("otel shutdown: %v", shutdownErr)
			}
		}()
	}

	eventpubsub.Init()
	subscribeRefreshLogger()

	db, err := store.InitPostgresWithUrl(databaseURL)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	candleStore := store.NewPostgresCandleStore(db)
	client := provider.NewAlphaVantageClient(os.Getenv("ALPHA_VANTAGE_BASE_URL"), apiKey, nil)
	marketDataService := services.NewMarketDataService(candleStore, client, config.StalenessDays)
	chainService := services.NewChainService(marketDataService, config)

	router := mux.NewRouter()
	router.Use(handler.RequestLogger)
	handler.SetupHandler(router, marketDataService, chainService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: otelhttp.NewHandler(router, "chainview"),
	}

	go func() {
		log.Infof("listening on :%s", port)

		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Fatalf("server: %v", serveErr)
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
}
