package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/rosti-cz/pricepower-go/cnb"
	"github.com/rosti-cz/pricepower-go/config"
	"github.com/rosti-cz/pricepower-go/database"
	"github.com/rosti-cz/pricepower-go/hass"
	"github.com/rosti-cz/pricepower-go/logging"
	"github.com/rosti-cz/pricepower-go/market"
	"github.com/rosti-cz/pricepower-go/ote"
	"github.com/rosti-cz/pricepower-go/pricing"
	"github.com/rosti-cz/pricepower-go/task"
	"github.com/rosti-cz/pricepower-go/www"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// Handlers and tasks read the config through this pointer so a file
	// change swaps the tunables without a restart
	var liveConfig atomic.Pointer[config.AppConfig]
	liveConfig.Store(cnfg)
	getConfig := liveConfig.Load
	config.Watch(func(fresh *config.AppConfig) {
		liveConfig.Store(fresh)
		slog.Default().Info("config reloaded")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("pricepower is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	currency := cnfg.Prices.GetCurrency()
	source := market.NewCachedSource(db, ote.New(), cnb.New(currency), currency)
	source.SetLogger(logger.With("module", "market"))

	calc := pricing.NewCalculator(source)

	tasks := task.NewTasks(db, source, cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

	if cnfg.Mqtt.Enabled() {
		publisher := hass.New(calc, getConfig)
		if err := publisher.Connect(); err != nil {
			panic(fmt.Sprintf("hass mqtt connection error: %v", err))
		}
		defer publisher.Disconnect()
		go publisher.Run(ctx)
	} else {
		logger.Info("mqtt host not configured, hass publisher disabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server := www.StartServer(db, calc, getConfig, Version)
	server.Run(ctx)
}

func isDevMode() bool {
	return os.Getenv("APP_ENV") == "development"
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
