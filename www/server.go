package www

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/rosti-cz/pricepower-go/config"
	"github.com/rosti-cz/pricepower-go/convert"
	"github.com/rosti-cz/pricepower-go/database"
	"github.com/rosti-cz/pricepower-go/pricing"
	"github.com/rosti-cz/pricepower-go/slots"
)

// ConfigFn returns the current config; the server re-reads it per request so
// a live config reload takes effect without a restart.
type ConfigFn func() *config.AppConfig

type Server struct {
	logger *slog.Logger
	cnfg   ConfigFn
	calc   *pricing.Calculator
	db     *database.Database
	hub    *Hub
	mux    *http.ServeMux
}

//go:embed static
var embeddedStaticDir embed.FS

func StartServer(db *database.Database, calc *pricing.Calculator, cnfg ConfigFn, version string) *Server {
	logger := slog.Default().With("module", "www")

	s := &Server{
		logger: logger,
		cnfg:   cnfg,
		calc:   calc,
		db:     db,
		hub:    NewHub(logger),
		mux:    http.NewServeMux(),
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	s.mux.Handle("/", staticFilesHandler())
	s.mux.HandleFunc("GET /widget", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, embeddedStaticDir, "static/index.html")
	})

	s.mux.Handle("GET /price/day", logReqMW(NewDayPriceHandler(
		logger.With(slog.String("handler", "day_price")), calc, cnfg)))
	s.mux.Handle("GET /price/day/{date}", logReqMW(NewDayPriceHandler(
		logger.With(slog.String("handler", "day_price")), calc, cnfg)))

	s.mux.Handle("GET /battery/charging", logReqMW(NewBatteryHandler(
		logger.With(slog.String("handler", "battery")), calc, cnfg)))

	s.mux.Handle("GET /log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")), db)))

	s.mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": version})
	})

	s.mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	return s
}

// RealTimeData is the payload pushed to websocket clients.
type RealTimeData struct {
	Hour              slots.Slot `json:"hour"`
	TotalPrice        float64    `json:"total_price"`
	IsViable          bool       `json:"is_viable"`
	IsChargingHour    bool       `json:"is_charging_hour"`
	IsDischargingHour bool       `json:"is_discharging_hour"`
}

func (s *Server) Run(ctx context.Context) {
	cnfg := s.cnfg()
	s.logger.Info("starting server...", "port", cnfg.Api.Port)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cnfg.Api.Address, cnfg.Api.Port),
		Handler: s.mux,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	// Keeping state to avoid spamming logs
	planErrorState := false

	for {
		select {
		case err := <-srvErrors:
			if err != nil {
				s.logger.Error("server error", slog.Any("error", err))
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return

		case <-ticker.C:
			data, err := s.currentData(ctx)
			if err != nil {
				if !planErrorState {
					planErrorState = true
					s.logger.Warn("failed to build real-time data", slog.Any("error", err))
				}
				continue
			}
			planErrorState = false

			buf, err := json.Marshal(data)
			if err != nil {
				s.logger.Error("real-time data encoding failed", slog.Any("error", err))
				continue
			}

			s.hub.Broadcast <- buf
		}
	}
}

func (s *Server) currentData(ctx context.Context) (RealTimeData, error) {
	cnfg := s.cnfg()
	now := time.Now()

	params := pricing.Params{
		KwhFeesLow:  cnfg.Prices.GetKwhFeesLow(),
		KwhFeesHigh: cnfg.Prices.GetKwhFeesHigh(),
		SellFees:    cnfg.Prices.GetSellFees(),
		VAT:         cnfg.Prices.GetVAT(),
		LowTariff:   pricing.TariffSlots(cnfg.Prices.GetLowTariffHours()),
	}

	plan, err := s.calc.BatteryPlan(ctx, now, params, cnfg.Battery.GetKwhPrice(), false)
	if err != nil {
		return RealTimeData{}, err
	}

	hour := slots.FromTime(now)
	return RealTimeData{
		Hour:              hour,
		TotalPrice:        convert.TwoDecimals(plan.TotalPrice.Now.ValueOrDefault(0)),
		IsViable:          plan.IsViable,
		IsChargingHour:    plan.IsChargingHour,
		IsDischargingHour: plan.IsDischargingHour,
	}, nil
}

func staticFilesHandler() http.Handler {
	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
