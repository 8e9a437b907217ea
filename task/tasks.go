package task

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/rosti-cz/pricepower-go/config"
	"github.com/rosti-cz/pricepower-go/database"
	"github.com/rosti-cz/pricepower-go/types"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	PrefetchTask    func()
	MaintenanceTask func()
}

func NewTasks(db *database.Database, source types.MarketSource, cnfg *config.AppConfig) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		PrefetchTask:    NewPrefetchTask(logger.With(slog.String("task", "prefetch")), db, source),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.Prices.GetPrefetchRunAt(), t.PrefetchTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
