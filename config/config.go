package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rosti-cz/pricepower-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
}

type AppConfigDatabase struct {
	Path string
	// How many days cached market data stays in the database before purge
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files are kept before deletion
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 90
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

// AppConfigPrices carries the default fee/tariff parameters. Every value can
// be overridden per request through query parameters; these are the answers
// when the caller sends nothing. The defaults match the D57d tariff with the
// BezDodavatele supplier.
type AppConfigPrices struct {
	Currency       *string  `mapstructure:"currency"`         // quote currency of the market, default "EUR"
	MonthlyFees    *float64 `mapstructure:"monthly_fees"`     // standing monthly fee in CZK excl. VAT
	DailyFees      *float64 `mapstructure:"daily_fees"`       // standing daily fee in CZK excl. VAT
	KwhFeesLow     *float64 `mapstructure:"kwh_fees_low"`     // distribution fees per kWh in low tariff, CZK excl. VAT
	KwhFeesHigh    *float64 `mapstructure:"kwh_fees_high"`    // distribution fees per kWh in high tariff, CZK excl. VAT
	SellFees       *float64 `mapstructure:"sell_fees"`        // per-kWh fee subtracted when selling back
	VAT            *float64 `mapstructure:"vat"`              // VAT multiplier, default 1.21
	LowTariffHours *string  `mapstructure:"low_tariff_hours"` // comma-separated hours of the low tariff
	// Cron spec for the prefetch of today's and tomorrow's market data
	PrefetchRunAt *string `mapstructure:"prefetch_run_at"`
}

func (p AppConfigPrices) GetCurrency() string {
	if p.Currency == nil {
		return "EUR"
	}
	return *p.Currency
}

func (p AppConfigPrices) GetMonthlyFees() float64 {
	if p.MonthlyFees == nil {
		return 610.84
	}
	return *p.MonthlyFees
}

func (p AppConfigPrices) GetDailyFees() float64 {
	if p.DailyFees == nil {
		return 4.18
	}
	return *p.DailyFees
}

func (p AppConfigPrices) GetKwhFeesLow() float64 {
	if p.KwhFeesLow == nil {
		return 1.35022
	}
	return *p.KwhFeesLow
}

func (p AppConfigPrices) GetKwhFeesHigh() float64 {
	if p.KwhFeesHigh == nil {
		return 1.86567
	}
	return *p.KwhFeesHigh
}

func (p AppConfigPrices) GetSellFees() float64 {
	if p.SellFees == nil {
		return 0.45
	}
	return *p.SellFees
}

func (p AppConfigPrices) GetVAT() float64 {
	if p.VAT == nil {
		return 1.21
	}
	return *p.VAT
}

func (p AppConfigPrices) GetLowTariffHours() []int {
	str := "0,1,2,3,4,5,6,7,9,10,11,13,14,16,17,18,20,21,22,23"
	if p.LowTariffHours != nil {
		str = *p.LowTariffHours
	}
	return ParseHourList(str)
}

func (p AppConfigPrices) GetPrefetchRunAt() string {
	if p.PrefetchRunAt == nil {
		// OTE publishes the next day early in the afternoon
		return "5 14 * * *"
	}
	return *p.PrefetchRunAt
}

// AppConfigRanking holds the default classification parameters.
type AppConfigRanking struct {
	NumCheapestHours      *int     `mapstructure:"num_cheapest_hours"`
	NumMostExpensiveHours *int     `mapstructure:"num_most_expensive_hours"`
	AverageHours          *int     `mapstructure:"average_hours"`
	AverageHoursThreshold *float64 `mapstructure:"average_hours_threshold"`
}

func (r AppConfigRanking) GetNumCheapestHours() int {
	if r.NumCheapestHours == nil {
		return 8
	}
	return *r.NumCheapestHours
}

func (r AppConfigRanking) GetNumMostExpensiveHours() int {
	if r.NumMostExpensiveHours == nil {
		return 8
	}
	return *r.NumMostExpensiveHours
}

func (r AppConfigRanking) GetAverageHours() int {
	if r.AverageHours == nil {
		return 4
	}
	return *r.AverageHours
}

func (r AppConfigRanking) GetAverageHoursThreshold() float64 {
	if r.AverageHoursThreshold == nil {
		return 1.25
	}
	return *r.AverageHoursThreshold
}

type AppConfigBattery struct {
	// Price spread in CZK/kWh from which charging/discharging pays off
	KwhPrice *float64 `mapstructure:"kwh_price"`
}

func (b AppConfigBattery) GetKwhPrice() float64 {
	if b.KwhPrice == nil {
		return 2.5
	}
	return *b.KwhPrice
}

// AppConfigMqtt configures the optional Home Assistant publisher; it stays
// disabled while Host is empty.
type AppConfigMqtt struct {
	Host        string
	Port        int16
	Username    string
	Password    string
	TopicPrefix *string `mapstructure:"topic_prefix"`
	// Publish interval in seconds, default 60
	Interval *int `mapstructure:"interval"`
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "pricepower"
	}
	return *m.TopicPrefix
}

func (m AppConfigMqtt) GetInterval() int {
	if m.Interval == nil {
		return 60
	}
	return *m.Interval
}

type AppConfigLogging struct {
	// Min log level for database: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for the console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api      AppConfigApi
	Database AppConfigDatabase
	Prices   AppConfigPrices
	Ranking  AppConfigRanking
	Battery  AppConfigBattery
	Mqtt     AppConfigMqtt
	Logging  AppConfigLogging
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}

// Watch reloads the config file on change and hands the fresh config to the
// callback. Tunables like fees pick up the new values on the next request.
func Watch(onChange func(*AppConfig)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		var c AppConfig
		if err := viper.Unmarshal(&c); err != nil {
			slog.Default().Warn("config reload failed", slog.String("file", e.Name), slog.Any("error", err))
			return
		}
		onChange(&c)
	})
	viper.WatchConfig()
}

// ParseHourList parses a comma-separated hour list ("0,1,2"); entries that
// are not valid hours are dropped.
func ParseHourList(str string) []int {
	var hours []int
	for _, part := range strings.Split(str, ",") {
		hour, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || hour < 0 || hour > 23 {
			continue
		}
		hours = append(hours, hour)
	}
	return hours
}
