// Package hass publishes the current price and battery plan over MQTT so a
// Home Assistant instance can consume them without polling the HTTP API.
// Each value goes to its own retained topic under the configured prefix:
//
//	<prefix>/price/total
//	<prefix>/price/spot
//	<prefix>/price/sell
//	<prefix>/battery/is_viable
//	<prefix>/battery/is_charging_hour
//	<prefix>/battery/is_discharging_hour
package hass

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/rosti-cz/pricepower-go/config"
	"github.com/rosti-cz/pricepower-go/pricing"
	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
)

const publishTimeout = 5 * time.Second

type Publisher struct {
	mqttClient mqtt.Client
	logger     *slog.Logger
	calc       *pricing.Calculator
	cnfg       func() *config.AppConfig
}

func New(calc *pricing.Calculator, cnfg func() *config.AppConfig) *Publisher {
	logger := slog.Default().With("module", "hass")
	mqttCnfg := cnfg().Mqtt

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", mqttCnfg.Host, mqttCnfg.Port))
	opts.SetClientID("pricepower")
	opts.SetUsername(mqttCnfg.Username)
	opts.SetPassword(mqttCnfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("hass MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("hass MQTT connection lost", slog.Any("error", err))
	}

	mqttLogger := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLogger, slog.LevelWarn)

	return &Publisher{
		mqttClient: mqtt.NewClient(opts),
		logger:     logger,
		calc:       calc,
		cnfg:       cnfg,
	}
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting hass MQTT client")
	if token := p.mqttClient.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.mqttClient.Disconnect(250)
}

// Run publishes on the configured interval until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	interval := time.Duration(p.cnfg().Mqtt.GetInterval()) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Keeping state to avoid spamming logs
	publishErrorState := false

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := p.publishOnce(ctx); err != nil {
				if !publishErrorState {
					publishErrorState = true
					p.logger.Warn("hass publish failed", slog.Any("error", err))
				}
				continue
			}
			publishErrorState = false
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) error {
	cnfg := p.cnfg()
	now := time.Now()
	eval := types.Evaluation{Slot: slots.FromTime(now), IsToday: true}

	params := pricing.Params{
		KwhFeesLow:  cnfg.Prices.GetKwhFeesLow(),
		KwhFeesHigh: cnfg.Prices.GetKwhFeesHigh(),
		SellFees:    cnfg.Prices.GetSellFees(),
		VAT:         cnfg.Prices.GetVAT(),
		LowTariff:   pricing.TariffSlots(cnfg.Prices.GetLowTariffHours()),
	}

	set, err := p.calc.DaySet(ctx, now, eval, params, false)
	if err != nil {
		return fmt.Errorf("deriving price set: %w", err)
	}

	plan, err := p.calc.BatteryPlan(ctx, now, params, cnfg.Battery.GetKwhPrice(), false)
	if err != nil {
		return fmt.Errorf("planning battery: %w", err)
	}

	prefix := cnfg.Mqtt.GetTopicPrefix()
	messages := map[string]string{
		prefix + "/price/total":                 formatPrice(set.Total.Now.ValueOrDefault(0)),
		prefix + "/price/spot":                  formatPrice(set.Spot.Now.ValueOrDefault(0)),
		prefix + "/price/sell":                  formatPrice(set.Sell.Now.ValueOrDefault(0)),
		prefix + "/battery/is_viable":           formatBool(plan.IsViable),
		prefix + "/battery/is_charging_hour":    formatBool(plan.IsChargingHour),
		prefix + "/battery/is_discharging_hour": formatBool(plan.IsDischargingHour),
	}

	for topic, payload := range messages {
		token := p.mqttClient.Publish(topic, 0, true, payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish to %s timed out", topic)
		}
		if token.Error() != nil {
			return fmt.Errorf("publish to %s: %w", topic, token.Error())
		}
	}

	p.logger.Debug("hass state published", slog.String("prefix", prefix))
	return nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBool(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
