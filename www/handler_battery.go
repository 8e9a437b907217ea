package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rosti-cz/pricepower-go/config"
	"github.com/rosti-cz/pricepower-go/pricing"
)

func NewBatteryHandler(logger *slog.Logger, calc *pricing.Calculator, cnfg ConfigFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := cnfg()

		lowTariffHours := c.Prices.GetLowTariffHours()
		if str := r.URL.Query().Get("low_tariff_hours"); str != "" {
			lowTariffHours = config.ParseHourList(str)
		}

		params := pricing.Params{
			KwhFeesLow:  floatOrDefault(r.URL, "kwh_fees_low", c.Prices.GetKwhFeesLow()),
			KwhFeesHigh: floatOrDefault(r.URL, "kwh_fees_high", c.Prices.GetKwhFeesHigh()),
			SellFees:    floatOrDefault(r.URL, "sell_fees", c.Prices.GetSellFees()),
			VAT:         c.Prices.GetVAT(),
			LowTariff:   pricing.TariffSlots(lowTariffHours),
		}

		batteryKwhPrice := floatOrDefault(r.URL, "battery_kwh_price", c.Battery.GetKwhPrice())

		plan, err := calc.BatteryPlan(r.Context(), time.Now(), params, batteryKwhPrice, boolOrDefault(r.URL, "no_cache", false))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, plan)
	}
}
