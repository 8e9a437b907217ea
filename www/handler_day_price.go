package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rosti-cz/pricepower-go/config"
	"github.com/rosti-cz/pricepower-go/pricing"
	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
	"github.com/rosti-cz/pricepower-go/types/maybe"
)

type cheapestHoursDTO struct {
	Hours      []slots.Slot      `json:"hours"`
	IsCheapest maybe.Maybe[bool] `json:"is_cheapest"`
}

type mostExpensiveHoursDTO struct {
	Hours              []slots.Slot      `json:"hours"`
	IsTheMostExpensive maybe.Maybe[bool] `json:"is_the_most_expensive"`
}

// dayPriceResponse echoes the effective parameters next to the derived
// series. Monthly and per-kWh fees are reported VAT-loaded; sell fees are
// not, selling is VAT-free for a household.
type dayPriceResponse struct {
	MonthlyFees                 float64               `json:"monthly_fees"`
	MonthlyFeesHour             float64               `json:"monthly_fees_hour"`
	KwhFeesLow                  float64               `json:"kwh_fees_low"`
	KwhFeesHigh                 float64               `json:"kwh_fees_high"`
	SellFees                    float64               `json:"sell_fees"`
	LowTariffHours              []slots.Slot          `json:"low_tariff_hours"`
	Hour                        slots.Slot            `json:"hour"`
	Vat                         float64               `json:"vat"`
	Spot                        types.PriceSeries     `json:"spot"`
	Total                       types.PriceSeries     `json:"total"`
	Sell                        types.PriceSeries     `json:"sell"`
	CheapestHours               cheapestHoursDTO      `json:"cheapest_hours"`
	MostExpensiveHours          mostExpensiveHoursDTO `json:"most_expensive_hours"`
	CheapestHoursByAverage      cheapestHoursDTO      `json:"cheapest_hours_by_average"`
	MostExpensiveHoursByAverage mostExpensiveHoursDTO `json:"most_expensive_hours_by_average"`
}

func NewDayPriceHandler(logger *slog.Logger, calc *pricing.Calculator, cnfg ConfigFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := cnfg()
		now := time.Now()

		date := now
		if dateStr := r.PathValue("date"); dateStr != "" {
			parsed, err := time.Parse(slots.DateLayout, dateStr)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, expected YYYY-MM-DD"})
				return
			}
			date = parsed
		}

		hour := slots.FromTime(now)
		if hourStr := r.URL.Query().Get("hour"); hourStr != "" {
			parsed, err := slots.Parse(hourStr)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hour, expected H or H:MM"})
				return
			}
			hour = parsed
		}

		monthlyFees := floatOrDefault(r.URL, "monthly_fees", c.Prices.GetMonthlyFees())
		dailyFees := floatOrDefault(r.URL, "daily_fees", c.Prices.GetDailyFees())
		vat := c.Prices.GetVAT()

		lowTariffHours := c.Prices.GetLowTariffHours()
		if str := r.URL.Query().Get("low_tariff_hours"); str != "" {
			lowTariffHours = config.ParseHourList(str)
		}

		params := pricing.Params{
			KwhFeesLow:  floatOrDefault(r.URL, "kwh_fees_low", c.Prices.GetKwhFeesLow()),
			KwhFeesHigh: floatOrDefault(r.URL, "kwh_fees_high", c.Prices.GetKwhFeesHigh()),
			SellFees:    floatOrDefault(r.URL, "sell_fees", c.Prices.GetSellFees()),
			VAT:         vat,
			LowTariff:   pricing.TariffSlots(lowTariffHours),
		}

		rankParams := pricing.RankParams{
			NumCheapest:      intOrDefault(r.URL, "num_cheapest_hours", c.Ranking.GetNumCheapestHours()),
			NumMostExpensive: intOrDefault(r.URL, "num_most_expensive_hours", c.Ranking.GetNumMostExpensiveHours()),
			AverageWindow:    intOrDefault(r.URL, "average_hours", c.Ranking.GetAverageHours()),
			AverageThreshold: floatOrDefault(r.URL, "average_hours_threshold", c.Ranking.GetAverageHoursThreshold()),
		}

		eval := types.Evaluation{Slot: hour, IsToday: slots.SameDate(date, now)}

		set, err := calc.DaySet(r.Context(), date, eval, params, boolOrDefault(r.URL, "no_cache", false))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		ranking := pricing.Rank(set, rankParams, eval)

		daysInMonth := float64(slots.DaysInMonth(date))
		standingFees := monthlyFees + dailyFees*daysInMonth

		writeJSON(w, http.StatusOK, dayPriceResponse{
			MonthlyFees:                 standingFees * vat,
			MonthlyFeesHour:             standingFees / daysInMonth / 24 * vat,
			KwhFeesLow:                  params.KwhFeesLow * vat,
			KwhFeesHigh:                 params.KwhFeesHigh * vat,
			SellFees:                    params.SellFees,
			LowTariffHours:              tariffSlotList(lowTariffHours),
			Hour:                        hour,
			Vat:                         vat,
			Spot:                        set.Spot,
			Total:                       set.Total,
			Sell:                        set.Sell,
			CheapestHours:               cheapestHoursDTO{ranking.Cheapest.Hours, ranking.Cheapest.IsMember},
			MostExpensiveHours:          mostExpensiveHoursDTO{ranking.MostExpensive.Hours, ranking.MostExpensive.IsMember},
			CheapestHoursByAverage:      cheapestHoursDTO{ranking.CheapestByAverage.Hours, ranking.CheapestByAverage.IsMember},
			MostExpensiveHoursByAverage: mostExpensiveHoursDTO{ranking.MostExpensiveByAverage.Hours, ranking.MostExpensiveByAverage.IsMember},
		})
	}
}

// tariffSlotList expands the low tariff hours to the quarter slots in the
// order the hours were given.
func tariffSlotList(hours []int) []slots.Slot {
	expanded := make([]slots.Slot, 0, len(hours)*4)
	for _, hour := range hours {
		for _, minute := range []int{0, 15, 30, 45} {
			expanded = append(expanded, slots.New(hour, minute))
		}
	}
	return expanded
}
