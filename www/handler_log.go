package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rosti-cz/pricepower-go/database"
	"github.com/rosti-cz/pricepower-go/logging"
)

type logEntryDTO struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Attrs     string    `json:"attrs"`
}

func NewLogHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level := stringOrDefault(r.URL, "level", "INFO")
		limit := intOrDefault(r.URL, "limit", 100)

		entries, err := db.GetLogEntries(r.Context(), logging.LevelFromString(&level), limit)
		if err != nil {
			logger.Error("fetching log entries", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		dtos := make([]logEntryDTO, len(entries))
		for i, e := range entries {
			dtos[i] = logEntryDTO{
				Timestamp: e.Timestamp,
				Level:     slog.Level(e.Level).String(),
				Message:   e.Message,
				Attrs:     e.Attrs,
			}
		}

		writeJSON(w, http.StatusOK, dtos)
	}
}
