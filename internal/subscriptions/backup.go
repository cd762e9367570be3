package subscriptions

import (
	"log/slog"
	"time"

	"github.com/subscry/subscry/internal/models"
)

// BackupEntry is one subscription-shaped object in a backup file.
// Identity fields and timestamps are ignored on import (fresh ones are
// assigned); title, amount and frequency are required.
type BackupEntry struct {
	Title              string                     `json:"title"`
	Amount             int64                      `json:"amount"`
	Frequency          models.Frequency           `json:"frequency"`
	Participants       []models.InlineParticipant `json:"participants"`
	CustomIntervalDays *int                       `json:"custom_interval_days"`
	StartDate          *time.Time                 `json:"start_date"`
	EndDate            *time.Time                 `json:"end_date"`
	AutoRenew          *bool                      `json:"auto_renew"`
	Tags               string                     `json:"tags"`
	Notes              *string                    `json:"notes"`
}

// Import creates a subscription per valid backup entry and returns how
// many were imported. Entries missing a title, amount or frequency are
// skipped without aborting the batch, as are entries whose frequency the
// calculator rejects. Missing start dates default to now and missing
// auto-renew defaults to on.
func (r *Repository) Import(entries []BackupEntry) int {
	count := 0
	for _, e := range entries {
		if e.Title == "" || e.Amount == 0 || e.Frequency == "" {
			slog.Warn("skipping backup entry with missing required fields", "title", e.Title)
			continue
		}

		input := CreateInput{
			Title:              e.Title,
			Amount:             e.Amount,
			Frequency:          e.Frequency,
			Participants:       e.Participants,
			CustomIntervalDays: e.CustomIntervalDays,
			EndDate:            e.EndDate,
			AutoRenew:          true,
			Tags:               e.Tags,
			Notes:              e.Notes,
		}
		if e.StartDate != nil {
			input.StartDate = *e.StartDate
		} else {
			input.StartDate = r.now()
		}
		if e.AutoRenew != nil {
			input.AutoRenew = *e.AutoRenew
		}

		if _, err := r.Create(input); err != nil {
			slog.Warn("skipping unimportable backup entry", "title", e.Title, "error", err)
			continue
		}
		count++
	}
	return count
}
