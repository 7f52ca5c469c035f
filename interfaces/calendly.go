package interfaces

import (
	"context"

	"github.com/leadscout/techscan/dto"
)

// CalendlyService syncs scheduled meetings against emailed leads and exposes
// conversion analytics.
type CalendlyService interface {
	Sync(ctx context.Context) (*dto.SyncStats, error)
	Analytics(ctx context.Context) (*dto.BookingAnalytics, error)
}
