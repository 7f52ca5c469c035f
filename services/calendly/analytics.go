package calendly

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/leadscout/techscan/dto"
	"github.com/leadscout/techscan/internal/tracing"
)

// Analytics aggregates booking outcomes by persona, variant and technology,
// plus the overall sends-to-bookings conversion rate.
func (s *calendlyService) Analytics(ctx context.Context) (*dto.BookingAnalytics, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CalendlyService.Analytics")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	bookings, err := s.repositories.CalendlyBookingRepository.ListAll(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	analytics := &dto.BookingAnalytics{
		TotalBookings: len(bookings),
		ByPersona:     make(map[string]int),
		ByVariant:     make(map[string]int),
		ByTech:        make(map[string]int),
	}

	for _, booking := range bookings {
		if booking.MatchedScanID != "" {
			analytics.MatchedBookings++
		}
		analytics.ByPersona[orUnknown(booking.Persona)]++
		analytics.ByVariant[orUnknown(booking.VariantID)]++
		analytics.ByTech[orUnknown(booking.MainTech)]++
	}

	totalSends, err := s.repositories.EmailStatRepository.TotalSends(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if totalSends > 0 {
		analytics.OverallConversionRate = float64(analytics.MatchedBookings) / float64(totalSends)
	}

	return analytics, nil
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
