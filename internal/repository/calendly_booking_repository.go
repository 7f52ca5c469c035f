package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/internal/utils"
)

type CalendlyBookingRepository interface {
	Upsert(ctx context.Context, booking *models.CalendlyBooking) error
	ListAll(ctx context.Context) ([]models.CalendlyBooking, error)
}

type calendlyBookingRepository struct {
	db *gorm.DB
}

func NewCalendlyBookingRepository(db *gorm.DB) CalendlyBookingRepository {
	return &calendlyBookingRepository{
		db: db,
	}
}

// Upsert inserts the booking or refreshes its mutable fields, keyed on
// (event_uuid, invitee_email) to stay idempotent across sync runs.
func (r *calendlyBookingRepository) Upsert(ctx context.Context, booking *models.CalendlyBooking) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "CalendlyBookingRepository.Upsert")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if booking == nil || booking.EventUUID == "" || booking.InviteeEmail == "" {
		return ErrInvalidInput
	}

	now := utils.Now()
	booking.UpdatedAt = now
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_uuid"}, {Name: "invitee_email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"invitee_name", "invitee_status", "event_status",
			"matched_scan_id", "matched_domain",
			"persona", "persona_email", "variant_id", "main_tech",
			"updated_at",
		}),
	}).Create(booking).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *calendlyBookingRepository) ListAll(ctx context.Context) ([]models.CalendlyBooking, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "CalendlyBookingRepository.ListAll")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var bookings []models.CalendlyBooking
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return bookings, nil
}
