package repository

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/internal/utils"
)

type TechScanRepository interface {
	Create(ctx context.Context, scan *models.TechScan) error
	GetByID(ctx context.Context, id string) (*models.TechScan, error)
	ListByDomain(ctx context.Context, domain string) ([]models.TechScan, error)
	ListRecent(ctx context.Context, limit int) ([]models.TechScan, error)
	WasEmailed(ctx context.Context, domain string) (bool, error)
	MarkEmailed(ctx context.Context, id string, generatedEmail models.JSONMap) error
	FindEmailedByExtractedEmail(ctx context.Context, email string) (*models.TechScan, error)
	MarkBooked(ctx context.Context, id string, booking *models.CalendlyBooking) error
	SetSnapshotKey(ctx context.Context, id string, key string) error
}

type techScanRepository struct {
	db *gorm.DB
}

func NewTechScanRepository(db *gorm.DB) TechScanRepository {
	return &techScanRepository{
		db: db,
	}
}

func (r *techScanRepository) Create(ctx context.Context, scan *models.TechScan) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagDomain(span, scan.Domain)

	if scan == nil {
		return ErrInvalidInput
	}
	scan.CreatedAt = utils.Now()

	err := r.db.WithContext(ctx).Create(scan).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *techScanRepository) GetByID(ctx context.Context, id string) (*models.TechScan, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	if id == "" {
		return nil, ErrInvalidInput
	}

	var scan models.TechScan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&scan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &scan, nil
}

func (r *techScanRepository) ListByDomain(ctx context.Context, domain string) ([]models.TechScan, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.ListByDomain")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagDomain(span, domain)

	var scans []models.TechScan
	err := r.db.WithContext(ctx).
		Where("domain = ?", domain).
		Order("created_at DESC").
		Find(&scans).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return scans, nil
}

func (r *techScanRepository) ListRecent(ctx context.Context, limit int) ([]models.TechScan, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.ListRecent")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if limit <= 0 {
		limit = 50
	}

	var scans []models.TechScan
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return scans, nil
}

// WasEmailed reports whether any scan of the domain already produced a sent
// email. This is the "never email the same business twice" gate.
func (r *techScanRepository) WasEmailed(ctx context.Context, domain string) (bool, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.WasEmailed")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagDomain(span, domain)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TechScan{}).
		Where("domain = ? AND emailed = ?", domain, true).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return false, err
	}
	return count > 0, nil
}

func (r *techScanRepository) MarkEmailed(ctx context.Context, id string, generatedEmail models.JSONMap) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.MarkEmailed")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	updates := map[string]interface{}{
		"emailed":    true,
		"emailed_at": utils.Now(),
	}
	if generatedEmail != nil {
		updates["generated_email"] = generatedEmail
	}

	err := r.db.WithContext(ctx).
		Model(&models.TechScan{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

// FindEmailedByExtractedEmail matches a calendly invitee email against the
// jsonb emails array of emailed scans. JSONB containment first, in-memory
// scan of emailed rows as fallback.
func (r *techScanRepository) FindEmailedByExtractedEmail(ctx context.Context, email string) (*models.TechScan, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.FindEmailedByExtractedEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvalidInput
	}

	var scan models.TechScan
	err := r.db.WithContext(ctx).
		Where(`emails @> ?`, `["`+email+`"]`).
		Order("created_at DESC").
		First(&scan).Error
	if err == nil {
		return &scan, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tracing.TraceErr(span, errors.Wrap(err, "jsonb containment query failed, falling back to in-memory match"))

		var emailed []models.TechScan
		if dbErr := r.db.WithContext(ctx).Where("emailed = ?", true).Find(&emailed).Error; dbErr != nil {
			tracing.TraceErr(span, errors.Wrap(dbErr, "db error"))
			return nil, dbErr
		}
		for i := range emailed {
			for _, e := range emailed[i].Emails {
				if s, ok := e.(string); ok && strings.EqualFold(strings.TrimSpace(s), email) {
					return &emailed[i], nil
				}
			}
		}
	}
	return nil, nil
}

func (r *techScanRepository) MarkBooked(ctx context.Context, id string, booking *models.CalendlyBooking) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.MarkBooked")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	if id == "" || booking == nil {
		return ErrInvalidInput
	}

	err := r.db.WithContext(ctx).
		Model(&models.TechScan{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"booked":                 true,
			"booked_at":              booking.EventStartAt,
			"calendly_event_uri":     booking.EventURI,
			"calendly_invitee_email": booking.InviteeEmail,
			"calendly_event_name":    booking.EventName,
		}).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *techScanRepository) SetSnapshotKey(ctx context.Context, id string, key string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "TechScanRepository.SetSnapshotKey")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.TechScan{}).
		Where("id = ?", id).
		Update("snapshot_key", key).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}
