package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/internal/utils"
)

type DomainSeenRepository interface {
	Get(ctx context.Context, domain string) (*models.DomainSeen, error)
	ScannedSince(ctx context.Context, domain string, since time.Time) (bool, error)
	Record(ctx context.Context, domain string, category enum.TechCategory) error
	Count(ctx context.Context) (int64, error)
}

type domainSeenRepository struct {
	db *gorm.DB
}

func NewDomainSeenRepository(db *gorm.DB) DomainSeenRepository {
	return &domainSeenRepository{
		db: db,
	}
}

func (r *domainSeenRepository) Get(ctx context.Context, domain string) (*models.DomainSeen, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainSeenRepository.Get")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagDomain(span, domain)

	if domain == "" {
		return nil, ErrInvalidInput
	}

	var seen models.DomainSeen
	err := r.db.WithContext(ctx).Where("domain = ?", domain).First(&seen).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &seen, nil
}

func (r *domainSeenRepository) ScannedSince(ctx context.Context, domain string, since time.Time) (bool, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainSeenRepository.ScannedSince")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagDomain(span, domain)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DomainSeen{}).
		Where("domain = ? AND last_scanned > ?", domain, since).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return false, err
	}
	return count > 0, nil
}

// Record creates the row on first sight (times_scanned = 1) or bumps
// times_scanned and last_scanned on every subsequent attempt.
func (r *domainSeenRepository) Record(ctx context.Context, domain string, category enum.TechCategory) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainSeenRepository.Record")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagDomain(span, domain)

	if domain == "" {
		return ErrInvalidInput
	}
	now := utils.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen models.DomainSeen
		err := tx.Where("domain = ?", domain).First(&seen).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seen = models.DomainSeen{
				Domain:       domain,
				Category:     category,
				FirstSeen:    now,
				LastScanned:  now,
				TimesScanned: 1,
			}
			if err := tx.Create(&seen).Error; err != nil {
				tracing.TraceErr(span, errors.Wrap(err, "db error"))
				return err
			}
			return nil
		}
		if err != nil {
			tracing.TraceErr(span, errors.Wrap(err, "db error"))
			return err
		}

		updates := map[string]interface{}{
			"times_scanned": gorm.Expr("times_scanned + 1"),
			"last_scanned":  now,
		}
		if category != "" {
			updates["category"] = category
		}
		if err := tx.Model(&models.DomainSeen{}).Where("domain = ?", domain).Updates(updates).Error; err != nil {
			tracing.TraceErr(span, errors.Wrap(err, "db error"))
			return err
		}
		return nil
	})
}

func (r *domainSeenRepository) Count(ctx context.Context) (int64, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainSeenRepository.Count")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.DomainSeen{}).Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}
	return count, nil
}
