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

type EmailStatRepository interface {
	IncrementSend(ctx context.Context, variantID, personaID, mainTech string) error
	ListAll(ctx context.Context) ([]models.EmailStat, error)
	TotalSends(ctx context.Context) (int64, error)
}

type emailStatRepository struct {
	db *gorm.DB
}

func NewEmailStatRepository(db *gorm.DB) EmailStatRepository {
	return &emailStatRepository{
		db: db,
	}
}

func (r *emailStatRepository) IncrementSend(ctx context.Context, variantID, personaID, mainTech string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "EmailStatRepository.IncrementSend")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("variantId", variantID, "personaId", personaID, "mainTech", mainTech)

	if variantID == "" || personaID == "" || mainTech == "" {
		return ErrInvalidInput
	}
	now := utils.Now()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "variant_id"}, {Name: "persona_id"}, {Name: "main_tech"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"send_count":   gorm.Expr("email_stats.send_count + 1"),
			"last_sent_at": now,
		}),
	}).Create(&models.EmailStat{
		VariantID:  variantID,
		PersonaID:  personaID,
		MainTech:   mainTech,
		SendCount:  1,
		LastSentAt: &now,
	}).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *emailStatRepository) ListAll(ctx context.Context) ([]models.EmailStat, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "EmailStatRepository.ListAll")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var stats []models.EmailStat
	err := r.db.WithContext(ctx).Order("variant_id ASC").Find(&stats).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return stats, nil
}

func (r *emailStatRepository) TotalSends(ctx context.Context) (int64, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "EmailStatRepository.TotalSends")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.EmailStat{}).
		Select("COALESCE(SUM(send_count), 0)").
		Scan(&total).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}
	return total, nil
}
