package listeners

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/leadscout/techscan/dto"
	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/services/events"
)

// SendOutreachListener consumes queued outreach emails, delivers them and
// records the send outcome.
type SendOutreachListener struct {
	events.BaseEventListener
	repositories *repository.Repositories
	sender       interfaces.SenderService
}

func NewSendOutreachListener(
	logger logger.Logger, repos *repository.Repositories, sender interfaces.SenderService,
) interfaces.EventListener {
	return &SendOutreachListener{
		BaseEventListener: events.NewBaseEventListener(
			logger,
			events.GetEventType[dto.SendOutreachEmail](),
			events.QueueSendOutreach,
		),
		repositories: repos,
		sender:       sender,
	}
}

func (l *SendOutreachListener) Handle(ctx context.Context, baseEvent any) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SendOutreachListener.Handle")
	defer span.Finish()
	tracing.SetDefaultListenerSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "event", baseEvent)

	validatedEvent, err := l.ValidateBaseEvent(ctx, baseEvent)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	message, err := events.DecodeEventData[dto.SendOutreachEmail](ctx, validatedEvent)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	tracing.TagDomain(span, message.Domain)
	tracing.TagEntity(span, message.ScanID)

	// the emailed flag may have been set between enqueue and delivery
	scan, err := l.repositories.TechScanRepository.GetByID(ctx, message.ScanID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if scan != nil && scan.Emailed {
		span.LogKV("result.skipped", "scan already emailed")
		return nil
	}
	alreadyEmailed, err := l.repositories.TechScanRepository.WasEmailed(ctx, message.Domain)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if alreadyEmailed {
		span.LogKV("result.skipped", "domain already emailed")
		return nil
	}

	if _, err := l.sender.Send(ctx, message.To, &message.Email); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if err := l.repositories.TechScanRepository.MarkEmailed(ctx, message.ScanID, message.Email.AsJSONMap()); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if err := l.repositories.EmailStatRepository.IncrementSend(ctx, message.Email.VariantID, message.Email.PersonaID, message.Email.MainTech); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}
