package interfaces

import (
	"context"

	"github.com/leadscout/techscan/internal/models"
)

// SenderService delivers a generated email through one of the rotating SMTP
// inboxes. It owns inbox rotation; it does not decide whether to send.
type SenderService interface {
	// Send delivers the email and returns the inbox address it went out
	// from. With sending disabled it logs the message and returns the
	// would-be sender.
	Send(ctx context.Context, to string, email *models.GeneratedEmail) (fromAddress string, err error)
	InboxCount() int
	// SendingEnabled reports whether real SMTP delivery is on; off means
	// dry-run logging only.
	SendingEnabled() bool
}
