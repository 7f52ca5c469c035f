package smtp

import (
	"encoding/json"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/pkg/errors"
)

// Inbox is one rotating sending account, configured through
// SMTP_ACCOUNTS_JSON as {"inboxes":[{...}]}.
type Inbox struct {
	Email        string `json:"email"`
	SmtpHost     string `json:"smtp_host"`
	SmtpPort     int    `json:"smtp_port"`
	SmtpUser     string `json:"smtp_user"`
	SmtpPassword string `json:"smtp_password"`
}

type inboxesFile struct {
	Inboxes []Inbox `json:"inboxes"`
}

// ParseInboxes decodes and validates an SMTP_ACCOUNTS_JSON value. An empty
// string yields an empty rotation, which puts the sender in dry-run only.
func ParseInboxes(raw string) ([]Inbox, error) {
	if raw == "" {
		return nil, nil
	}

	var file inboxesFile
	if err := json.Unmarshal([]byte(raw), &file); err != nil {
		return nil, errors.Wrap(err, "cannot parse smtp accounts json")
	}

	for _, inbox := range file.Inboxes {
		validation := mailvalidate.ValidateEmailSyntax(inbox.Email)
		if !validation.IsValid {
			return nil, errors.Errorf("inbox address %q is not valid", inbox.Email)
		}
		if inbox.SmtpHost == "" || inbox.SmtpPort == 0 {
			return nil, errors.Errorf("inbox %s is missing smtp host or port", inbox.Email)
		}
		if inbox.SmtpUser == "" {
			return nil, errors.Errorf("inbox %s is missing smtp user", inbox.Email)
		}
	}
	return file.Inboxes, nil
}

// Domain returns the inbox address domain for Message-ID generation.
func (i Inbox) Domain() string {
	validation := mailvalidate.ValidateEmailSyntax(i.Email)
	return validation.Domain
}
