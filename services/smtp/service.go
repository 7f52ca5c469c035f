package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"sync"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/leadscout/techscan/interfaces"
	techscan_errors "github.com/leadscout/techscan/internal/errors"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/internal/utils"
)

type smtpSender struct {
	log         logger.Logger
	inboxes     []Inbox
	sendEnabled bool

	mu   sync.Mutex
	next int
}

// NewSmtpSender builds the rotating-inbox sender. With sendEnabled false
// every Send is a dry run: the message is logged and counted but nothing
// touches the network.
func NewSmtpSender(log logger.Logger, inboxes []Inbox, sendEnabled bool) interfaces.SenderService {
	return &smtpSender{
		log:         log,
		inboxes:     inboxes,
		sendEnabled: sendEnabled,
	}
}

func (s *smtpSender) InboxCount() int {
	return len(s.inboxes)
}

func (s *smtpSender) SendingEnabled() bool {
	return s.sendEnabled
}

func (s *smtpSender) Send(ctx context.Context, to string, email *models.GeneratedEmail) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SmtpSender.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if email == nil {
		return "", errors.Wrap(techscan_errors.ErrInvalidInput, "email is nil")
	}
	span.LogKV("request.to", to, "request.variantId", email.VariantID)

	if email.Subject == "" || email.Body == "" {
		return "", errors.Wrap(techscan_errors.ErrInvalidInput, "email must have subject and body")
	}
	validation := mailvalidate.ValidateEmailSyntax(to)
	if !validation.IsValid {
		return "", errors.Wrapf(techscan_errors.ErrInvalidInput, "recipient address %q is not valid", to)
	}

	inbox, err := s.nextInbox()
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	span.LogKV("result.fromAddress", inbox.Email)

	message := buildMessage(inbox, to, email)

	if !s.sendEnabled {
		s.log.Infof("dry run: would send %q to %s from %s as %s", email.Subject, to, inbox.Email, email.Persona)
		return inbox.Email, nil
	}

	if err := s.sendWithSTARTTLS(ctx, inbox, to, message); err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	s.log.Infof("sent %q to %s from %s", email.Subject, to, inbox.Email)
	return inbox.Email, nil
}

func (s *smtpSender) nextInbox() (Inbox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inboxes) == 0 {
		return Inbox{}, techscan_errors.ErrNoInboxAvailable
	}
	inbox := s.inboxes[s.next%len(s.inboxes)]
	s.next++
	return inbox, nil
}

// buildMessage renders the plain-text MIME message. The From header carries
// the persona display name over the inbox address; replies route to the
// persona's own address when it differs.
func buildMessage(inbox Inbox, to string, email *models.GeneratedEmail) []byte {
	buffer := bytes.NewBuffer(nil)

	writeHeader := func(name, value string) {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", name, value))
	}

	fromName := email.Persona
	if fromName == "" {
		fromName = inbox.Email
	}
	writeHeader("From", fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", fromName), inbox.Email))
	writeHeader("To", to)
	if email.PersonaEmail != "" && email.PersonaEmail != inbox.Email {
		writeHeader("Reply-To", email.PersonaEmail)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	writeHeader("Date", utils.Now().Format("Mon, 02 Jan 2006 15:04:05 -0700"))
	writeHeader("Message-ID", utils.GenerateMessageID(inbox.Domain(), ""))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", "text/plain; charset=UTF-8")

	buffer.WriteString("\r\n")
	buffer.WriteString(email.Body)
	return buffer.Bytes()
}

func (s *smtpSender) sendWithSTARTTLS(ctx context.Context, inbox Inbox, to string, message []byte) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SmtpSender.sendWithSTARTTLS")
	defer span.Finish()
	span.LogKV("smtp_server", inbox.SmtpHost)
	span.LogKV("smtp_port", inbox.SmtpPort)

	addr := fmt.Sprintf("%s:%d", inbox.SmtpHost, inbox.SmtpPort)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		err = fmt.Errorf("failed to connect to SMTP server: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, inbox.SmtpHost)
	if err != nil {
		err = fmt.Errorf("failed to create SMTP client: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: inbox.SmtpHost,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		err = fmt.Errorf("failed to start TLS: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	auth := smtp.PlainAuth("", inbox.SmtpUser, inbox.SmtpPassword, inbox.SmtpHost)
	if err = client.Auth(auth); err != nil {
		err = fmt.Errorf("SMTP authentication failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if err = client.Mail(inbox.Email); err != nil {
		err = fmt.Errorf("SMTP MAIL command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	if err = client.Rcpt(to); err != nil {
		err = fmt.Errorf("SMTP RCPT command failed for %s: %w", to, err)
		tracing.TraceErr(span, err)
		return err
	}

	dataWriter, err := client.Data()
	if err != nil {
		err = fmt.Errorf("SMTP DATA command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	if _, err = dataWriter.Write(message); err != nil {
		err = fmt.Errorf("failed to write email data: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	if err = dataWriter.Close(); err != nil {
		err = fmt.Errorf("failed to close data writer: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	return client.Quit()
}
