package dto

import "github.com/leadscout/techscan/internal/models"

// SendOutreachEmail is published by the pipeline once a scan produced an
// email, and consumed by the send listener.
type SendOutreachEmail struct {
	ScanID string                `json:"scanId"`
	Domain string                `json:"domain"`
	To     string                `json:"to"`
	Email  models.GeneratedEmail `json:"email"`
}
