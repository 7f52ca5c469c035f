package utils

import (
	"strings"
)

// UniqueEmails deduplicates while preserving first-seen order.
func UniqueEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	unique := make([]string, 0, len(emails))

	for _, email := range emails {
		if _, exists := seen[email]; !exists {
			seen[email] = struct{}{}
			unique = append(unique, email)
		}
	}

	return unique
}

func ExtractDomainFromEmail(email string) string {
	if email == "" {
		return ""
	}

	email = strings.TrimSpace(email)

	// Handle potential angle brackets in email (e.g., "Name <email@domain.com>")
	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			email = email[startIdx:endIdx]
		}
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// NormalizeDomain strips scheme, www prefix, path and port from a raw domain
// string so "https://www.Acme.com/shop" and "acme.com" key the same record.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	if idx := strings.IndexAny(domain, "/?#"); idx != -1 {
		domain = domain[:idx]
	}
	if idx := strings.Index(domain, ":"); idx != -1 {
		domain = domain[:idx]
	}
	return domain
}
