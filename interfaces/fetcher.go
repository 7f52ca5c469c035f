package interfaces

import "context"

// FetcherService is the only component that touches the network for page
// content. The engine treats it as an external collaborator; tests inject
// fakes.
type FetcherService interface {
	// Fetch returns the raw page body and response headers for a domain.
	// On error the body is empty and the caller records the error string
	// on the scan instead of failing the pipeline.
	Fetch(ctx context.Context, domain string) (body string, headers map[string]string, err error)
}
