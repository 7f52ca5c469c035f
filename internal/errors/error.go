package errors

import "github.com/pkg/errors"

var (
	// engine errors
	ErrNoPersonaAvailable = errors.New("no persona available")
	ErrNoVariantAvailable = errors.New("no message variant available for category")
	ErrTemplateRender     = errors.New("template render failed")
	ErrCatalogInvalid     = errors.New("signature catalog is invalid")

	// outreach errors
	ErrNoInboxAvailable = errors.New("no smtp inbox available")

	// common errors
	ErrInvalidInput = errors.New("invalid input")
)
