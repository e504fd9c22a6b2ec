package dto

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const (
	titleMin       = 3
	titleMax       = 100
	descriptionMin = 10
	descriptionMax = 500
	commentTextMax = 1000
	authorMax      = 100
)

type fieldErrors map[string]any

func (f fieldErrors) length(field, value string, min, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 {
		f[field] = "required"
		return
	}
	if n < min || n > max {
		f[field] = fmt.Sprintf("must be between %d and %d characters", min, max)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", f)
}

// Validate checks field constraints and resolves the priority, defaulting to Medium.
func (r CreateTicketRequest) Validate() (domain.TicketPriority, error) {
	errs := fieldErrors{}
	errs.length("title", r.Title, titleMin, titleMax)
	errs.length("description", r.Description, descriptionMin, descriptionMax)

	priority := domain.TicketPriorityMedium
	if strings.TrimSpace(r.Priority) != "" {
		parsed, ok := domain.ParseTicketPriority(r.Priority)
		if !ok {
			errs["priority"] = "must be one of Low, Medium, High"
		}
		priority = parsed
	}
	return priority, errs.err()
}

// Validate checks field constraints and resolves the enumerations.
func (r UpdateTicketRequest) Validate() (domain.TicketStatus, domain.TicketPriority, error) {
	errs := fieldErrors{}
	errs.length("title", r.Title, titleMin, titleMax)
	errs.length("description", r.Description, descriptionMin, descriptionMax)

	status, ok := domain.ParseTicketStatus(r.Status)
	if !ok {
		errs["status"] = "must be one of Open, In Progress, Resolved"
	}
	priority, ok := domain.ParseTicketPriority(r.Priority)
	if !ok {
		errs["priority"] = "must be one of Low, Medium, High"
	}
	return status, priority, errs.err()
}

// Validate resolves the requested status.
func (r UpdateStatusRequest) Validate() (domain.TicketStatus, error) {
	status, ok := domain.ParseTicketStatus(r.Status)
	if !ok {
		return "", apperrors.NewValidationError("validation failed", map[string]any{
			"status": "must be one of Open, In Progress, Resolved",
		})
	}
	return status, nil
}

// Validate checks comment text and author lengths.
func (r CreateCommentRequest) Validate() error {
	errs := fieldErrors{}
	errs.length("text", r.Text, 1, commentTextMax)
	errs.length("author", r.Author, 1, authorMax)
	return errs.err()
}
