package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestCreateTicketRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      CreateTicketRequest
		priority domain.TicketPriority
		fields   []string
	}{
		{"defaults priority", CreateTicketRequest{Title: "Printer broken", Description: "Office printer jams on page 2"}, domain.TicketPriorityMedium, nil},
		{"case-insensitive priority", CreateTicketRequest{Title: "Printer broken", Description: "Office printer jams on page 2", Priority: "high"}, domain.TicketPriorityHigh, nil},
		{"short title", CreateTicketRequest{Title: "ab", Description: "Office printer jams on page 2"}, domain.TicketPriorityMedium, []string{"title"}},
		{"missing description", CreateTicketRequest{Title: "Printer broken"}, domain.TicketPriorityMedium, []string{"description"}},
		{"long description", CreateTicketRequest{Title: "Printer broken", Description: strings.Repeat("x", 501)}, domain.TicketPriorityMedium, []string{"description"}},
		{"unknown priority", CreateTicketRequest{Title: "Printer broken", Description: "Office printer jams on page 2", Priority: "Urgent"}, "", []string{"priority"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priority, err := tt.req.Validate()
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.priority, priority)
				return
			}
			de := apperrors.ToDomainError(err)
			require.NotNil(t, de)
			assert.Equal(t, "VALIDATION_FAILED", de.Code)
			for _, field := range tt.fields {
				assert.Contains(t, de.Details, field)
			}
		})
	}
}

func TestUpdateTicketRequestValidate(t *testing.T) {
	t.Parallel()

	status, priority, err := UpdateTicketRequest{
		Title:       "Printer broken",
		Description: "Office printer jams on page 2",
		Status:      "in progress",
		Priority:    "LOW",
	}.Validate()
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, status)
	assert.Equal(t, domain.TicketPriorityLow, priority)

	_, _, err = UpdateTicketRequest{Title: "Printer broken", Description: "Office printer jams on page 2", Status: "Closed", Priority: "Low"}.Validate()
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Contains(t, de.Details, "status")
}

func TestCreateCommentRequestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CreateCommentRequest{Text: "Checked toner", Author: "Alice"}.Validate())
	assert.Error(t, CreateCommentRequest{Text: "  ", Author: "Alice"}.Validate())
	assert.Error(t, CreateCommentRequest{Text: "ok", Author: strings.Repeat("a", 101)}.Validate())
	assert.Error(t, CreateCommentRequest{Text: strings.Repeat("a", 1001), Author: "Alice"}.Validate())
}

func TestUpdateStatusRequestValidate(t *testing.T) {
	t.Parallel()

	status, err := UpdateStatusRequest{Status: "resolved"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, status)

	_, err = UpdateStatusRequest{Status: ""}.Validate()
	assert.Error(t, err)
}
