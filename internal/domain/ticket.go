package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
//
// Any status may be written at any time; the intended flow is
// Open -> In Progress -> Resolved but it is not enforced here.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// TicketPriority enumerates ticket urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketStatuses lists every accepted status in workflow order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved}

// TicketPriorities lists every accepted priority from lowest to highest.
var TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh}

// Valid reports whether s is one of the enumerated statuses.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the enumerated priorities.
func (p TicketPriority) Valid() bool {
	for _, candidate := range TicketPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// ParseTicketStatus resolves a status case-insensitively ("in progress" -> In Progress).
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	raw = strings.TrimSpace(raw)
	for _, candidate := range TicketStatuses {
		if strings.EqualFold(raw, string(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// ParseTicketPriority resolves a priority case-insensitively.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	raw = strings.TrimSpace(raw)
	for _, candidate := range TicketPriorities {
		if strings.EqualFold(raw, string(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// Ticket is the aggregate for helpdesk issues. ID and CreatedAt never change after insert.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
}

// TicketChanges is a partial update. Nil fields are left untouched.
type TicketChanges struct {
	Title       *string
	Description *string
	Status      *TicketStatus
	Priority    *TicketPriority
}

// Empty reports whether no field is set.
func (c TicketChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil && c.Priority == nil
}

// Apply copies the set fields onto t.
func (c TicketChanges) Apply(t *Ticket) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
}
