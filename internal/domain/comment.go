package domain

import (
	"errors"
	"fmt"
	"time"
)

// Comment is a free-text note owned by exactly one ticket. Comments are
// immutable once stored; they can only be deleted.
type Comment struct {
	ID        int64
	TicketID  int64
	Text      string
	Author    string
	CreatedAt time.Time
}

// ErrReferential matches any ReferentialError through errors.Is.
var ErrReferential = errors.New("referential error")

// ReferentialError reports a comment written against a ticket that does not exist.
type ReferentialError struct {
	TicketID int64
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("ticket %d does not exist", e.TicketID)
}

func (e *ReferentialError) Is(target error) bool {
	return target == ErrReferential
}
