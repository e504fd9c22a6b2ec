// Package dispatch routes commands and queries to their handlers.
//
// Every operation has exactly one method on Handlers, so the routing is
// checked by the compiler instead of a runtime registry keyed by type.
package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Handlers is the full set of ticket and comment operations.
type Handlers interface {
	CreateTicket(ctx context.Context, cmd service.CreateTicketCommand) (int64, error)
	UpdateTicket(ctx context.Context, cmd service.UpdateTicketCommand) (bool, error)
	UpdateTicketStatus(ctx context.Context, cmd service.UpdateTicketStatusCommand) (bool, error)
	DeleteTicket(ctx context.Context, cmd service.DeleteTicketCommand) (bool, error)
	ListTickets(ctx context.Context, query service.ListTicketsQuery) ([]dto.TicketSummary, error)
	GetTicketByID(ctx context.Context, query service.GetTicketByIDQuery) (*dto.TicketDetail, error)
	CreateComment(ctx context.Context, cmd service.CreateCommentCommand) (int64, error)
	ListCommentsByTicket(ctx context.Context, query service.ListCommentsByTicketQuery) ([]dto.CommentView, error)
	DeleteComment(ctx context.Context, cmd service.DeleteCommentCommand) (bool, error)
}

var (
	_ Handlers = (*service.HelpdeskService)(nil)
	_ Handlers = (*Dispatcher)(nil)
)

// Outcome labels recorded per operation.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeReferential = "referential_error"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// Dispatcher forwards each call to the wrapped handlers and returns the
// result unchanged, recording a log line and an operation metric.
type Dispatcher struct {
	next    Handlers
	logger  *zap.Logger
	metrics *observability.Metrics
}

// New wraps next. metrics may be nil.
func New(next Handlers, logger *zap.Logger, metrics *observability.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{next: next, logger: logger, metrics: metrics}
}

func (d *Dispatcher) CreateTicket(ctx context.Context, cmd service.CreateTicketCommand) (int64, error) {
	return observe(ctx, d, "CreateTicket", never[int64], func(ctx context.Context) (int64, error) {
		return d.next.CreateTicket(ctx, cmd)
	})
}

func (d *Dispatcher) UpdateTicket(ctx context.Context, cmd service.UpdateTicketCommand) (bool, error) {
	return observe(ctx, d, "UpdateTicket", isFalse, func(ctx context.Context) (bool, error) {
		return d.next.UpdateTicket(ctx, cmd)
	}, zap.Int64("ticket_id", cmd.ID))
}

func (d *Dispatcher) UpdateTicketStatus(ctx context.Context, cmd service.UpdateTicketStatusCommand) (bool, error) {
	return observe(ctx, d, "UpdateTicketStatus", isFalse, func(ctx context.Context) (bool, error) {
		return d.next.UpdateTicketStatus(ctx, cmd)
	}, zap.Int64("ticket_id", cmd.ID), zap.String("status", string(cmd.Status)))
}

func (d *Dispatcher) DeleteTicket(ctx context.Context, cmd service.DeleteTicketCommand) (bool, error) {
	return observe(ctx, d, "DeleteTicket", isFalse, func(ctx context.Context) (bool, error) {
		return d.next.DeleteTicket(ctx, cmd)
	}, zap.Int64("ticket_id", cmd.ID))
}

func (d *Dispatcher) ListTickets(ctx context.Context, query service.ListTicketsQuery) ([]dto.TicketSummary, error) {
	return observe(ctx, d, "ListTickets", never[[]dto.TicketSummary], func(ctx context.Context) ([]dto.TicketSummary, error) {
		return d.next.ListTickets(ctx, query)
	}, zap.String("status", query.Status), zap.String("priority", query.Priority))
}

func (d *Dispatcher) GetTicketByID(ctx context.Context, query service.GetTicketByIDQuery) (*dto.TicketDetail, error) {
	return observe(ctx, d, "GetTicketByID", isNil[dto.TicketDetail], func(ctx context.Context) (*dto.TicketDetail, error) {
		return d.next.GetTicketByID(ctx, query)
	}, zap.Int64("ticket_id", query.ID))
}

func (d *Dispatcher) CreateComment(ctx context.Context, cmd service.CreateCommentCommand) (int64, error) {
	return observe(ctx, d, "CreateComment", never[int64], func(ctx context.Context) (int64, error) {
		return d.next.CreateComment(ctx, cmd)
	}, zap.Int64("ticket_id", cmd.TicketID))
}

func (d *Dispatcher) ListCommentsByTicket(ctx context.Context, query service.ListCommentsByTicketQuery) ([]dto.CommentView, error) {
	return observe(ctx, d, "ListCommentsByTicket", never[[]dto.CommentView], func(ctx context.Context) ([]dto.CommentView, error) {
		return d.next.ListCommentsByTicket(ctx, query)
	}, zap.Int64("ticket_id", query.TicketID))
}

func (d *Dispatcher) DeleteComment(ctx context.Context, cmd service.DeleteCommentCommand) (bool, error) {
	return observe(ctx, d, "DeleteComment", isFalse, func(ctx context.Context) (bool, error) {
		return d.next.DeleteComment(ctx, cmd)
	}, zap.Int64("comment_id", cmd.ID))
}

func observe[T any](ctx context.Context, d *Dispatcher, op string, missing func(T) bool, fn func(context.Context) (T, error), fields ...zap.Field) (T, error) {
	start := time.Now()
	result, err := fn(ctx)
	elapsed := time.Since(start)

	outcome := classify(err)
	if err == nil && missing(result) {
		outcome = OutcomeNotFound
	}
	d.metrics.RecordOperation(op, outcome, elapsed)

	level := zapcore.DebugLevel
	if outcome == OutcomeError {
		level = zapcore.ErrorLevel
	}
	if ce := d.logger.Check(level, "operation handled"); ce != nil {
		fields = append(fields,
			zap.String("operation", op),
			zap.String("outcome", outcome),
			zap.Duration("latency", elapsed),
		)
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		ce.Write(fields...)
	}
	return result, err
}

func classify(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, domain.ErrReferential) {
		return OutcomeReferential
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == "VALIDATION_FAILED" {
		return OutcomeInvalid
	}
	return OutcomeError
}

func never[T any](T) bool { return false }

func isFalse(ok bool) bool { return !ok }

func isNil[T any](v *T) bool { return v == nil }
