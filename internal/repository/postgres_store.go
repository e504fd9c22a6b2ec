package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const foreignKeyViolation = "23503"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB is the subset of *pgxpool.Pool used by the Postgres store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// snapshotTx reads a ticket and its comments as of one point in time.
var snapshotTx = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

type postgresStore struct {
	tickets  *ticketRepository
	comments *commentRepository
}

// NewPostgresStore returns a Store backed by Postgres.
func NewPostgresStore(db DB) Store {
	return &postgresStore{
		tickets:  &ticketRepository{db: db},
		comments: &commentRepository{db: db},
	}
}

func (s *postgresStore) Tickets() TicketRepository   { return s.tickets }
func (s *postgresStore) Comments() CommentRepository { return s.comments }

var ticketColumns = []string{"id", "title", "description", "status", "priority", "created_at"}

type ticketRepository struct {
	db DB
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query, args, err := psql.Insert("tickets").
		Columns("title", "description", "status", "priority", "created_at").
		Values(ticket.Title, ticket.Description, string(ticket.Status), string(ticket.Priority), ticket.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&ticket.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return getTicket(ctx, r.db, id)
}

func (r *ticketRepository) GetWithComments(ctx context.Context, id int64) (*domain.Ticket, []domain.Comment, error) {
	var (
		ticket   *domain.Ticket
		comments []domain.Comment
	)
	err := withTx(ctx, r.db, snapshotTx, func(tx pgx.Tx) error {
		var err error
		if ticket, err = getTicket(ctx, tx, id); err != nil {
			return err
		}
		comments, err = listComments(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

func getTicket(ctx context.Context, q querier, id int64) (*domain.Ticket, error) {
	query, args, err := psql.Select(ticketColumns...).From("tickets").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	ticket, err := scanTicket(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query, args, err := psql.Select(ticketColumns...).From("tickets").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Update(ctx context.Context, id int64, changes domain.TicketChanges) (bool, error) {
	if changes.Empty() {
		_, err := r.GetByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	set := map[string]any{}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Status != nil {
		set["status"] = string(*changes.Status)
	}
	if changes.Priority != nil {
		set["priority"] = string(*changes.Priority)
	}

	query, args, err := psql.Update("tickets").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, err
	}
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Delete runs the comment and ticket deletes in one transaction so a cancelled
// or failed request never leaves orphaned comments behind.
func (r *ticketRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleteComments, commentArgs, err := psql.Delete("comments").Where(sq.Eq{"ticket_id": id}).ToSql()
	if err != nil {
		return false, err
	}
	deleteTicket, ticketArgs, err := psql.Delete("tickets").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, err
	}

	var deleted bool
	err = withTx(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteComments, commentArgs...); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		cmd, err := tx.Exec(ctx, deleteTicket, ticketArgs...)
		if err != nil {
			return fmt.Errorf("delete ticket: %w", err)
		}
		deleted = cmd.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// withTx runs fn inside a transaction, committing on success and rolling back on error.
func withTx(ctx context.Context, db DB, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		status   string
		priority string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&status,
		&priority,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	ticket.Priority = domain.TicketPriority(priority)
	return &ticket, nil
}

var commentColumns = []string{"id", "ticket_id", "text", "author", "created_at"}

type commentRepository struct {
	db DB
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query, args, err := psql.Insert("comments").
		Columns("ticket_id", "text", "author", "created_at").
		Values(comment.TicketID, comment.Text, comment.Author, comment.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, query, args...).Scan(&comment.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return &domain.ReferentialError{TicketID: comment.TicketID}
	}
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	query, args, err := psql.Select(commentColumns...).From("comments").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	comment, err := scanComment(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	return listComments(ctx, r.db, ticketID)
}

func listComments(ctx context.Context, q querier, ticketID int64) ([]domain.Comment, error) {
	query, args, err := psql.Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"ticket_id": ticketID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id int64) (int64, bool, error) {
	query, args, err := psql.Delete("comments").Where(sq.Eq{"id": id}).Suffix("RETURNING ticket_id").ToSql()
	if err != nil {
		return 0, false, err
	}
	var ticketID int64
	err = r.db.QueryRow(ctx, query, args...).Scan(&ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return ticketID, true, nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.Text,
		&comment.Author,
		&comment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}
