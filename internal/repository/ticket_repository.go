package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/misd-it/misdesk/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Tickets are never
// hard-deleted; the only mutations are the independent field writes the
// lifecycle engine issues.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetViewByID(ctx context.Context, id int64) (*domain.TicketView, error)
	ListViews(ctx context.Context) ([]domain.TicketView, error)
	ListViewsByEmail(ctx context.Context, email string) ([]domain.TicketView, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus, proof *string, resolvedAt *time.Time) error
	UpdatePriority(ctx context.Context, id int64, priority domain.TicketPriority) error
	UpdateAssignee(ctx context.Context, id int64, assigneeID *string) error
	UnassignByAssignee(ctx context.Context, profileID string) error
	CountByDepartment(ctx context.Context, departmentID int64) (int64, error)
	CountByFiler(ctx context.Context, filerID int64) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (first_name, last_name, email, category, description, department_id, filer_id, status, priority_level, assign_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING ticket_id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.FirstName,
		ticket.LastName,
		ticket.Email,
		ticket.Category,
		ticket.Description,
		ticket.DepartmentID,
		ticket.FilerID,
		ticket.Status,
		ticket.Priority,
		ticket.AssigneeID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT ticket_id, first_name, last_name, email, category, description, department_id, filer_id,
               status, priority_level, assign_to, proof, resolved_at, created_at
        FROM tickets WHERE ticket_id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.FirstName,
		&ticket.LastName,
		&ticket.Email,
		&ticket.Category,
		&ticket.Description,
		&ticket.DepartmentID,
		&ticket.FilerID,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssigneeID,
		&ticket.Proof,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

const viewSelect = `
        SELECT t.ticket_id, t.first_name, t.last_name, t.email, t.category, t.description,
               t.department_id, t.filer_id, t.status, t.priority_level, t.assign_to,
               t.proof, t.resolved_at, t.created_at,
               d.name, f.name, COALESCE(p.display_name, ''), COALESCE(p.email, '')
        FROM tickets t
        JOIN department d ON d.department_id = t.department_id
        JOIN filer f ON f.filer_id = t.filer_id
        LEFT JOIN profiles p ON p.id = t.assign_to`

func (r *ticketRepository) GetViewByID(ctx context.Context, id int64) (*domain.TicketView, error) {
	rows, err := r.pool.Query(ctx, viewSelect+" WHERE t.ticket_id=$1", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views, err := scanTicketViews(rows)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &views[0], nil
}

func (r *ticketRepository) ListViews(ctx context.Context) ([]domain.TicketView, error) {
	rows, err := r.pool.Query(ctx, viewSelect+" ORDER BY t.ticket_id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketViews(rows)
}

func (r *ticketRepository) ListViewsByEmail(ctx context.Context, email string) ([]domain.TicketView, error) {
	rows, err := r.pool.Query(ctx, viewSelect+" WHERE t.email ILIKE $1 ORDER BY t.ticket_id ASC", "%"+email+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketViews(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus, proof *string, resolvedAt *time.Time) error {
	const query = `UPDATE tickets SET status=$1, proof=$2, resolved_at=$3 WHERE ticket_id=$4`
	cmd, err := r.pool.Exec(ctx, query, status, proof, resolvedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdatePriority(ctx context.Context, id int64, priority domain.TicketPriority) error {
	const query = `UPDATE tickets SET priority_level=$1 WHERE ticket_id=$2`
	cmd, err := r.pool.Exec(ctx, query, priority, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, id int64, assigneeID *string) error {
	const query = `UPDATE tickets SET assign_to=$1 WHERE ticket_id=$2`
	cmd, err := r.pool.Exec(ctx, query, assigneeID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UnassignByAssignee(ctx context.Context, profileID string) error {
	const query = `UPDATE tickets SET assign_to=NULL WHERE assign_to=$1`
	_, err := r.pool.Exec(ctx, query, profileID)
	return err
}

func (r *ticketRepository) CountByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE department_id=$1`, departmentID).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountByFiler(ctx context.Context, filerID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE filer_id=$1`, filerID).Scan(&count)
	return count, err
}

func scanTicketViews(rows pgx.Rows) ([]domain.TicketView, error) {
	var result []domain.TicketView
	for rows.Next() {
		var view domain.TicketView
		if err := rows.Scan(
			&view.ID,
			&view.FirstName,
			&view.LastName,
			&view.Email,
			&view.Category,
			&view.Description,
			&view.DepartmentID,
			&view.FilerID,
			&view.Status,
			&view.Priority,
			&view.AssigneeID,
			&view.Proof,
			&view.ResolvedAt,
			&view.CreatedAt,
			&view.DepartmentName,
			&view.FilerName,
			&view.AssigneeName,
			&view.AssigneeEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}
