package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByCustomerEmail(ctx context.Context, email string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, customer_email, problem_description, status, solution, creation_date,
               price, priority, notify_customer, pending_date, repair_date, ready_date`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_email, problem_description, status, solution, creation_date,
            price, priority, notify_customer, pending_date, repair_date, ready_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		ticket.CustomerEmail,
		ticket.ProblemDescription,
		ticket.Status,
		ticket.Solution,
		ticket.CreationDate,
		ticket.Price,
		ticket.Priority,
		ticket.NotifyCustomer,
		ticket.PendingDate,
		ticket.RepairDate,
		ticket.ReadyDate,
	).Scan(&ticket.ID)
	return translate(err)
}

// Update never touches creation_date; it is written once by Create.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET customer_email=$1, problem_description=$2, status=$3, solution=$4,
            price=$5, priority=$6, notify_customer=$7, pending_date=$8, repair_date=$9, ready_date=$10,
            updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.CustomerEmail,
		ticket.ProblemDescription,
		ticket.Status,
		ticket.Solution,
		ticket.Price,
		ticket.Priority,
		ticket.NotifyCustomer,
		ticket.PendingDate,
		ticket.RepairDate,
		ticket.ReadyDate,
		ticket.ID,
	)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	return translate(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE LOWER(customer_email)=LOWER($1) ORDER BY id`
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerEmail,
		&ticket.ProblemDescription,
		&ticket.Status,
		&ticket.Solution,
		&ticket.CreationDate,
		&ticket.Price,
		&ticket.Priority,
		&ticket.NotifyCustomer,
		&ticket.PendingDate,
		&ticket.RepairDate,
		&ticket.ReadyDate,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
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
