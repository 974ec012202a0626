package store

import (
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var (
	ticketTableName   = table("support_tickets")
	responseTableName = table("support_responses")
)

var (
	ticketColumns   = utils.StructTagValues(types.SupportTicket{})
	responseColumns = utils.StructTagValues(types.SupportResponse{})
)

type SupportRepository struct {
	db DBTX
}

func NewSupportRepository(db DBTX) *SupportRepository {
	return &SupportRepository{db: db}
}

// TicketFilter narrows ticket listings. Zero values match everything.
type TicketFilter struct {
	UserID   string
	Status   types.TicketStatus
	Priority types.TicketPriority
}

func (r *SupportRepository) CreateTicket(ctx context.Context, ticket *types.SupportTicket) error {
	now := time.Now()
	if ticket.ID == "" {
		ticket.ID = utils.NanoID()
	}
	if ticket.Number == "" {
		ticket.Number = utils.TicketNumber()
	}
	ticket.Status = types.TicketStatusOpen
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	query, args, err := psql().
		Insert(ticketTableName).
		SetMap(utils.StructToMap(ticket)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate ticket insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert ticket")
}

// Ticket loads a ticket with its responses.
func (r *SupportRepository) Ticket(ctx context.Context, id string) (*types.SupportTicket, error) {
	query, args, err := psql().
		Select(ticketColumns...).
		From(ticketTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket query: %w", err)
	}

	var ticket = new(types.SupportTicket)
	err = pgxscan.Get(ctx, r.db, ticket, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to fetch ticket: %w", err)
	}

	ticket.Responses, err = r.Responses(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

// Tickets lists tickets newest first, without responses.
func (r *SupportRepository) Tickets(ctx context.Context, filter TicketFilter) ([]*types.SupportTicket, error) {
	builder := psql().
		Select(ticketColumns...).
		From(ticketTableName).
		OrderBy("created_at DESC")

	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Priority != "" {
		builder = builder.Where(sq.Eq{"priority": filter.Priority})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tickets query: %w", err)
	}

	var tickets = make([]*types.SupportTicket, 0)
	err = pgxscan.Select(ctx, r.db, &tickets, query, args...)
	return tickets, utils.ErrorWrapOrNil(err, "failed to fetch tickets")
}

// UpdateTicket persists status, assignee and resolution time.
func (r *SupportRepository) UpdateTicket(ctx context.Context, ticket *types.SupportTicket) error {
	ticket.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(ticketTableName).
		Set("status", ticket.Status).
		Set("assigned_to", ticket.AssignedTo).
		Set("resolved_at", ticket.ResolvedAt).
		Set("updated_at", ticket.UpdatedAt).
		Where(sq.Eq{"id": ticket.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate ticket update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrTicketNotFound
	}

	return nil
}

func (r *SupportRepository) CreateResponse(ctx context.Context, response *types.SupportResponse) error {
	if response.ID == "" {
		response.ID = utils.NanoID()
	}
	response.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(responseTableName).
		SetMap(utils.StructToMap(response)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate response insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert response")
}

func (r *SupportRepository) Responses(ctx context.Context, ticketID string) ([]*types.SupportResponse, error) {
	query, args, err := psql().
		Select(responseColumns...).
		From(responseTableName).
		Where(sq.Eq{"ticket_id": ticketID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate responses query: %w", err)
	}

	var responses = make([]*types.SupportResponse, 0)
	err = pgxscan.Select(ctx, r.db, &responses, query, args...)
	return responses, utils.ErrorWrapOrNil(err, "failed to fetch responses")
}
