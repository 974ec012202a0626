package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adaptgrant/internal/store"
	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"
)

var errTicketClosed = errors.New("closed tickets cannot receive replies")

type ticketTransitionError struct {
	From types.TicketStatus
	To   types.TicketStatus
}

func (e *ticketTransitionError) Error() string {
	return fmt.Sprintf("ticket cannot move from %s to %s", e.From, e.To)
}

type ticketRequest struct {
	Subject  string               `json:"subject" validate:"notblank,max=200"`
	Message  string               `json:"message" validate:"notblank,max=5000"`
	Category types.TicketCategory `json:"category"`
	Priority types.TicketPriority `json:"priority"`
}

func (s *Service) handlePostTicket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body ticketRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid ticket payload")
		return
	}

	if body.Category == "" {
		body.Category = types.TicketCategoryOther
	}
	if body.Priority == "" {
		body.Priority = types.TicketPriorityMedium
	}
	if !body.Category.Valid() {
		s.failErr(w, r, errBadRequest("unknown category %q", body.Category), "invalid ticket category")
		return
	}
	if !body.Priority.Valid() {
		s.failErr(w, r, errBadRequest("unknown priority %q", body.Priority), "invalid ticket priority")
		return
	}

	identity := s.identity(r)
	ticket := &types.SupportTicket{
		UserID:   identity.UserID,
		Email:    identity.Email,
		Subject:  strings.TrimSpace(body.Subject),
		Message:  strings.TrimSpace(body.Message),
		Category: body.Category,
		Priority: body.Priority,
	}

	if err := s.store.Support.CreateTicket(ctx, ticket); err != nil {
		s.failErr(w, r, err, "failed to create ticket")
		return
	}

	s.ok(w, http.StatusCreated, ticket)
}

func (s *Service) handleGetMyTickets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tickets, err := s.store.Support.Tickets(ctx, store.TicketFilter{UserID: s.identity(r).UserID})
	if err != nil {
		s.failErr(w, r, err, "failed to list tickets")
		return
	}

	s.ok(w, http.StatusOK, tickets)
}

// ownedTicket hides other users' tickets behind not found.
func (s *Service) ownedTicket(ctx context.Context, r *http.Request) (*types.SupportTicket, error) {
	ticket, err := s.store.Support.Ticket(ctx, r.PathValue("ticketID"))
	if err != nil {
		return nil, err
	}
	if ticket.UserID != s.identity(r).UserID {
		return nil, types.ErrTicketNotFound
	}
	return ticket, nil
}

func (s *Service) handleGetMyTicket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ticket, err := s.ownedTicket(ctx, r)
	if err != nil {
		s.failErr(w, r, err, "failed to load ticket")
		return
	}

	s.ok(w, http.StatusOK, ticket)
}

type responseRequest struct {
	Message string `json:"message" validate:"notblank,max=5000"`
}

func (s *Service) handlePostMyTicketResponse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body responseRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid response payload")
		return
	}

	ticket, err := s.ownedTicket(ctx, r)
	if err != nil {
		s.failErr(w, r, err, "failed to load ticket")
		return
	}
	if ticket.Status == types.TicketStatusClosed {
		s.failErr(w, r, errTicketClosed, "reply to closed ticket")
		return
	}

	response := &types.SupportResponse{
		TicketID:    ticket.ID,
		ResponderID: s.identity(r).UserID,
		Message:     strings.TrimSpace(body.Message),
	}
	if err := s.store.Support.CreateResponse(ctx, response); err != nil {
		s.failErr(w, r, err, "failed to add ticket response")
		return
	}

	s.ok(w, http.StatusCreated, response)
}

func (s *Service) handleAdminGetTickets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := store.TicketFilter{
		Status:   types.TicketStatus(r.URL.Query().Get("status")),
		Priority: types.TicketPriority(r.URL.Query().Get("priority")),
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		s.failErr(w, r, errBadRequest("unknown priority %q", filter.Priority), "invalid priority filter")
		return
	}

	tickets, err := s.store.Support.Tickets(ctx, filter)
	if err != nil {
		s.failErr(w, r, err, "failed to list tickets")
		return
	}

	s.ok(w, http.StatusOK, tickets)
}

func (s *Service) handleAdminPostTicketResponse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body responseRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid response payload")
		return
	}

	ticket, err := s.store.Support.Ticket(ctx, r.PathValue("ticketID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load ticket")
		return
	}
	if ticket.Status == types.TicketStatusClosed {
		s.failErr(w, r, errTicketClosed, "reply to closed ticket")
		return
	}

	response := &types.SupportResponse{
		TicketID:    ticket.ID,
		ResponderID: s.identity(r).UserID,
		Message:     strings.TrimSpace(body.Message),
		IsAdmin:     true,
	}
	if err := s.store.Support.CreateResponse(ctx, response); err != nil {
		s.failErr(w, r, err, "failed to add ticket response")
		return
	}

	if err := s.notifier.TicketResponded(ctx, ticket, response); err != nil {
		s.logger.WithError(err).WithField("ticket_id", ticket.ID).Warn("failed to email ticket response")
	}

	s.ok(w, http.StatusCreated, response)
}

type ticketStatusRequest struct {
	Status types.TicketStatus `json:"status" validate:"required"`
}

// applyTicketStatus moves ticket to next, stamping resolved_at on
// resolution and clearing it on reopen.
func applyTicketStatus(ticket *types.SupportTicket, next types.TicketStatus, now func() time.Time) error {
	if !ticket.Status.CanTransitionTo(next) {
		return &ticketTransitionError{From: ticket.Status, To: next}
	}

	ticket.Status = next
	switch next {
	case types.TicketStatusResolved:
		ticket.ResolvedAt = utils.TimePtr(now())
	case types.TicketStatusOpen, types.TicketStatusInProgress:
		ticket.ResolvedAt = nil
	}
	return nil
}

func (s *Service) handleAdminPostTicketStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body ticketStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid ticket status payload")
		return
	}

	ticket, err := s.store.Support.Ticket(ctx, r.PathValue("ticketID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load ticket")
		return
	}

	if err := applyTicketStatus(ticket, body.Status, s.now); err != nil {
		s.failErr(w, r, err, "invalid ticket status change")
		return
	}

	if err := s.store.Support.UpdateTicket(ctx, ticket); err != nil {
		s.failErr(w, r, err, "failed to update ticket")
		return
	}

	s.ok(w, http.StatusOK, ticket)
}

type ticketAssignRequest struct {
	AssignedTo *string `json:"assignedTo" validate:"omitempty,max=200"`
}

func (s *Service) handleAdminPostTicketAssign(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body ticketAssignRequest
	if err := decodeJSON(r, &body); err != nil {
		s.failErr(w, r, err, "invalid ticket assignment payload")
		return
	}

	ticket, err := s.store.Support.Ticket(ctx, r.PathValue("ticketID"))
	if err != nil {
		s.failErr(w, r, err, "failed to load ticket")
		return
	}

	ticket.AssignedTo = utils.TrimmedStringPtr(body.AssignedTo)
	if ticket.AssignedTo != nil && ticket.Status == types.TicketStatusOpen {
		ticket.Status = types.TicketStatusInProgress
	}

	if err := s.store.Support.UpdateTicket(ctx, ticket); err != nil {
		s.failErr(w, r, err, "failed to assign ticket")
		return
	}

	s.ok(w, http.StatusOK, ticket)
}
