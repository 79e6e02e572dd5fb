package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/events"
	"github.com/techaway/backend/internal/repository"
	apperrors "github.com/techaway/backend/pkg/util"
)

// TicketListInput captures listing parameters from the caller.
type TicketListInput struct {
	Statuses  []domain.TicketStatus
	Urgencies []domain.TicketUrgency
	OrderID   *string
	Limit     int
	Offset    int
}

// TicketUpdateInput carries the mutable ticket fields. Each field is guarded
// by its own policy action, so a technician can move status without being able
// to reassign.
type TicketUpdateInput struct {
	AssignedTo     *string
	Status         *domain.TicketStatus
	Urgency        *domain.TicketUrgency
	TechnicianNote *string
	CustomerNote   *string
}

// TicketService exposes the ticket workflow surface.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketServiceDependencies bundles requirements for the ticket service.
type TicketServiceDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService builds the service.
func NewTicketService(deps TicketServiceDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns tickets visible to the caller: admins see everything,
// technicians see their assignments, customers see their own.
func (s *TicketService) List(ctx context.Context, user *domain.User, input TicketListInput) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Statuses:  input.Statuses,
		Urgencies: input.Urgencies,
		OrderID:   input.OrderID,
		Limit:     input.Limit,
		Offset:    input.Offset,
	}
	switch {
	case user.HasRole(domain.RoleAdmin):
	case user.HasRole(domain.RoleTechnician):
		filter.AssignedTo = &user.ID
	default:
		filter.CustomerID = &user.ID
	}
	return s.tickets.ListWithFilter(ctx, filter)
}

// Get loads one ticket, enforcing ownership or assignment for non-admins.
func (s *TicketService) Get(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	if !auth.IsAllowed(user, auth.ActionTicketRead, ticketResource(ticket)) {
		return nil, apperrors.NewForbidden("not allowed to view this ticket")
	}
	return ticket, nil
}

// Update applies the permitted subset of fields. Every requested field must be
// allowed or the whole update is rejected.
func (s *TicketService) Update(ctx context.Context, user *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, user, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Cancelled {
		return nil, apperrors.NewConflict("cancelled tickets cannot be updated", map[string]any{"ticket_id": ticket.ID})
	}

	resource := ticketResource(ticket)
	oldStatus := ticket.Status

	if input.AssignedTo != nil {
		if !auth.IsAllowed(user, auth.ActionTicketAssign, resource) {
			return nil, apperrors.NewForbidden("not allowed to assign this ticket")
		}
		if err := s.verifyTechnician(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
		ticket.AssignedTo = input.AssignedTo
	}
	if input.Status != nil {
		if !auth.IsAllowed(user, auth.ActionTicketSetStatus, resource) {
			return nil, apperrors.NewForbidden("not allowed to change ticket status")
		}
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": *input.Status})
		}
		ticket.Status = *input.Status
	}
	if input.Urgency != nil {
		if !auth.IsAllowed(user, auth.ActionTicketSetUrgency, resource) {
			return nil, apperrors.NewForbidden("not allowed to change ticket urgency")
		}
		if !input.Urgency.Valid() {
			return nil, apperrors.NewValidationError("unknown ticket urgency", map[string]any{"urgency": *input.Urgency})
		}
		ticket.Urgency = *input.Urgency
	}
	if input.TechnicianNote != nil {
		if !auth.IsAllowed(user, auth.ActionTicketTechNote, resource) {
			return nil, apperrors.NewForbidden("not allowed to edit the technician note")
		}
		ticket.TechnicianNote = *input.TechnicianNote
	}
	if input.CustomerNote != nil {
		if !auth.IsAllowed(user, auth.ActionTicketCustNote, resource) {
			return nil, apperrors.NewForbidden("not allowed to edit the customer note")
		}
		ticket.CustomerNote = *input.CustomerNote
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if input.Status != nil && oldStatus != ticket.Status {
		s.publish(ctx, events.Event{
			Type: events.EventTicketStatusMoved,
			Payload: events.TicketStatusMovedPayload{
				TicketID:  ticket.ID,
				OldStatus: string(oldStatus),
				NewStatus: string(ticket.Status),
			},
		})
	}
	return ticket, nil
}

func (s *TicketService) verifyTechnician(ctx context.Context, userID string) error {
	assignee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("assignee not found", map[string]any{"user_id": userID})
		}
		return err
	}
	if !assignee.HasRole(domain.RoleTechnician) && !assignee.HasRole(domain.RoleAdmin) {
		return apperrors.NewValidationError("assignee is not a technician", map[string]any{"user_id": userID})
	}
	return nil
}

func ticketResource(ticket *domain.Ticket) *auth.Resource {
	return &auth.Resource{OwnerID: ticket.CustomerID, AssigneeID: ticket.AssignedTo}
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
