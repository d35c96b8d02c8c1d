package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/events"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

func requireIdentity(actor domain.Identity) error {
	if !actor.Valid() {
		return apperrors.NewUnauthorized("authenticated identity required")
	}
	return nil
}

func requireStaff(actor domain.Identity) error {
	if err := requireIdentity(actor); err != nil {
		return err
	}
	if !actor.Role.IsStaff() {
		return apperrors.NewForbidden("technician or admin role required")
	}
	return nil
}

func requireAdmin(actor domain.Identity) error {
	if err := requireIdentity(actor); err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// idValue renders an id for a history old_value/new_value column.
func idValue(id int64) *string {
	s := strconv.FormatInt(id, 10)
	return &s
}

// assigneeValue renders a nullable assignee id; nil stays nil.
func assigneeValue(id *int64) *string {
	if id == nil {
		return nil
	}
	return idValue(*id)
}

func fieldName(name string) *string {
	return &name
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
