package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/salesops-contracts/internal/model"
	"github.com/nurpe/salesops-contracts/internal/repository"
)

type ClauseService struct {
	clauses *repository.ClauseRepository
	now     func() time.Time
}

type CreateClauseInput struct {
	ServiceID      uuid.UUID
	ClauseText     string
	DurationMonths int
	SortOrder      int
	Principal      model.Principal
}

// UpdateClauseInput carries a partial update. Nil fields are left as they are.
type UpdateClauseInput struct {
	ClauseID       uuid.UUID
	ServiceID      *uuid.UUID
	ClauseText     *string
	DurationMonths *int
	SortOrder      *int
	Principal      model.Principal
}

func NewClauseService(clauses *repository.ClauseRepository) *ClauseService {
	return &ClauseService{
		clauses: clauses,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *ClauseService) CreateClause(ctx context.Context, input CreateClauseInput) (*model.Clause, error) {
	if !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	text := strings.TrimSpace(input.ClauseText)
	if err := validateClause(&input.ServiceID, &text, &input.DurationMonths, &input.SortOrder); err != nil {
		return nil, err
	}
	if err := s.requireService(ctx, input.ServiceID); err != nil {
		return nil, err
	}

	now := s.now()
	clause := &model.Clause{
		ID:             uuid.New(),
		ServiceID:      input.ServiceID,
		ClauseText:     text,
		DurationMonths: input.DurationMonths,
		SortOrder:      input.SortOrder,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.clauses.CreateClause(ctx, clause); err != nil {
		return nil, err
	}
	return clause, nil
}

func (s *ClauseService) ListClauses(ctx context.Context, principal model.Principal) ([]model.Clause, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.clauses.ListClauses(ctx)
}

// UpdateClause edits a clause with the same rules as CreateClause. Contracts
// created earlier keep their clause snapshot.
func (s *ClauseService) UpdateClause(ctx context.Context, input UpdateClauseInput) (*model.Clause, error) {
	if !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	var text *string
	if input.ClauseText != nil {
		trimmed := strings.TrimSpace(*input.ClauseText)
		text = &trimmed
	}
	if err := validateClause(input.ServiceID, text, input.DurationMonths, input.SortOrder); err != nil {
		return nil, err
	}

	current, err := s.clauses.GetClause(ctx, input.ClauseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClauseNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.ServiceID != nil && *input.ServiceID != current.ServiceID {
		if err := s.requireService(ctx, *input.ServiceID); err != nil {
			return nil, err
		}
		updates["service_id"] = *input.ServiceID
		current.ServiceID = *input.ServiceID
	}
	if text != nil && *text != current.ClauseText {
		updates["clause_text"] = *text
		current.ClauseText = *text
	}
	if input.DurationMonths != nil && *input.DurationMonths != current.DurationMonths {
		updates["duration_months"] = *input.DurationMonths
		current.DurationMonths = *input.DurationMonths
	}
	if input.SortOrder != nil && *input.SortOrder != current.SortOrder {
		updates["sort_order"] = *input.SortOrder
		current.SortOrder = *input.SortOrder
	}
	if len(updates) == 0 {
		return current, nil
	}

	now := s.now()
	updates["updated_at"] = now
	if err := s.clauses.UpdateClause(ctx, current.ID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClauseNotFound
		}
		return nil, err
	}
	current.UpdatedAt = now
	return current, nil
}

func (s *ClauseService) DeleteClause(ctx context.Context, id uuid.UUID, principal model.Principal) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.clauses.DeleteClause(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClauseNotFound
		}
		return err
	}
	return nil
}

func (s *ClauseService) requireService(ctx context.Context, id uuid.UUID) error {
	exists, err := s.clauses.ServiceExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrServiceNotFound
	}
	return nil
}

// validateClause checks the fields that are set. text must already be trimmed.
func validateClause(serviceID *uuid.UUID, text *string, durationMonths, sortOrder *int) error {
	switch {
	case serviceID != nil && *serviceID == uuid.Nil:
		return fmt.Errorf("%w: service_id is required", ErrInvalidInput)
	case text != nil && len([]rune(*text)) < 10:
		return fmt.Errorf("%w: clause_text must be at least 10 characters", ErrInvalidInput)
	case durationMonths != nil && *durationMonths <= 0:
		return fmt.Errorf("%w: duration_months must be positive", ErrInvalidInput)
	case sortOrder != nil && *sortOrder < 1:
		return fmt.Errorf("%w: sort_order must be at least 1", ErrInvalidInput)
	}
	return nil
}
