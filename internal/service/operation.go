package service

import (
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/aggregate"
	"finance-tracker/internal/models"
	"finance-tracker/internal/policy"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OperationService validates and persists operation mutations, then
// triggers summary recomputation for every affected bucket. Ledger
// write and summary upserts are sequential, non-transactional steps:
// a recompute failure after the ledger committed surfaces as
// ErrSummariesStale, never unwinding the write.
type OperationService struct {
	db     *gorm.DB
	engine *aggregate.Engine
}

func NewOperationService(db *gorm.DB, engine *aggregate.Engine) *OperationService {
	return &OperationService{db: db, engine: engine}
}

// CreateOperationInput carries a new ledger entry. UserID is optional:
// admins may record on another user's behalf, everyone else is pinned
// to their own account. Zero Date means "now".
type CreateOperationInput struct {
	UserID      uint
	Amount      decimal.Decimal
	CategoryID  uint
	Type        string
	Description string
	Date        time.Time
}

// UpdateOperationInput is a partial patch: only non-nil fields change.
type UpdateOperationInput struct {
	Amount      *decimal.Decimal
	CategoryID  *uint
	Type        *string
	Description *string
	Date        *time.Time
}

func validAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return invalidField("amount", "must be positive")
	}
	return nil
}

func validType(t string) error {
	if t != models.TypeIncome && t != models.TypeExpense {
		return invalidField("type", "must be income or expense")
	}
	return nil
}

func (s *OperationService) categoryExists(id uint) error {
	if id == 0 {
		return invalidField("category_id", "required")
	}
	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return invalidField("category_id", "unknown category")
	}
	return nil
}

// Create validates and persists a new operation, then recomputes the
// day/week/month summaries containing its date.
func (s *OperationService) Create(p policy.Principal, in CreateOperationInput) (*models.Operation, error) {
	ownerID := in.UserID
	if ownerID == 0 {
		ownerID = p.ID
	}
	if !policy.CanAccess(p, ownerID) {
		return nil, ErrForbidden
	}

	if err := validAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := validType(in.Type); err != nil {
		return nil, err
	}
	if err := s.categoryExists(in.CategoryID); err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	op := models.Operation{
		UserID:      ownerID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        date,
	}
	if err := s.db.Create(&op).Error; err != nil {
		return nil, fmt.Errorf("create operation: %w", err)
	}

	if err := s.engine.Recompute(op.UserID, op.Date); err != nil {
		return &op, staleSummaries(err)
	}
	return &op, nil
}

// find loads an operation visible to the principal. Non-admins can only
// see their own rows; a cross-user id behaves exactly like a missing one.
func (s *OperationService) find(p policy.Principal, id uint) (*models.Operation, error) {
	q := s.db.Where("id = ?", id)
	if !p.IsAdmin() {
		q = q.Where("user_id = ?", p.ID)
	}

	var op models.Operation
	if err := q.First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find operation: %w", err)
	}
	return &op, nil
}

// Update applies a partial patch to an operation owned by the principal
// (or anyone's, for admins). Summaries are recomputed for the original
// date first, then for the new date when the patch moved the operation
// to a different one.
func (s *OperationService) Update(p policy.Principal, id uint, in UpdateOperationInput) (*models.Operation, error) {
	op, err := s.find(p, id)
	if err != nil {
		return nil, err
	}
	originalDate := op.Date

	if in.Amount != nil {
		if err := validAmount(*in.Amount); err != nil {
			return nil, err
		}
		op.Amount = *in.Amount
	}
	if in.Type != nil {
		if err := validType(*in.Type); err != nil {
			return nil, err
		}
		op.Type = *in.Type
	}
	if in.CategoryID != nil {
		if err := s.categoryExists(*in.CategoryID); err != nil {
			return nil, err
		}
		op.CategoryID = *in.CategoryID
	}
	if in.Description != nil {
		op.Description = *in.Description
	}
	if in.Date != nil {
		op.Date = *in.Date
	}

	if err := s.db.Save(op).Error; err != nil {
		return nil, fmt.Errorf("update operation: %w", err)
	}

	// Recompute the bucket the operation came from, and the one it
	// moved into when the date changed.
	aggErr := s.engine.Recompute(op.UserID, originalDate)
	if !op.Date.Equal(originalDate) {
		if err := s.engine.Recompute(op.UserID, op.Date); err != nil {
			aggErr = errors.Join(aggErr, err)
		}
	}
	if aggErr != nil {
		return op, staleSummaries(aggErr)
	}
	return op, nil
}

// Delete removes an operation and recomputes the summaries for its
// date. Emptied buckets keep their rows with zeroed totals.
func (s *OperationService) Delete(p policy.Principal, id uint) error {
	op, err := s.find(p, id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Operation{}, op.ID).Error; err != nil {
		return fmt.Errorf("delete operation: %w", err)
	}

	if err := s.engine.Recompute(op.UserID, op.Date); err != nil {
		return staleSummaries(err)
	}
	return nil
}
