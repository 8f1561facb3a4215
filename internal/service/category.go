package service

import (
	"errors"
	"fmt"
	"strings"

	"finance-tracker/internal/models"
	"finance-tracker/internal/policy"

	"gorm.io/gorm"
)

// CategoryInUseError rejects deleting a category that operations still
// reference, carrying the number of blocking operations.
type CategoryInUseError struct {
	Operations int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category has %d referencing operations", e.Operations)
}

// CategoryService manages the global category set. Mutation is
// admin-only; categories have no owner.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List returns all categories ordered by name. Any authenticated user
// may list categories (they are needed to record an operation).
func (s *CategoryService) List() ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.Order("name ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(p policy.Principal, id uint) (*models.Category, error) {
	if !policy.CanManageCategories(p) {
		return nil, ErrForbidden
	}
	var cat models.Category
	if err := s.db.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &cat, nil
}

func validCategory(name, catType string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidField("name", "required")
	}
	if len(name) > 64 {
		return "", invalidField("name", "too long, max 64 characters")
	}
	if catType != models.TypeIncome && catType != models.TypeExpense {
		return "", invalidField("type", "must be income or expense")
	}
	return name, nil
}

// nameTaken checks system-wide name uniqueness, excluding excludeID
// (0 to exclude nothing).
func (s *CategoryService) nameTaken(name string, excludeID uint) (bool, error) {
	q := s.db.Model(&models.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return count > 0, nil
}

func (s *CategoryService) Create(p policy.Principal, name, catType string) (*models.Category, error) {
	if !policy.CanManageCategories(p) {
		return nil, ErrForbidden
	}
	name, err := validCategory(name, catType)
	if err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalidField("name", "a category with this name already exists")
	}

	cat := models.Category{Name: name, Type: catType}
	if err := s.db.Create(&cat).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &cat, nil
}

func (s *CategoryService) Update(p policy.Principal, id uint, name, catType string) (*models.Category, error) {
	if !policy.CanManageCategories(p) {
		return nil, ErrForbidden
	}
	name, err := validCategory(name, catType)
	if err != nil {
		return nil, err
	}

	var cat models.Category
	if err := s.db.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	taken, err := s.nameTaken(name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalidField("name", "a category with this name already exists")
	}

	cat.Name = name
	cat.Type = catType
	if err := s.db.Save(&cat).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &cat, nil
}

// Delete removes a category with no referencing operations. When
// operations still reference it, the delete is rejected with a
// CategoryInUseError carrying the blocking count.
func (s *CategoryService) Delete(p policy.Principal, id uint) error {
	if !policy.CanManageCategories(p) {
		return ErrForbidden
	}

	var cat models.Category
	if err := s.db.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Operation{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count category operations: %w", err)
	}
	if count > 0 {
		return &CategoryInUseError{Operations: count}
	}

	if err := s.db.Delete(&models.Category{}, id).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
