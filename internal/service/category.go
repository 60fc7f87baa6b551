package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/repository"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// List returns active categories ordered by sort key, then name.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Tree nests active categories under their parents. A category whose parent
// is inactive or missing is dropped, like its subtree.
func (s *CategoryService) Tree(ctx context.Context) ([]*model.CategoryNode, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(categories), nil
}

func BuildCategoryTree(categories []model.Category) []*model.CategoryNode {
	nodes := make(map[uuid.UUID]*model.CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &model.CategoryNode{Category: c}
	}

	roots := make([]*model.CategoryNode, 0)
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*model.Category, error) {
	category := &model.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        Slugify(req.Name),
		Description: req.Description,
		Image:       req.Image,
		IsActive:    true,
		SortOrder:   req.Order,
	}
	if category.Slug == "" {
		return nil, invalidInput("Category name must contain letters or digits")
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.ParentID != nil {
		if _, err := s.Get(ctx, *req.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*model.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
		category.Slug = Slugify(*req.Name)
		if category.Slug == "" {
			return nil, invalidInput("Category name must contain letters or digits")
		}
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Image != nil {
		category.Image = *req.Image
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.Order != nil {
		category.SortOrder = *req.Order
	}
	if req.ParentID != nil {
		if err := s.checkParent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCategoryNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// checkParent walks up from the proposed parent and rejects the change if
// the walk reaches the category itself.
func (s *CategoryService) checkParent(ctx context.Context, id, parentID uuid.UUID) error {
	seen := map[uuid.UUID]bool{}
	for cur := &parentID; cur != nil; {
		if *cur == id {
			return ErrCategoryCycle
		}
		if seen[*cur] {
			return ErrCategoryCycle
		}
		seen[*cur] = true

		parent, err := s.categoryRepo.GetByID(ctx, *cur)
		if err != nil {
			return fmt.Errorf("get category: %w", err)
		}
		if parent == nil {
			if *cur == parentID {
				return newError(ErrNotFound, "Parent category not found")
			}
			return nil
		}
		cur = parent.ParentID
	}
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if category.ProductCount > 0 {
		return ErrCategoryHasProducts
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// only rows with no products are deleted
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Slugify lower-cases name and joins its alphanumeric runs with hyphens.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
