package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/supp-tracker/internal/errs"
	"github.com/and161185/supp-tracker/internal/model"
	"github.com/and161185/supp-tracker/internal/repository"
)

// DefaultLibrary is seeded for users who never saved a library.
func DefaultLibrary() []model.LibraryItem {
	return []model.LibraryItem{
		{ID: "1", Name: "Vitamin D3", DefaultDosage: "2000 IU", Category: "Vitamins"},
		{ID: "2", Name: "Vitamin B12", DefaultDosage: "1000 mcg", Category: "Vitamins"},
		{ID: "3", Name: "Omega-3 Fish Oil", DefaultDosage: "1000 mg", Category: "Fatty Acids"},
		{ID: "4", Name: "Magnesium", DefaultDosage: "400 mg", Category: "Minerals"},
		{ID: "5", Name: "Vitamin C", DefaultDosage: "1000 mg", Category: "Vitamins"},
		{ID: "6", Name: "Zinc", DefaultDosage: "15 mg", Category: "Minerals"},
		{ID: "7", Name: "Probiotics", DefaultDosage: "10 billion CFU", Category: "Digestive"},
		{ID: "8", Name: "Multivitamin", DefaultDosage: "1 tablet", Category: "Vitamins"},
		{ID: "9", Name: "Calcium", DefaultDosage: "500 mg", Category: "Minerals"},
		{ID: "10", Name: "Iron", DefaultDosage: "18 mg", Category: "Minerals"},
		{ID: "11", Name: "Vitamin E", DefaultDosage: "400 IU", Category: "Vitamins"},
		{ID: "12", Name: "Biotin", DefaultDosage: "5000 mcg", Category: "Vitamins"},
		{ID: "13", Name: "Ashwagandha", DefaultDosage: "300 mg", Category: "Herbs"},
		{ID: "14", Name: "Turmeric", DefaultDosage: "500 mg", Category: "Herbs"},
		{ID: "15", Name: "CoQ10", DefaultDosage: "100 mg", Category: "Antioxidants"},
	}
}

// LibraryService manages the supplement catalog.
type LibraryService interface {
	// List returns the library, seeding the default one on first access.
	List(ctx context.Context, userID uuid.UUID) ([]model.LibraryItem, error)
	// Search filters by case-insensitive substring of name or category.
	Search(ctx context.Context, userID uuid.UUID, term string) ([]model.LibraryItem, error)
	// Add appends an item with a fresh id.
	Add(ctx context.Context, userID uuid.UUID, item model.LibraryItem) (model.LibraryItem, error)
	// Update replaces the item with the same id.
	Update(ctx context.Context, userID uuid.UUID, item model.LibraryItem) error
	// Delete removes an item.
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

type LibraryServiceImpl struct {
	repo repository.LibraryRepository
}

// NewLibraryService constructs LibraryService.
func NewLibraryService(repo repository.LibraryRepository) *LibraryServiceImpl {
	return &LibraryServiceImpl{repo: repo}
}

// List returns the library, seeding DefaultLibrary when none exists.
func (s *LibraryServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]model.LibraryItem, error) {
	items, err := s.repo.Get(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) {
		items = DefaultLibrary()
		if err := s.repo.Save(ctx, userID, items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return items, err
}

// Search filters the library.
func (s *LibraryServiceImpl) Search(ctx context.Context, userID uuid.UUID, term string) ([]model.LibraryItem, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items, nil
	}
	out := []model.LibraryItem{}
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), term) || strings.Contains(strings.ToLower(it.Category), term) {
			out = append(out, it)
		}
	}
	return out, nil
}

func validateItem(it model.LibraryItem) error {
	if strings.TrimSpace(it.Name) == "" || strings.TrimSpace(it.DefaultDosage) == "" {
		return fmt.Errorf("%w: name and default dosage are required", errs.ErrValidation)
	}
	return nil
}

// Add appends item with a new id.
func (s *LibraryServiceImpl) Add(ctx context.Context, userID uuid.UUID, item model.LibraryItem) (model.LibraryItem, error) {
	if err := validateItem(item); err != nil {
		return model.LibraryItem{}, err
	}
	items, err := s.List(ctx, userID)
	if err != nil {
		return model.LibraryItem{}, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.LibraryItem{}, err
	}
	item.ID = id.String()
	item.Name = strings.TrimSpace(item.Name)
	item.DefaultDosage = strings.TrimSpace(item.DefaultDosage)
	item.Category = strings.TrimSpace(item.Category)
	if err := s.repo.Save(ctx, userID, append(items, item)); err != nil {
		return model.LibraryItem{}, err
	}
	return item, nil
}

// Update replaces the item with item.ID.
func (s *LibraryServiceImpl) Update(ctx context.Context, userID uuid.UUID, item model.LibraryItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	items, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return s.repo.Save(ctx, userID, items)
		}
	}
	return fmt.Errorf("library item %q: %w", item.ID, errs.ErrNotFound)
}

// Delete removes the item with id.
func (s *LibraryServiceImpl) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	items, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	kept := make([]model.LibraryItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return fmt.Errorf("library item %q: %w", id, errs.ErrNotFound)
	}
	return s.repo.Save(ctx, userID, kept)
}
