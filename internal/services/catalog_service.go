package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"mazadly/internal/caching"
	"mazadly/internal/models"
	"mazadly/internal/repositories"

	"github.com/google/uuid"
)

// CatalogService owns the category hierarchy: building tree snapshots and
// resolving which listings fall inside a selected category's scope.
type CatalogService interface {
	Tree(ctx context.Context) (*models.CategoryTree, error)
	RefreshTree(ctx context.Context) (*models.CategoryTree, error)
	Descendants(tree *models.CategoryTree, targetID uuid.UUID) map[uuid.UUID]struct{}
	InScope(listing *models.Listing, selectedID uuid.UUID, tree *models.CategoryTree) bool
}

type catalogService struct {
	categoryRepo repositories.CategoryRepository
	cacheService caching.CacheService
	generation   atomic.Uint64
}

func NewCatalogService(categoryRepo repositories.CategoryRepository, cacheService caching.CacheService) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		cacheService: cacheService,
	}
}

// Tree returns the current snapshot, preferring the cached copy. A snapshot is
// immutable; filtering always resolves against one snapshot's generation.
func (s *catalogService) Tree(ctx context.Context) (*models.CategoryTree, error) {
	if cached, err := s.cacheService.GetCategoryTree(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors shouldn't fail the operation
		fmt.Printf("Cache error for category tree: %v\n", err)
	}

	return s.RefreshTree(ctx)
}

// RefreshTree rebuilds the snapshot from the database under a new generation
// and caches it.
func (s *catalogService) RefreshTree(ctx context.Context) (*models.CategoryTree, error) {
	flat, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	tree := &models.CategoryTree{
		Roots:      buildHierarchy(flat),
		Generation: s.generation.Add(1),
		FetchedAt:  time.Now(),
	}

	if cacheErr := s.cacheService.SetCategoryTree(ctx, tree, 10*time.Minute); cacheErr != nil {
		fmt.Printf("Failed to cache category tree: %v\n", cacheErr)
	}

	return tree, nil
}

// buildHierarchy links flat rows into parent/children form. Rows pointing at a
// missing parent are promoted to roots rather than dropped.
func buildHierarchy(flat []*models.Category) []*models.Category {
	byID := make(map[uuid.UUID]*models.Category, len(flat))
	for _, category := range flat {
		category.Children = nil
		byID[category.ID] = category
	}

	var roots []*models.Category
	for _, category := range flat {
		if category.ParentID == nil {
			roots = append(roots, category)
			continue
		}
		parent, ok := byID[*category.ParentID]
		if !ok || parent == category {
			roots = append(roots, category)
			continue
		}
		parent.Children = append(parent.Children, category)
	}
	return roots
}

// Descendants collects every category id strictly below targetID. The walk is
// an explicit stack traversal with a visited set, so a malformed tree with a
// cycle terminates instead of recursing forever. An unknown target yields an
// empty set; the caller still checks direct id equality separately.
func (s *catalogService) Descendants(tree *models.CategoryTree, targetID uuid.UUID) map[uuid.UUID]struct{} {
	descendants := make(map[uuid.UUID]struct{})
	if tree == nil {
		return descendants
	}

	target := findCategory(tree.Roots, targetID)
	if target == nil {
		return descendants
	}

	visited := map[uuid.UUID]struct{}{target.ID: {}}
	stack := append([]*models.Category(nil), target.Children...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[node.ID]; seen {
			continue
		}
		visited[node.ID] = struct{}{}
		descendants[node.ID] = struct{}{}
		stack = append(stack, node.Children...)
	}
	return descendants
}

// findCategory locates a node by id, iteratively and cycle-safe.
func findCategory(roots []*models.Category, id uuid.UUID) *models.Category {
	visited := make(map[uuid.UUID]struct{})
	stack := append([]*models.Category(nil), roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[node.ID]; seen {
			continue
		}
		visited[node.ID] = struct{}{}
		if node.ID == id {
			return node
		}
		stack = append(stack, node.Children...)
	}
	return nil
}

// InScope reports whether the listing belongs to the selected category
// directly or through any transitively nested subcategory.
func (s *catalogService) InScope(listing *models.Listing, selectedID uuid.UUID, tree *models.CategoryTree) bool {
	if listing.ProductCategory == nil {
		return false
	}
	if *listing.ProductCategory == selectedID {
		return true
	}
	_, ok := s.Descendants(tree, selectedID)[*listing.ProductCategory]
	return ok
}
