package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/category"
	"github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/slug"
	"github.com/fekuna/omnipos-admin-service/pkg/cache"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

const treeCacheKey = "categories:tree"

type categoryUseCase struct {
	repo       category.Repository
	cache      cache.Cache
	publisher  changefeed.Publisher
	ttl        time.Duration
	dependents []category.Invalidator
	logger     logger.ZapLogger
	now        func() time.Time
}

// NewCategoryUseCase wires the category use case. dependents are caches
// that embed category data (the product list) and are cleared with the tree.
func NewCategoryUseCase(repo category.Repository, c cache.Cache, pub changefeed.Publisher, ttl time.Duration, log logger.ZapLogger, dependents ...category.Invalidator) category.UseCase {
	return &categoryUseCase{
		repo:       repo,
		cache:      c,
		publisher:  pub,
		ttl:        ttl,
		dependents: dependents,
		logger:     log,
		now:        time.Now,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	cat, err := uc.newCategory(ctx, input, nil)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	uc.afterMutation(changefeed.Insert, cat.ID)
	return cat, nil
}

// CreateCategoriesAtomic inserts all inputs in one transaction. A ParentSlug
// may name a category created earlier in the same batch.
func (uc *categoryUseCase) CreateCategoriesAtomic(ctx context.Context, inputs []*dto.CreateCategoryInput) ([]*model.Category, error) {
	bySlug := map[string]string{}
	cats := make([]*model.Category, 0, len(inputs))
	for i, input := range inputs {
		cat, err := uc.newCategory(ctx, input, bySlug)
		if err != nil {
			return nil, apperr.Prefix(fmt.Sprintf("row %d", i+1), err)
		}
		if _, dup := bySlug[cat.Slug]; dup {
			return nil, apperr.Validationf("category.CreateBatch", "row %d: slug %q repeats an earlier row", i+1, cat.Slug)
		}
		bySlug[cat.Slug] = cat.ID
		cats = append(cats, cat)
	}

	if err := uc.repo.CreateBatch(ctx, cats); err != nil {
		return nil, err
	}

	for _, c := range cats {
		uc.afterMutation(changefeed.Insert, c.ID)
	}
	return cats, nil
}

func (uc *categoryUseCase) newCategory(ctx context.Context, input *dto.CreateCategoryInput, pending map[string]string) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validationf("category.Create", "name is required")
	}

	s := input.Slug
	if s == "" {
		s = slug.Make(name)
	}
	if !slug.Valid(s) {
		return nil, apperr.Validationf("category.Create", "invalid slug %q", s)
	}

	parentID, err := uc.resolveParent(ctx, input, pending)
	if err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	now := uc.now()
	return &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:            name,
		Slug:            s,
		Description:     input.Description,
		ParentID:        parentID,
		IsActive:        isActive,
		DisplayOrder:    input.DisplayOrder,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		Children:        []*model.Category{},
	}, nil
}

// resolveParent accepts either a parent id or a parent slug. pending maps
// slugs of not yet committed categories to their ids.
func (uc *categoryUseCase) resolveParent(ctx context.Context, input *dto.CreateCategoryInput, pending map[string]string) (*string, error) {
	if parentID := normalizeID(input.ParentID); parentID != nil {
		parent, err := uc.repo.FindByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.Validationf("category.Create", "parent category %s not found", *parentID)
		}
		return parentID, nil
	}

	parentSlug := strings.TrimSpace(input.ParentSlug)
	if parentSlug == "" {
		return nil, nil
	}
	if id, ok := pending[parentSlug]; ok {
		return &id, nil
	}
	parent, err := uc.repo.FindBySlug(ctx, parentSlug)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperr.Validationf("category.Create", "parent category %q not found", parentSlug)
	}
	return &parent.ID, nil
}

// GetCategory returns the category with Parent populated. A dangling
// parent_id leaves Parent nil.
func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFoundf("category.Get", "category not found")
	}

	if cat.ParentID != nil {
		parent, err := uc.repo.FindByID(ctx, *cat.ParentID)
		if err != nil {
			return nil, err
		}
		cat.Parent = parent
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *categoryUseCase) GetCategoryTree(ctx context.Context) ([]*model.Category, error) {
	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, treeCacheKey); err == nil {
			var tree []*model.Category
			if err := json.Unmarshal(data, &tree); err == nil {
				fillChildren(tree)
				return tree, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			uc.logger.Warn("category tree cache read failed", zap.Error(err))
		}
	}

	flat, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{})
	if err != nil {
		return nil, err
	}
	tree := category.BuildTree(flat)

	if uc.cache != nil {
		if data, err := json.Marshal(tree); err == nil {
			if err := uc.cache.Set(ctx, treeCacheKey, data, uc.ttl); err != nil {
				uc.logger.Warn("category tree cache write failed", zap.Error(err))
			}
		}
	}
	return tree, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFoundf("category.Update", "category not found")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validationf("category.Update", "name is required")
	}
	s := input.Slug
	if s == "" {
		s = cat.Slug
	}
	if !slug.Valid(s) {
		return nil, apperr.Validationf("category.Update", "invalid slug %q", s)
	}

	parentID := normalizeID(input.ParentID)
	if parentID != nil {
		if err := uc.checkParent(ctx, cat.ID, *parentID); err != nil {
			return nil, err
		}
	}

	cat.Name = name
	cat.Slug = s
	cat.Description = input.Description
	cat.ParentID = parentID
	if input.IsActive != nil {
		cat.IsActive = *input.IsActive
	}
	cat.DisplayOrder = input.DisplayOrder
	cat.MetaTitle = input.MetaTitle
	cat.MetaDescription = input.MetaDescription
	cat.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	uc.afterMutation(changefeed.Update, cat.ID)
	return cat, nil
}

// checkParent rejects a parent that does not exist, is the category itself
// or sits below it.
func (uc *categoryUseCase) checkParent(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return apperr.Validationf("category.Update", "a category cannot be its own parent")
	}

	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{})
	if err != nil {
		return err
	}
	parentOf := make(map[string]*string, len(all))
	for _, c := range all {
		parentOf[c.ID] = c.ParentID
	}
	if _, ok := parentOf[parentID]; !ok {
		return apperr.Validationf("category.Update", "parent category %s not found", parentID)
	}

	seen := map[string]bool{}
	for cur := &parentID; cur != nil && !seen[*cur]; cur = parentOf[*cur] {
		if *cur == id {
			return apperr.Validationf("category.Update", "parent %s is a descendant of this category", parentID)
		}
		seen[*cur] = true
	}
	return nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.afterMutation(changefeed.Delete, id)
	return nil
}

func (uc *categoryUseCase) InvalidateTree(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Delete(ctx, treeCacheKey)
}

func (uc *categoryUseCase) afterMutation(typ changefeed.EventType, id string) {
	ctx := context.Background()
	if err := uc.InvalidateTree(ctx); err != nil {
		uc.logger.Warn("failed to invalidate category tree", zap.Error(err))
	}
	for _, invalidate := range uc.dependents {
		if err := invalidate(ctx); err != nil {
			uc.logger.Warn("failed to invalidate dependent cache", zap.Error(err))
		}
	}
	changefeed.Notify(uc.publisher, uc.logger, changefeed.TableCategories, typ, id)
}

// fillChildren restores the empty children slices that a JSON round trip
// turns into nil.
func fillChildren(nodes []*model.Category) {
	for _, n := range nodes {
		if n.Children == nil {
			n.Children = []*model.Category{}
		}
		fillChildren(n.Children)
	}
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}
