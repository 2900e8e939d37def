package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/bulk"
	catdto "github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/product"
	"github.com/fekuna/omnipos-admin-service/internal/product/dto"
	"github.com/fekuna/omnipos-admin-service/internal/slug"
	"github.com/fekuna/omnipos-admin-service/pkg/cache"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

const (
	searchIndex     = "products"
	listCachePrefix = "products:list:"
)

type Options struct {
	CacheTTL        time.Duration
	BulkConcurrency int
}

type productUseCase struct {
	repo       product.Repository
	categories product.CategoryReader
	cache      cache.Cache
	es         product.Searcher
	storage    product.ObjectStore
	publisher  changefeed.Publisher
	opts       Options
	logger     logger.ZapLogger
	now        func() time.Time
}

// NewProductUseCase wires the product use case. cache, es and storage may be
// nil; the matching features are then skipped or rejected.
func NewProductUseCase(
	repo product.Repository,
	categories product.CategoryReader,
	c cache.Cache,
	es product.Searcher,
	storage product.ObjectStore,
	pub changefeed.Publisher,
	opts Options,
	log logger.ZapLogger,
) product.UseCase {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.BulkConcurrency < 1 {
		opts.BulkConcurrency = 1
	}
	return &productUseCase{
		repo:       repo,
		categories: categories,
		cache:      c,
		es:         es,
		storage:    storage,
		publisher:  pub,
		opts:       opts,
		logger:     log,
		now:        time.Now,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	p, err := uc.newProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := uc.checkUnique(ctx, p); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.afterMutation(changefeed.Insert, p)
	return p, nil
}

// CreateProductsAtomic validates every input first and then inserts all of
// them in one transaction. Nothing is persisted when any input fails.
func (uc *productUseCase) CreateProductsAtomic(ctx context.Context, inputs []*dto.CreateProductInput) ([]*model.Product, error) {
	products := make([]*model.Product, 0, len(inputs))
	slugs := map[string]int{}
	for i, input := range inputs {
		p, err := uc.newProduct(ctx, input)
		if err != nil {
			return nil, apperr.Prefix(fmt.Sprintf("row %d", i+1), err)
		}
		if prev, dup := slugs[p.Slug]; dup {
			return nil, apperr.Validationf("product.CreateBatch", "row %d: slug %q repeats row %d", i+1, p.Slug, prev)
		}
		slugs[p.Slug] = i + 1
		if err := uc.checkUnique(ctx, p); err != nil {
			return nil, apperr.Prefix(fmt.Sprintf("row %d", i+1), err)
		}
		products = append(products, p)
	}

	if err := uc.repo.CreateBatch(ctx, products); err != nil {
		return nil, err
	}

	for _, p := range products {
		uc.afterMutation(changefeed.Insert, p)
	}
	return products, nil
}

func (uc *productUseCase) newProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validationf("product.Create", "name is required")
	}
	if err := validatePrices(input.Price, input.SalePrice); err != nil {
		return nil, err
	}

	s := input.Slug
	if s == "" {
		s = slug.Make(name)
	}
	if !slug.Valid(s) {
		return nil, apperr.Validationf("product.Create", "invalid slug %q", s)
	}

	categoryID := normalize(input.CategoryID)
	if err := uc.checkCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	now := uc.now()
	return &model.Product{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:            name,
		Slug:            s,
		Description:     input.Description,
		Price:           input.Price,
		SalePrice:       input.SalePrice,
		StockQuantity:   input.StockQuantity,
		CategoryID:      categoryID,
		SKU:             normalize(input.SKU),
		IsActive:        isActive,
		IsFeatured:      input.IsFeatured,
		Weight:          input.Weight,
		Dimensions:      normalize(input.Dimensions),
		Brand:           normalize(input.Brand),
		MetaTitle:       normalize(input.MetaTitle),
		MetaDescription: normalize(input.MetaDescription),
		Images:          []model.ProductImage{},
	}, nil
}

func (uc *productUseCase) checkUnique(ctx context.Context, p *model.Product) error {
	unique, err := uc.repo.IsSlugUnique(ctx, p.Slug, p.ID)
	if err != nil {
		return err
	}
	if !unique {
		return apperr.Validationf("product.checkUnique", "slug %q already exists", p.Slug)
	}

	if p.SKU != nil {
		unique, err := uc.repo.IsSKUUnique(ctx, *p.SKU, p.ID)
		if err != nil {
			return err
		}
		if !unique {
			return apperr.Validationf("product.checkUnique", "SKU %q already exists", *p.SKU)
		}
	}
	return nil
}

func (uc *productUseCase) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil || uc.categories == nil {
		return nil
	}
	c, err := uc.categories.FindByID(ctx, *categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.Validationf("product.checkCategory", "category %s not found", *categoryID)
	}
	return nil
}

func validatePrices(price decimal.Decimal, sale *decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.Validationf("product.validate", "price must not be negative")
	}
	if sale != nil {
		if sale.IsNegative() {
			return apperr.Validationf("product.validate", "sale price must not be negative")
		}
		if sale.GreaterThan(price) {
			return apperr.Validationf("product.validate", "sale price must not exceed price")
		}
	}
	return nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("product.Get", "product not found")
	}

	products := []model.Product{*p}
	if err := uc.enrich(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

type cachedList struct {
	Products []model.Product
	Count    int
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters == nil {
		filters = &dto.ProductFilters{}
	}

	// 1. Check Cache
	cacheKey, keyErr := generateCacheKey(filters)
	if keyErr == nil && uc.cache != nil {
		if val, err := uc.cache.Get(ctx, cacheKey); err == nil {
			var result cachedList
			if err := json.Unmarshal(val, &result); err == nil {
				return result.Products, result.Count, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			uc.logger.Warn("product list cache read failed", zap.Error(err))
		}
	}

	// 2. Search via Elastic (if query present), falling back to the DB
	products, count, err := uc.searchProducts(ctx, filters)
	if err != nil {
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}
	if products == nil {
		products, count, err = uc.repo.FindAll(ctx, filters)
		if err != nil {
			return nil, 0, err
		}
	}

	if err := uc.enrich(ctx, products); err != nil {
		return nil, 0, err
	}

	// 3. Set Cache
	if keyErr == nil && uc.cache != nil {
		if data, err := json.Marshal(cachedList{Products: products, Count: count}); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, data, uc.opts.CacheTTL); err != nil {
				uc.logger.Warn("product list cache write failed", zap.Error(err))
			}
		}
	}

	return products, count, nil
}

// searchProducts returns nil products when search does not apply or fails.
func (uc *productUseCase) searchProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.SearchQuery == "" || uc.es == nil {
		return nil, 0, nil
	}

	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"name^3", "sku", "slug", "brand", "description"},
			},
		},
	}
	if filters.CategoryID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"category_id": filters.CategoryID}})
	}
	if filters.IsActive != nil {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"is_active": *filters.IsActive}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, searchIndex, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

// enrich attaches images and category summaries, both fetched separately
// and joined in memory.
func (uc *productUseCase) enrich(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	images, err := uc.repo.ListImages(ctx, ids)
	if err != nil {
		return err
	}
	byProduct := map[string][]model.ProductImage{}
	for _, img := range images {
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img)
	}

	summaries := map[string]*model.CategorySummary{}
	if uc.categories != nil {
		cats, _, err := uc.categories.FindAll(ctx, &catdto.CategoryFilters{})
		if err != nil {
			return err
		}
		for _, c := range cats {
			summaries[c.ID] = &model.CategorySummary{ID: c.ID, Name: c.Name, Slug: c.Slug}
		}
	}

	for i := range products {
		products[i].Images = byProduct[products[i].ID]
		if products[i].Images == nil {
			products[i].Images = []model.ProductImage{}
		}
		products[i].Category = nil
		if products[i].CategoryID != nil {
			products[i].Category = summaries[*products[i].CategoryID]
		}
	}
	return nil
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", listCachePrefix, md5.Sum(data)), nil
}

func (uc *productUseCase) InvalidateListCache(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.DeletePattern(ctx, listCachePrefix+"*")
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("product.Update", "product not found")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validationf("product.Update", "name is required")
	}
	if err := validatePrices(input.Price, input.SalePrice); err != nil {
		return nil, err
	}
	s := input.Slug
	if s == "" {
		s = p.Slug
	}
	if !slug.Valid(s) {
		return nil, apperr.Validationf("product.Update", "invalid slug %q", s)
	}
	categoryID := normalize(input.CategoryID)
	if err := uc.checkCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	// Update fields
	p.Name = name
	p.Slug = s
	p.Description = input.Description
	p.Price = input.Price
	p.SalePrice = input.SalePrice
	p.StockQuantity = input.StockQuantity
	p.CategoryID = categoryID
	p.SKU = normalize(input.SKU)
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		p.IsFeatured = *input.IsFeatured
	}
	p.Weight = input.Weight
	p.Dimensions = normalize(input.Dimensions)
	p.Brand = normalize(input.Brand)
	p.MetaTitle = normalize(input.MetaTitle)
	p.MetaDescription = normalize(input.MetaDescription)

	if err := uc.checkUnique(ctx, p); err != nil {
		return nil, err
	}

	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.afterMutation(changefeed.Update, p)
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil // Already deleted
	}

	images, err := uc.repo.ListImages(ctx, []string{id})
	if err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Objects are removed after the row; an orphaned object is harmless,
	// a row pointing at a removed object is not.
	for _, img := range images {
		uc.removeObject(ctx, img.ImageURL)
	}

	uc.afterMutation(changefeed.Delete, p)
	return nil
}

// BulkDeleteProducts deletes through the bounded pool. Deleted products stay
// deleted when others fail.
func (uc *productUseCase) BulkDeleteProducts(ctx context.Context, ids []string) bulk.Summary {
	return bulk.Run(ctx, len(ids), uc.opts.BulkConcurrency,
		func(i int) string { return "product " + ids[i] },
		func(ctx context.Context, i int) error {
			return uc.DeleteProduct(ctx, ids[i])
		},
	)
}

func (uc *productUseCase) afterMutation(typ changefeed.EventType, p *model.Product) {
	if err := uc.InvalidateListCache(context.Background()); err != nil {
		uc.logger.Warn("failed to invalidate product list cache", zap.Error(err))
	}

	if uc.es != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if typ == changefeed.Delete {
				if err := uc.es.Delete(ctx, searchIndex, p.ID); err != nil {
					uc.logger.Error("failed to delete product from ES", zap.Error(err))
				}
				return
			}
			uc.syncToElastic(ctx, p)
		}()
	}

	changefeed.Notify(uc.publisher, uc.logger, changefeed.TableProducts, typ, p.ID)
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	mapping := `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"description": { "type": "text" },
				"slug": { "type": "keyword" },
				"sku": { "type": "keyword" },
				"brand": { "type": "text" },
				"category_id": { "type": "keyword" },
				"is_active": { "type": "boolean" },
				"price": { "type": "double" },
				"created_at": { "type": "date" }
			}
		}
	}`
	if err := uc.es.CreateIndex(ctx, searchIndex, mapping); err != nil {
		uc.logger.Warn("failed to ensure product index", zap.Error(err))
	}

	doc := *p
	doc.Images = nil
	doc.Category = nil
	if err := uc.es.Index(ctx, searchIndex, p.ID, doc); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}

func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
