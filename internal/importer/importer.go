// Package importer turns uploaded JSON or CSV files into products and
// categories.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/bulk"
	catdto "github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	proddto "github.com/fekuna/omnipos-admin-service/internal/product/dto"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type Mode string

const (
	// ModePartial keeps every row that succeeded.
	ModePartial Mode = "partial"
	// ModeAtomic writes all rows in one transaction or none of them.
	ModeAtomic Mode = "atomic"
)

const DefaultConcurrency = 4

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePartial:
		return ModePartial, nil
	case ModeAtomic:
		return ModeAtomic, nil
	}
	return "", fmt.Errorf("unknown import mode %q", s)
}

type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

type Options struct {
	Mode        Mode
	Concurrency int
}

type ProductCreator interface {
	CreateProduct(ctx context.Context, input *proddto.CreateProductInput) (*model.Product, error)
	CreateProductsAtomic(ctx context.Context, inputs []*proddto.CreateProductInput) ([]*model.Product, error)
}

type CategoryCreator interface {
	CreateCategory(ctx context.Context, input *catdto.CreateCategoryInput) (*model.Category, error)
	CreateCategoriesAtomic(ctx context.Context, inputs []*catdto.CreateCategoryInput) ([]*model.Category, error)
}

type Importer struct {
	products   ProductCreator
	categories CategoryCreator
	defaults   Options
	logger     logger.ZapLogger
}

func NewImporter(products ProductCreator, categories CategoryCreator, defaults Options, log logger.ZapLogger) *Importer {
	if defaults.Mode == "" {
		defaults.Mode = ModePartial
	}
	if defaults.Concurrency < 1 {
		defaults.Concurrency = DefaultConcurrency
	}
	return &Importer{products: products, categories: categories, defaults: defaults, logger: log}
}

func (im *Importer) options(opts Options) Options {
	if opts.Mode == "" {
		opts.Mode = im.defaults.Mode
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = im.defaults.Concurrency
	}
	return opts
}

// Import parses r and creates every row. Only an unreadable payload is
// returned as an error; row failures are reported in the summary.
func (im *Importer) Import(ctx context.Context, kind Kind, r io.Reader, format Format, opts Options) (bulk.Summary, error) {
	switch kind {
	case KindProducts:
		inputs, err := ParseProducts(r, format)
		if err != nil {
			return bulk.Summary{}, apperr.Validationf("import.Parse", "%v", err)
		}
		return im.ImportProducts(ctx, inputs, opts), nil
	case KindCategories:
		inputs, err := ParseCategories(r, format)
		if err != nil {
			return bulk.Summary{}, apperr.Validationf("import.Parse", "%v", err)
		}
		return im.ImportCategories(ctx, inputs, opts), nil
	}
	return bulk.Summary{}, apperr.Validationf("import", "unknown import kind %q", kind)
}

func (im *Importer) ImportProducts(ctx context.Context, inputs []*proddto.CreateProductInput, opts Options) bulk.Summary {
	opts = im.options(opts)
	if opts.Mode == ModeAtomic {
		_, err := im.products.CreateProductsAtomic(ctx, inputs)
		return im.atomicSummary(KindProducts, len(inputs), err)
	}

	sum := bulk.Run(ctx, len(inputs), opts.Concurrency, bulk.RowLabel, func(ctx context.Context, i int) error {
		_, err := im.products.CreateProduct(ctx, inputs[i])
		return im.rowError(KindProducts, i, err)
	})
	im.logSummary(KindProducts, opts, sum)
	return sum
}

// ImportCategories always runs one row at a time so a parent earlier in
// the file exists before its children reference it by slug.
func (im *Importer) ImportCategories(ctx context.Context, inputs []*catdto.CreateCategoryInput, opts Options) bulk.Summary {
	opts = im.options(opts)
	if opts.Mode == ModeAtomic {
		_, err := im.categories.CreateCategoriesAtomic(ctx, inputs)
		return im.atomicSummary(KindCategories, len(inputs), err)
	}

	opts.Concurrency = 1
	sum := bulk.Run(ctx, len(inputs), 1, bulk.RowLabel, func(ctx context.Context, i int) error {
		_, err := im.categories.CreateCategory(ctx, inputs[i])
		return im.rowError(KindCategories, i, err)
	})
	im.logSummary(KindCategories, opts, sum)
	return sum
}

// rowError logs the underlying error and returns the message shown to the
// user.
func (im *Importer) rowError(kind Kind, i int, err error) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) == apperr.Unknown {
		im.logger.Error("import row failed",
			zap.String("kind", string(kind)),
			zap.Int("row", i+1),
			zap.Error(err),
		)
	}
	return errors.New(apperr.Message(err))
}

func (im *Importer) atomicSummary(kind Kind, n int, err error) bulk.Summary {
	if err == nil {
		im.logger.Info("import finished", zap.String("kind", string(kind)), zap.String("mode", string(ModeAtomic)), zap.Int("success", n))
		return bulk.Summary{Success: n, Errors: []string{}}
	}

	if apperr.KindOf(err) == apperr.Unknown {
		im.logger.Error("atomic import rolled back", zap.String("kind", string(kind)), zap.Error(err))
	}
	return bulk.Summary{
		Failed: n,
		Errors: []string{"rolled back: " + apperr.Message(err)},
	}
}

func (im *Importer) logSummary(kind Kind, opts Options, sum bulk.Summary) {
	im.logger.Info("import finished",
		zap.String("kind", string(kind)),
		zap.String("mode", string(opts.Mode)),
		zap.Int("concurrency", opts.Concurrency),
		zap.Int("success", sum.Success),
		zap.Int("failed", sum.Failed),
	)
}
