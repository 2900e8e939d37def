package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	catdto "github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	proddto "github.com/fekuna/omnipos-admin-service/internal/product/dto"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeStore persists whatever it is given and fails names starting "bad".
type fakeStore struct {
	mu         sync.Mutex
	products   []string
	categories []string
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
}

func (f *fakeStore) CreateProduct(_ context.Context, in *proddto.CreateProductInput) (*model.Product, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if in.Name == "" {
		return nil, apperr.Validationf("product.Create", "name is required")
	}
	if strings.HasPrefix(in.Name, "bad") {
		return nil, fmt.Errorf("connection reset")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, in.Name)
	return &model.Product{Name: in.Name}, nil
}

func (f *fakeStore) CreateProductsAtomic(_ context.Context, ins []*proddto.CreateProductInput) ([]*model.Product, error) {
	for i, in := range ins {
		if in.Name == "" {
			return nil, apperr.Prefix(fmt.Sprintf("row %d", i+1), apperr.Validationf("product.Create", "name is required"))
		}
	}
	out := make([]*model.Product, len(ins))
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, in := range ins {
		f.products = append(f.products, in.Name)
		out[i] = &model.Product{Name: in.Name}
	}
	return out, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, in *catdto.CreateCategoryInput) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.ParentSlug != "" && !contains(f.categories, in.ParentSlug) {
		return nil, apperr.Validationf("category.Create", "parent category %q not found", in.ParentSlug)
	}
	f.categories = append(f.categories, in.Slug)
	return &model.Category{Slug: in.Slug}, nil
}

func (f *fakeStore) CreateCategoriesAtomic(context.Context, []*catdto.CreateCategoryInput) ([]*model.Category, error) {
	return nil, fmt.Errorf("deadlock detected")
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func newImporter(store *fakeStore) *Importer {
	return NewImporter(store, store, Options{}, logger.NewNop())
}

func TestImportProducts_PartialKeepsSuccesses(t *testing.T) {
	store := &fakeStore{}
	in := "name,price\nA,1\nbad-1,2\nB,3\n,4\nC,5\n"

	sum, err := newImporter(store).Import(context.Background(), KindProducts, strings.NewReader(in), FormatCSV, Options{Concurrency: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Success)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, []string{
		"row 2: something went wrong, please try again",
		"row 4: name is required",
	}, sum.Errors)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, store.products)
	assert.LessOrEqual(t, store.maxFlight.Load(), int32(3))
}

func TestImportProducts_NKFailures(t *testing.T) {
	for _, tc := range []struct{ n, k int }{{0, 0}, {5, 0}, {5, 5}, {20, 7}} {
		t.Run(fmt.Sprintf("n=%d,k=%d", tc.n, tc.k), func(t *testing.T) {
			inputs := make([]*proddto.CreateProductInput, tc.n)
			for i := range inputs {
				name := fmt.Sprintf("p%d", i)
				if i < tc.k {
					name = "bad" + name
				}
				inputs[i] = &proddto.CreateProductInput{Name: name}
			}

			store := &fakeStore{}
			sum := newImporter(store).ImportProducts(context.Background(), inputs, Options{})
			assert.Equal(t, tc.n-tc.k, sum.Success)
			assert.Equal(t, tc.k, sum.Failed)
			assert.Len(t, sum.Errors, tc.k)
			assert.Len(t, store.products, tc.n-tc.k)
		})
	}
}

func TestImportProducts_AtomicAllOrNothing(t *testing.T) {
	store := &fakeStore{}
	im := newImporter(store)

	sum := im.ImportProducts(context.Background(), []*proddto.CreateProductInput{{Name: "A"}, {Name: ""}}, Options{Mode: ModeAtomic})
	assert.Equal(t, 0, sum.Success)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, []string{"rolled back: row 2: name is required"}, sum.Errors)
	assert.Empty(t, store.products)

	sum = im.ImportProducts(context.Background(), []*proddto.CreateProductInput{{Name: "A"}, {Name: "B"}}, Options{Mode: ModeAtomic})
	assert.Equal(t, 2, sum.Success)
	assert.Empty(t, sum.Errors)
}

func TestImportCategories_SequentialParentsFirst(t *testing.T) {
	store := &fakeStore{}
	in := `[{"name":"Apparel","slug":"apparel"},{"name":"Shirts","slug":"shirts","parent_slug":"apparel"},{"name":"Lost","slug":"lost","parent_slug":"nowhere"}]`

	sum, err := newImporter(store).Import(context.Background(), KindCategories, strings.NewReader(in), FormatJSON, Options{Concurrency: 8})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Success)
	assert.Equal(t, []string{`row 3: parent category "nowhere" not found`}, sum.Errors)
	assert.Equal(t, []string{"apparel", "shirts"}, store.categories)
}

func TestImportCategories_AtomicUnknownErrorIsGeneric(t *testing.T) {
	sum := newImporter(&fakeStore{}).ImportCategories(context.Background(), []*catdto.CreateCategoryInput{{Name: "A"}}, Options{Mode: ModeAtomic})
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, []string{"rolled back: something went wrong, please try again"}, sum.Errors)
}

func TestImport_BadPayload(t *testing.T) {
	_, err := newImporter(&fakeStore{}).Import(context.Background(), KindProducts, strings.NewReader("{"), FormatJSON, Options{})
	assert.True(t, apperr.IsValidation(err))

	_, err = newImporter(&fakeStore{}).Import(context.Background(), "orders", strings.NewReader("[]"), FormatJSON, Options{})
	assert.True(t, apperr.IsValidation(err))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePartial, m)

	m, err = ParseMode("ATOMIC")
	require.NoError(t, err)
	assert.Equal(t, ModeAtomic, m)

	_, err = ParseMode("yolo")
	assert.Error(t, err)
}
