package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/pkg/cache"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockRepo) CreateBatch(ctx context.Context, cats []*model.Category) error {
	return m.Called(ctx, cats).Error(0)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Category)
	return c, args.Error(1)
}

func (m *mockRepo) FindBySlug(ctx context.Context, s string) (*model.Category, error) {
	args := m.Called(ctx, s)
	c, _ := args.Get(0).(*model.Category)
	return c, args.Error(1)
}

func (m *mockRepo) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	args := m.Called(ctx, f)
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Int(1), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func catRow(id, name string, parent *string) model.Category {
	return model.Category{BaseModel: model.BaseModel{ID: id}, Name: name, Slug: id, ParentID: parent, IsActive: true}
}

func newUseCase(repo *mockRepo, c cache.Cache) *categoryUseCase {
	uc := NewCategoryUseCase(repo, c, changefeed.NopPublisher{}, time.Minute, logger.NewNop()).(*categoryUseCase)
	uc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return uc
}

func TestCreateCategory_DerivesSlugAndDefaultsActive(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	uc := newUseCase(repo, nil)
	got, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "  Kaos Pria "})

	require.NoError(t, err)
	assert.Equal(t, "Kaos Pria", got.Name)
	assert.Equal(t, "kaos-pria", got.Slug)
	assert.True(t, got.IsActive)
	assert.NotEmpty(t, got.ID)
	assert.Nil(t, got.ParentID)
	repo.AssertExpectations(t)
}

func TestCreateCategory_Validation(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "ghost").Return(nil, nil)

	uc := newUseCase(repo, nil)

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "   "})
	assert.True(t, apperr.IsValidation(err))

	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Shoes", Slug: "Bad Slug"})
	assert.True(t, apperr.IsValidation(err))

	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Shoes", ParentID: strPtr("ghost")})
	assert.True(t, apperr.IsValidation(err))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetCategory_PopulatesParent(t *testing.T) {
	parent := catRow("p", "Parent", nil)
	child := catRow("c", "Child", strPtr("p"))
	orphan := catRow("o", "Orphan", strPtr("deleted"))

	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "c").Return(&child, nil)
	repo.On("FindByID", mock.Anything, "p").Return(&parent, nil)
	repo.On("FindByID", mock.Anything, "o").Return(&orphan, nil)
	repo.On("FindByID", mock.Anything, "deleted").Return(nil, nil)
	repo.On("FindByID", mock.Anything, "missing").Return(nil, nil)

	uc := newUseCase(repo, nil)

	got, err := uc.GetCategory(context.Background(), "c")
	require.NoError(t, err)
	require.NotNil(t, got.Parent)
	assert.Equal(t, "p", got.Parent.ID)

	got, err = uc.GetCategory(context.Background(), "o")
	require.NoError(t, err)
	assert.Nil(t, got.Parent)

	_, err = uc.GetCategory(context.Background(), "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestGetCategoryTree_CachesUntilMutation(t *testing.T) {
	flat := []model.Category{
		catRow("1", "A", nil),
		catRow("2", "B", strPtr("1")),
		catRow("3", "C", strPtr("99")),
	}

	repo := new(mockRepo)
	repo.On("FindAll", mock.Anything, mock.Anything).Return(flat, 3, nil)
	repo.On("Delete", mock.Anything, "2").Return(nil)

	mem := cache.NewMemory()
	uc := newUseCase(repo, mem)
	ctx := context.Background()

	tree, err := uc.GetCategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "1", tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "2", tree[0].Children[0].ID)
	assert.Equal(t, "3", tree[1].ID)

	cached, err := uc.GetCategoryTree(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	require.Len(t, cached[0].Children, 1)
	assert.NotNil(t, cached[0].Children[0].Children, "leaves keep an empty children slice after the cache")
	assert.Empty(t, cached[0].Children[0].Children)
	assert.NotNil(t, cached[1].Children)
	repo.AssertNumberOfCalls(t, "FindAll", 1)

	require.NoError(t, uc.DeleteCategory(ctx, "2"))
	assert.Equal(t, 0, mem.Len())

	_, err = uc.GetCategoryTree(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "FindAll", 2)
}

func TestGetCategoryTree_EmptyWhenTableMissing(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]model.Category{}, 0, nil)

	tree, err := newUseCase(repo, nil).GetCategoryTree(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestUpdateCategory_RejectsCycles(t *testing.T) {
	root := catRow("root", "Root", nil)
	mid := catRow("mid", "Mid", strPtr("root"))
	leaf := catRow("leaf", "Leaf", strPtr("mid"))

	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "root").Return(&root, nil)
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]model.Category{root, mid, leaf}, 3, nil)

	uc := newUseCase(repo, nil)
	ctx := context.Background()

	_, err := uc.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: "root", Name: "Root", ParentID: strPtr("root")})
	assert.True(t, apperr.IsValidation(err))

	_, err = uc.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: "root", Name: "Root", ParentID: strPtr("leaf")})
	assert.True(t, apperr.IsValidation(err))

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateCategory_MovesUnderNewParent(t *testing.T) {
	a := catRow("a", "A", nil)
	b := catRow("b", "B", nil)

	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "b").Return(&b, nil)
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]model.Category{a, b}, 2, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	got, err := newUseCase(repo, nil).UpdateCategory(context.Background(), &dto.UpdateCategoryInput{
		ID: "b", Name: "B2", ParentID: strPtr("a"), IsActive: boolPtr(false), DisplayOrder: 4,
	})

	require.NoError(t, err)
	assert.Equal(t, "B2", got.Name)
	assert.Equal(t, "b", got.Slug, "empty slug keeps the current one")
	require.NotNil(t, got.ParentID)
	assert.Equal(t, "a", *got.ParentID)
	assert.False(t, got.IsActive)
	assert.Equal(t, 4, got.DisplayOrder)
}

func TestCreateCategory_ResolvesParentSlug(t *testing.T) {
	parent := catRow("p", "Parent", nil)

	repo := new(mockRepo)
	repo.On("FindBySlug", mock.Anything, "parent").Return(&parent, nil)
	repo.On("FindBySlug", mock.Anything, "ghost").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	uc := newUseCase(repo, nil)

	got, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Child", ParentSlug: "parent"})
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, "p", *got.ParentID)

	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Lost", ParentSlug: "ghost"})
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateCategoriesAtomic_LinksParentsWithinBatch(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*model.Category")).Return(nil)

	got, err := newUseCase(repo, nil).CreateCategoriesAtomic(context.Background(), []*dto.CreateCategoryInput{
		{Name: "Apparel"},
		{Name: "Shirts", ParentSlug: "apparel"},
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[1].ParentID)
	assert.Equal(t, got[0].ID, *got[1].ParentID)
	repo.AssertNotCalled(t, "FindBySlug", mock.Anything, mock.Anything)
}

func TestCreateCategoriesAtomic_RollsBackWholeBatchOnInvalidRow(t *testing.T) {
	repo := new(mockRepo)

	_, err := newUseCase(repo, nil).CreateCategoriesAtomic(context.Background(), []*dto.CreateCategoryInput{
		{Name: "Apparel"},
		{Name: ""},
	})

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "row 2")
	repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestUpdateCategory_KeepsActiveFlagWhenOmitted(t *testing.T) {
	inactive := catRow("a", "A", nil)
	inactive.IsActive = false

	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "a").Return(&inactive, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	got, err := newUseCase(repo, nil).UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: "a", Name: "A2"})
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	inactive.IsActive = true
	got, err = newUseCase(repo, nil).UpdateCategory(context.Background(), &dto.UpdateCategoryInput{ID: "a", Name: "A3"})
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestCategoryMutations_ClearProductListCache(t *testing.T) {
	a := catRow("a", "Old", nil)

	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "a").Return(&a, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)
	repo.On("Delete", mock.Anything, "a").Return(nil)

	mem := cache.NewMemory()
	ctx := context.Background()
	clearLists := func(ctx context.Context) error { return mem.DeletePattern(ctx, "products:list:*") }

	uc := NewCategoryUseCase(repo, mem, changefeed.NopPublisher{}, time.Minute, logger.NewNop(), clearLists)

	require.NoError(t, mem.Set(ctx, "products:list:abc", []byte(`{"products":[]}`), time.Minute))
	_, err := uc.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: "a", Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, 0, mem.Len())

	require.NoError(t, mem.Set(ctx, "products:list:def", []byte(`{"products":[]}`), time.Minute))
	require.NoError(t, uc.DeleteCategory(ctx, "a"))
	assert.Equal(t, 0, mem.Len())
}

func TestCreateCategory_TransliteratesAccentedNames(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	got, err := newUseCase(repo, nil).CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Café Crème"})
	require.NoError(t, err)
	assert.Equal(t, "cafe-creme", got.Slug)
}
