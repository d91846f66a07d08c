package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type ProdProductRepoMock struct{ mock.Mock }

func (m *ProdProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProdProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdProductRepoMock) ExistsByNameAndCategory(ctx context.Context, name string, categoryID int64) (bool, error) {
	args := m.Called(ctx, name, categoryID)
	return args.Bool(0), args.Error(1)
}

func (m *ProdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProdProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProdProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProdProductRepoMock) IncreaseQuantity(ctx context.Context, productID int64, qty int64) error {
	panic("not used in ProductUsecase tests")
}

func (m *ProdProductRepoMock) DecreaseQuantityIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	panic("not used in ProductUsecase tests")
}

type ProdCategoryRepoMock struct{ mock.Mock }

func (m *ProdCategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdCategoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *ProdCategoryRepoMock) FindByName(ctx context.Context, name string) (model.Category, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdCategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdCategoryRepoMock) Update(ctx context.Context, c model.Category) error {
	panic("not used in ProductUsecase tests")
}

func (m *ProdCategoryRepoMock) Delete(ctx context.Context, id int64) error {
	panic("not used in ProductUsecase tests")
}

// 固定の内容を返す読み取り用キャッシュ
type stubProductCache struct {
	hit     bool
	product model.Product

	sets    []model.Product
	deletes []int64
}

func (c *stubProductCache) Get(ctx context.Context, id int64) (model.Product, bool, error) {
	return c.product, c.hit, nil
}

func (c *stubProductCache) Set(ctx context.Context, p model.Product) error {
	c.sets = append(c.sets, p)
	return nil
}

func (c *stubProductCache) Delete(ctx context.Context, id int64) error {
	c.deletes = append(c.deletes, id)
	return nil
}

// =====================
// List
// =====================

func TestProductUsecase_ListProducts_InvalidPage(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdCategoryRepoMock), nil)

	_, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid page")
}

func TestProductUsecase_ListProducts_InvalidPriceRange(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdCategoryRepoMock), nil)

	minP, maxP := int64(500), int64(100)
	_, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{
		Page: 1, Limit: 20, MinPrice: &minP, MaxPrice: &maxP,
	})
	assertHTTPError(t, err, http.StatusBadRequest, "min_price must be <= max_price")
}

func TestProductUsecase_ListProducts_Success(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), nil)

	catID := int64(2)
	q := repo.ProductListQuery{Page: 1, Limit: 20, CategoryID: &catID}
	items := []model.Product{{ID: 1, Name: "Coffee", CategoryID: 2}}
	pRepo.On("List", mock.Anything, q).Return(items, int64(1), nil)

	out, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{
		Page: 1, Limit: 20, CategoryID: &catID,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Products, 1)

	pRepo.AssertExpectations(t)
}

// =====================
// 在庫切れ一覧
// =====================

func TestProductUsecase_ListOutOfStock_NegativeThreshold(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdCategoryRepoMock), nil)

	_, err := uc.ListOutOfStock(context.Background(), 1, 20, -1)
	assertHTTPError(t, err, http.StatusBadRequest, "quantity must be >= 0")
}

func TestProductUsecase_ListOutOfStock_PassesThreshold(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), nil)

	pRepo.On("List", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.MaxQuantity != nil && *q.MaxQuantity == 5 && q.Page == 1 && q.Limit == 20
	})).Return([]model.Product{{ID: 3, Quantity: 2}}, int64(1), nil)

	out, err := uc.ListOutOfStock(context.Background(), 1, 20, 5)
	assert.NoError(t, err)
	assert.Len(t, out.Products, 1)

	pRepo.AssertExpectations(t)
}

// =====================
// 詳細（キャッシュあり）
// =====================

func TestProductUsecase_GetProductDetail_CacheHitSkipsRepo(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	cache := &stubProductCache{hit: true, product: model.Product{ID: 1, Name: "cached"}}
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), cache)

	p, err := uc.GetProductDetail(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "cached", p.Name)

	pRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProductUsecase_GetProductDetail_CacheMissFillsCache(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	cache := &stubProductCache{}
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), cache)

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Coffee"}, nil)

	p, err := uc.GetProductDetail(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "Coffee", p.Name)
	assert.Len(t, cache.sets, 1)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_GetProductDetail_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), nil)

	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.GetProductDetail(context.Background(), 99)
	assertHTTPError(t, err, http.StatusNotFound, "product not found")
}

// =====================
// Create
// =====================

func TestProductUsecase_CreateProduct_Validation(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), new(ProdCategoryRepoMock), nil)

	_, err := uc.CreateProduct(context.Background(), 1, usecase.CreateProductInput{Name: " ", Price: 1})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid name")

	_, err = uc.CreateProduct(context.Background(), 1, usecase.CreateProductInput{Name: "x", Price: -1})
	assertHTTPError(t, err, http.StatusBadRequest, "price must be >= 0")

	_, err = uc.CreateProduct(context.Background(), 1, usecase.CreateProductInput{Name: "x", Price: 1, Quantity: -1})
	assertHTTPError(t, err, http.StatusBadRequest, "quantity must be >= 0")
}

func TestProductUsecase_CreateProduct_CategoryNotFound(t *testing.T) {
	cRepo := new(ProdCategoryRepoMock)
	uc := usecase.NewProductUsecase(new(ProdProductRepoMock), cRepo, nil)

	cRepo.On("FindByID", mock.Anything, int64(9)).Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.CreateProduct(context.Background(), 9, usecase.CreateProductInput{Name: "Coffee", Price: 100})
	assertHTTPError(t, err, http.StatusNotFound, "category not found")
}

func TestProductUsecase_CreateProduct_DuplicateName(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	cRepo := new(ProdCategoryRepoMock)
	uc := usecase.NewProductUsecase(pRepo, cRepo, nil)

	cRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2}, nil)
	pRepo.On("ExistsByNameAndCategory", mock.Anything, "Coffee", int64(2)).Return(true, nil)

	_, err := uc.CreateProduct(context.Background(), 2, usecase.CreateProductInput{Name: "Coffee", Price: 100})
	assertHTTPError(t, err, http.StatusConflict, "product already exists")
}

func TestProductUsecase_CreateProduct_Success(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	cRepo := new(ProdCategoryRepoMock)
	uc := usecase.NewProductUsecase(pRepo, cRepo, nil)

	cRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2}, nil)
	pRepo.On("ExistsByNameAndCategory", mock.Anything, "Coffee", int64(2)).Return(false, nil)

	//名前は前後の空白を落として保存する
	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Coffee" && p.Price == 100 && p.Quantity == 10 && p.CategoryID == 2
	})).Return(model.Product{ID: 123, Name: "Coffee"}, nil)

	p, err := uc.CreateProduct(context.Background(), 2, usecase.CreateProductInput{
		Name:     " Coffee ",
		Price:    100,
		Quantity: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(123), p.ID)

	pRepo.AssertExpectations(t)
	cRepo.AssertExpectations(t)
}

// =====================
// Update / Delete
// =====================

func TestProductUsecase_UpdateProduct_PartialUpdateKeepsOtherFields(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	cache := &stubProductCache{}
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), cache)

	pRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Coffee", Price: 100, Quantity: 7, CategoryID: 2}, nil)

	newPrice := int64(150)
	pRepo.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		//価格だけ変わり、数量はそのまま
		return p.Price == 150 && p.Name == "Coffee" && p.Quantity == 7
	})).Return(nil)

	p, err := uc.UpdateProduct(context.Background(), 1, usecase.UpdateProductInput{Price: &newPrice})
	assert.NoError(t, err)
	assert.Equal(t, int64(150), p.Price)

	//更新後はキャッシュを消す
	assert.Equal(t, []int64{1}, cache.deletes)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_UpdateProduct_CategoryChangeRechecked(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	cRepo := new(ProdCategoryRepoMock)
	uc := usecase.NewProductUsecase(pRepo, cRepo, nil)

	pRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Coffee", CategoryID: 2}, nil)
	cRepo.On("FindByID", mock.Anything, int64(9)).Return(model.Category{}, repo.ErrNotFound)

	newCat := int64(9)
	_, err := uc.UpdateProduct(context.Background(), 1, usecase.UpdateProductInput{CategoryID: &newCat})
	assertHTTPError(t, err, http.StatusNotFound, "category not found")
}

func TestProductUsecase_DeleteProduct_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), nil)

	pRepo.On("Delete", mock.Anything, int64(99)).Return(repo.ErrNotFound)

	err := uc.DeleteProduct(context.Background(), 99)
	assertHTTPError(t, err, http.StatusNotFound, "product not found")
}

func TestProductUsecase_DeleteProduct_Success(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	cache := &stubProductCache{}
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), cache)

	pRepo.On("Delete", mock.Anything, int64(1)).Return(nil)

	err := uc.DeleteProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1}, cache.deletes)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_ListProducts_DBError(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, new(ProdCategoryRepoMock), nil)

	pRepo.On("List", mock.Anything, mock.Anything).
		Return([]model.Product(nil), int64(0), errors.New("db down"))

	_, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20})
	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
}
