package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 商品CRUDと一覧。在庫数の増減は扱わない（StockUsecaseの仕事）。
type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	cache        repo.ProductCache // nilなら無効
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	cache repo.ProductCache,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
}

type ProductListOutput struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}

	products, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Products: products,
		Total:    total,
		Page:     in.Page,
		Limit:    in.Limit,
	}, nil
}

// 在庫がthreshold以下の商品一覧（デフォルト0＝在庫切れのみ）
func (u *ProductUsecase) ListOutOfStock(ctx context.Context, page, limit int, threshold int64) (ProductListOutput, error) {
	if page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if threshold < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}

	products, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:        page,
		Limit:       limit,
		MaxQuantity: &threshold,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Products: products,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

// 詳細取得。キャッシュがあればそちらを先に見る。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if u.cache != nil {
		if p, ok, err := u.cache.Get(ctx, productID); err == nil && ok {
			return p, nil
		}
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		//失敗しても読みは成功しているので無視
		_ = u.cache.Set(ctx, p)
	}
	return p, nil
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       int64
	Quantity    int64
	Image       string
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, categoryID int64, in CreateProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if len(in.Description) > 255 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "description too long")
	}
	if in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Quantity < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}
	if categoryID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	//カテゴリの存在確認
	if _, err := u.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "category not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//同名・同カテゴリは409
	exists, err := u.productRepo.ExistsByNameAndCategory(ctx, name, categoryID)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return model.Product{}, NewHTTPError(http.StatusConflict, "product already exists")
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		CategoryID:  categoryID,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *int64
	CategoryID  *int64
	Image       *string
}

// 部分更新。quantityは受け付けない。
func (u *ProductUsecase) UpdateProduct(ctx context.Context, productID int64, in UpdateProductInput) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 100 {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
		}
		p.Name = name
	}
	if in.Description != nil {
		if len(*in.Description) > 255 {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "description too long")
		}
		p.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		p.Price = *in.Price
	}
	if in.CategoryID != nil && *in.CategoryID != p.CategoryID {
		//カテゴリ変更は存在を再確認
		if _, err := u.categoryRepo.FindByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return model.Product{}, NewHTTPError(http.StatusNotFound, "category not found")
			}
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		p.CategoryID = *in.CategoryID
	}
	if in.Image != nil {
		p.Image = *in.Image
	}

	if err := u.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		_ = u.cache.Delete(ctx, productID)
	}
	return p, nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.Delete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cache != nil {
		_ = u.cache.Delete(ctx, productID)
	}
	return nil
}
