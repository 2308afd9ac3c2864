package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sellerhub/internal/model"
	"sellerhub/internal/repository"
)

type ProductService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{productRepo: productRepo, logger: logger}
}

func (s *ProductService) Create(ctx context.Context, product *model.Product) error {
	if product.Stock < 0 {
		return &InsufficientStockError{Current: 0}
	}
	return s.productRepo.Create(ctx, product)
}

func (s *ProductService) Get(ctx context.Context, id, userID int64) (*model.Product, error) {
	return s.productRepo.GetByIDForUser(ctx, id, userID)
}

func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.List(ctx, filter)
}

// AdjustStock applies a signed delta to the canonical stock. An adjustment
// that would drive stock below zero is rejected before any write.
func (s *ProductService) AdjustStock(ctx context.Context, id, userID int64, delta int) (*model.Product, error) {
	product, err := s.productRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	newStock := product.Stock + delta
	if newStock < 0 {
		return nil, &InsufficientStockError{Current: product.Stock}
	}

	if err := s.productRepo.UpdateFields(ctx, id, map[string]interface{}{"stock": newStock}); err != nil {
		return nil, err
	}
	product.Stock = newStock
	return product, nil
}

// SetStock writes an absolute quantity; negative values are rejected.
func (s *ProductService) SetStock(ctx context.Context, id, userID int64, value int) (*model.Product, error) {
	product, err := s.productRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if value < 0 {
		return nil, &InsufficientStockError{Current: product.Stock}
	}
	if err := s.productRepo.UpdateFields(ctx, id, map[string]interface{}{"stock": value}); err != nil {
		return nil, err
	}
	product.Stock = value
	return product, nil
}

func (s *ProductService) UpdatePrice(ctx context.Context, id, userID int64, price decimal.Decimal) (*model.Product, error) {
	product, err := s.productRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateFields(ctx, id, map[string]interface{}{"selling_price": price}); err != nil {
		return nil, err
	}
	product.SellingPrice = price
	return product, nil
}
