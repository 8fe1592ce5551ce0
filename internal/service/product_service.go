package service

import (
	"errors"
	"strings"

	"shopmall-api/internal/model"
	"shopmall-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductService interface {
	ListProducts(filter repository.ProductFilter, page Pagination) ([]model.Product, int64, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	CreateProduct(caller Caller, req *ProductRequest) (*model.Product, error)
	UpdateProduct(caller Caller, id uuid.UUID, req *ProductRequest) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
}

// ProductRequest is shared by create and update. A nil field was not sent;
// create requires name, sku, price, stock and category.
type ProductRequest struct {
	Name        *string              `json:"name" validate:"omitempty,notblank"`
	SKU         *string              `json:"sku" validate:"omitempty,notblank"`
	Description *string              `json:"description"`
	Price       *int64               `json:"price" validate:"omitempty,min=0"`
	Stock       *int                 `json:"stock" validate:"omitempty,min=0"`
	Category    *model.Category      `json:"category"`
	Status      *model.ProductStatus `json:"status"`
	Image       *string              `json:"image"`
	Images      *[]string            `json:"images"`
	Options     *[]model.OptionGroup `json:"options" validate:"omitempty,dive"`
}

type productService struct {
	productRepo repository.ProductRepository
	log         *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, log *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		log:         log,
	}
}

func (s *productService) ListProducts(filter repository.ProductFilter, page Pagination) ([]model.Product, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.productRepo.List(filter, page.Offset(), page.Limit)
}

func (s *productService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *productService) CreateProduct(caller Caller, req *ProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Name == nil || req.SKU == nil || req.Price == nil || req.Stock == nil || req.Category == nil {
		return nil, invalid("name, sku, price, stock and category are required")
	}

	product := &model.Product{Status: model.ProductSelling}
	if err := req.applyTo(product); err != nil {
		return nil, err
	}

	if err := s.ensureUniqueSKU(product.SKU, uuid.Nil); err != nil {
		return nil, err
	}

	product.CreatedBy = caller.auditID()
	product.UpdatedBy = caller.auditID()
	if err := s.productRepo.Create(product); err != nil {
		return nil, duplicate(err, ErrDuplicateSKU)
	}

	s.log.Info("product created", zap.String("product_id", product.ID.String()), zap.String("sku", product.SKU))
	return product, nil
}

func (s *productService) UpdateProduct(caller Caller, id uuid.UUID, req *ProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}

	oldSKU := product.SKU
	if err := req.applyTo(product); err != nil {
		return nil, err
	}
	if product.SKU != oldSKU {
		if err := s.ensureUniqueSKU(product.SKU, product.ID); err != nil {
			return nil, err
		}
	}

	product.UpdatedBy = caller.auditID()
	if err := s.productRepo.Update(product); err != nil {
		return nil, duplicate(err, ErrDuplicateSKU)
	}
	return product, nil
}

func (s *productService) DeleteProduct(id uuid.UUID) error {
	if err := s.productRepo.Delete(id); err != nil {
		return notFound(err, ErrProductNotFound)
	}
	return nil
}

// ensureUniqueSKU fails when another product already owns sku
func (s *productService) ensureUniqueSKU(sku string, self uuid.UUID) error {
	existing, err := s.productRepo.FindBySKU(sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return ErrDuplicateSKU
	}
	return nil
}

func (r *ProductRequest) applyTo(p *model.Product) error {
	if r.Category != nil && !r.Category.Valid() {
		return invalid("category must be one of %v", model.Categories)
	}
	if r.Status != nil && !r.Status.Valid() {
		return invalid("status must be selling, soldout or hidden")
	}

	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.SKU != nil {
		p.SKU = model.NormalizeSKU(*r.SKU)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
	if r.Images != nil {
		p.Images = *r.Images
	}
	if r.Options != nil {
		p.Options = *r.Options
	}

	if lowest := p.MinUnitPrice(); lowest < 0 {
		return invalid("option price adjustments bring the price below zero (%d)", lowest)
	}
	return nil
}
