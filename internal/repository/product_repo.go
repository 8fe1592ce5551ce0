package repository

import (
	"strings"

	"shopmall-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter narrows a catalog listing; zero values mean "any"
type ProductFilter struct {
	Category model.Category
	Status   model.ProductStatus
	Search   string
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	List(filter ProductFilter, offset, limit int) ([]model.Product, int64, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	// DecrementStock subtracts qty only while stock >= qty. It reports false
	// when the guard matched no row.
	DecrementStock(id uuid.UUID, qty int) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "sku = ?", model.NormalizeSKU(sku)).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) List(filter ProductFilter, offset, limit int) ([]model.Product, int64, error) {
	var total int64
	if err := r.db.Model(&model.Product{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := r.db.Scopes(filter.scope).Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

func (f ProductFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		db = db.Where("name ILIKE ? OR sku ILIKE ? OR description ILIKE ?", pattern, pattern, pattern)
	}
	return db
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock runs as a single conditional UPDATE so concurrent orders cannot
// push stock below zero
func (r *productRepo) DecrementStock(id uuid.UUID, qty int) (bool, error) {
	res := r.db.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
