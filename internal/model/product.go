package model

import "strings"

type Category string

const (
	CategoryRing     Category = "반지"
	CategoryNecklace Category = "목걸이"
	CategoryEarring  Category = "귀걸이"
	CategoryBracelet Category = "팔찌"
	CategoryOther    Category = "기타"
)

var Categories = []Category{CategoryRing, CategoryNecklace, CategoryEarring, CategoryBracelet, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type ProductStatus string

const (
	ProductSelling ProductStatus = "selling"
	ProductSoldOut ProductStatus = "soldout"
	ProductHidden  ProductStatus = "hidden"
)

func (s ProductStatus) Valid() bool {
	return s == ProductSelling || s == ProductSoldOut || s == ProductHidden
}

// OptionValue is one selectable entry of an option group, e.g. size "13"
type OptionValue struct {
	Value           string `json:"value"`
	Label           string `json:"label"`
	PriceAdjustment int64  `json:"priceAdjustment"`
	Stock           int    `json:"stock"`
}

// OptionGroup is keyed by Type, which is also the key of an order item's selectedOptions
type OptionGroup struct {
	Type   string        `json:"type" validate:"notblank"`
	Label  string        `json:"label" validate:"notblank"`
	Values []OptionValue `json:"values" validate:"dive"`
}

type Product struct {
	BaseModel
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	SKU         string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Description string        `gorm:"type:text" json:"description"`
	Price       int64         `gorm:"not null;check:price >= 0" json:"price"`
	Stock       int           `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Category    Category      `gorm:"type:varchar(20);not null;index" json:"category"`
	Status      ProductStatus `gorm:"type:varchar(20);not null;default:selling;index" json:"status"`
	Image       string        `gorm:"type:text" json:"image"`
	Images      []string      `gorm:"type:jsonb;serializer:json" json:"images"`
	Options     []OptionGroup `gorm:"type:jsonb;serializer:json" json:"options"`
}

// NormalizeSKU trims and upper-cases a SKU; SKUs are unique in this form
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// UnitPrice is the base price plus the adjustment of every selected option value
// that resolves to one of the product's option groups. Unknown keys or values add nothing.
func (p *Product) UnitPrice(selected map[string]string) int64 {
	price := p.Price
	if len(selected) == 0 {
		return price
	}
	for _, group := range p.Options {
		chosen, ok := selected[group.Type]
		if !ok || chosen == "" {
			continue
		}
		for _, v := range group.Values {
			if v.Value == chosen {
				price += v.PriceAdjustment
				break
			}
		}
	}
	return price
}

// MinUnitPrice is the lowest price any option selection can produce
func (p *Product) MinUnitPrice() int64 {
	price := p.Price
	for _, group := range p.Options {
		var lowest int64
		for _, v := range group.Values {
			if v.PriceAdjustment < lowest {
				lowest = v.PriceAdjustment
			}
		}
		price += lowest
	}
	return price
}
